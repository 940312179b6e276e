package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gadgethub/globals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("gone"), http.StatusNotFound},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Conflict("taken"), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusFor(c.err), c.err.Error())
	}
}

func TestRespondWithAppError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	RespondWithAppError(rec, req, fmt.Errorf("lookup: %w", NotFound("Product not found")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Product not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondWithAppError(rec, req, errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestSendResponseEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	SendResponse(rec, http.StatusCreated, map[string]int{"n": 1}, "")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, rec.Body.String())
}

type sample struct {
	Name     string  `validate:"required"`
	Email    string  `validate:"omitempty,email"`
	Price    float64 `validate:"gte=0,cents"`
	Quantity int     `validate:"gt=0,max=10"`
	Status   string  `validate:"omitempty,oneof=paid pending"`
}

func TestValidateStructMessages(t *testing.T) {
	ok := sample{Name: "x", Quantity: 1}
	require.NoError(t, ValidateStruct(ok))
	for _, price := range []float64{19.99, 0.1, 1234.5, 0.07} {
		require.NoError(t, ValidateStruct(sample{Name: "x", Price: price, Quantity: 1}), "price %v", price)
	}

	cases := map[string]sample{
		"name is required":                         {Quantity: 1},
		"email must be a valid email":              {Name: "x", Email: "nope", Quantity: 1},
		"price must be at least 0":                 {Name: "x", Price: -1, Quantity: 1},
		"quantity must be greater than 0":          {Name: "x"},
		"status must be one of: paid, pending":     {Name: "x", Quantity: 1, Status: "lost"},
		"price must have at most 2 decimal places": {Name: "x", Price: 0.004, Quantity: 1},
		"quantity must be at most 10":              {Name: "x", Quantity: 11},
	}
	for want, in := range cases {
		err := ValidateStruct(in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, want, err.Error())
	}
}

func TestDecodeAndValidate(t *testing.T) {
	var s sample
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = http.NoBody
	err := DecodeAndValidate(req, &s)
	assert.Equal(t, "Invalid JSON payload", err.Error())

	body, _ := json.Marshal(map[string]any{"Name": "x", "Quantity": 2})
	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	require.NoError(t, DecodeAndValidate(req, &s))
	assert.Equal(t, 2, s.Quantity)
}

func TestParsePage(t *testing.T) {
	page, limit := ParsePage(httptest.NewRequest(http.MethodGet, "/?page=0&limit=-4", nil), 16)
	assert.Equal(t, 1, page)
	assert.Equal(t, 16, limit)

	page, limit = ParsePage(httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil), 16)
	assert.Equal(t, 3, page)
	assert.Equal(t, 500, limit)
}

func TestParseHelpers(t *testing.T) {
	f, err := ParseOptionalFloat(" ", "minPrice")
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = ParseOptionalFloat("12.5", "minPrice")
	require.NoError(t, err)
	assert.Equal(t, 12.5, *f)

	_, err = ParseOptionalFloat("abc", "minPrice")
	assert.Equal(t, "minPrice must be a number", err.Error())

	_, err = ParseObjectID("nope", "product")
	assert.Equal(t, "Invalid product ID", err.Error())
}

func TestUserObjectID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := UserObjectID(req)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	ctx := context.WithValue(req.Context(), globals.UserIDKey, "65f1c0ffee0000000000abcd")
	ctx = context.WithValue(ctx, globals.RoleKey, globals.RoleAdmin)
	req = req.WithContext(ctx)
	oid, err := UserObjectID(req)
	require.NoError(t, err)
	assert.Equal(t, "65f1c0ffee0000000000abcd", oid.Hex())
	assert.True(t, IsAdmin(req))
}

func TestMoneyAndCodes(t *testing.T) {
	assert.Equal(t, 0.3, RoundMoney(0.1+0.2))
	assert.Equal(t, 10.01, RoundMoney(10.005000001))

	code := GenerateRandomDigitString(6)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)
}
