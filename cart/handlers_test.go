package cart_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gadgethub/cart"
	"gadgethub/globals"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h httprouter.Handle, method, userID string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/cart", &buf)
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, userID))
	}
	rec := httptest.NewRecorder()
	h(rec, req, nil)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestCartHandlers(t *testing.T) {
	f := newFixture(t)
	h := cart.NewHandlers(f.svc)
	uid := f.user.Hex()
	phone := f.phone.ID.Hex()

	rec, body := serve(t, h.GetCart, http.MethodGet, uid, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Cart is empty", body["message"])
	assert.Equal(t, []any{}, body["data"])

	rec, _ = serve(t, h.AddToCart, http.MethodPost, uid, map[string]any{"productId": phone, "quantity": 2})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = serve(t, h.AddToCart, http.MethodPost, uid, map[string]any{"productId": phone, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, body = serve(t, h.UpdateCartItem, http.MethodPut, uid, map[string]any{"productId": phone, "quantity": 5})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart item updated", body["message"])

	rec, body = serve(t, h.GetCart, http.MethodGet, uid, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	items := body["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 5, items[0].(map[string]any)["quantity"])

	rec, body = serve(t, h.RemoveFromCart, http.MethodDelete, uid, map[string]any{"productId": f.laptop.ID.Hex()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found in cart", body["message"])

	rec, body = serve(t, h.ClearCart, http.MethodDelete, uid, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart cleared successfully", body["message"])

	rec, _ = serve(t, h.GetCart, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
