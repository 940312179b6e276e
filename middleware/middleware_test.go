package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gadgethub/globals"
	"gadgethub/memstore"
	"gadgethub/middleware"
	"gadgethub/models"
	"gadgethub/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func echoIdentity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.SendResponse(w, http.StatusOK, map[string]string{
		"user":  utils.GetUserIDFromRequest(r),
		"role":  utils.GetRoleFromRequest(r),
		"token": r.Context().Value(globals.TokenIDKey).(string),
	}, "")
}

func run(h httprouter.Handle, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec
}

func TestAuthenticate(t *testing.T) {
	tokens := middleware.NewTokens("secret", time.Hour, memstore.NewRevocationList())
	h := tokens.Authenticate(echoIdentity)

	signed, exp, err := tokens.Issue("u1", globals.RoleUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	rec := run(h, "Bearer "+signed)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"user":"u1"`)
	assert.Contains(t, rec.Body.String(), `"role":"User"`)

	assert.Equal(t, http.StatusUnauthorized, run(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, run(h, signed).Code)
	assert.Equal(t, http.StatusUnauthorized, run(h, "Bearer garbage").Code)

	other := middleware.NewTokens("different", time.Hour, nil)
	forged, _, err := other.Issue("u1", globals.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, run(h, "Bearer "+forged).Code)
}

func TestExpiredAndRevokedTokens(t *testing.T) {
	revoked := memstore.NewRevocationList()
	tokens := middleware.NewTokens("secret", time.Hour, revoked)
	ctx := context.Background()

	signed, _, err := tokens.Issue("u1", globals.RoleUser)
	require.NoError(t, err)
	claims, err := tokens.Parse(ctx, signed)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	require.NoError(t, tokens.Revoke(ctx, claims))
	_, err = tokens.Parse(ctx, signed)
	require.Error(t, err)
	assert.Equal(t, "Token has been revoked", err.Error())

	short := middleware.NewTokens("secret", -time.Minute, nil)
	stale, _, err := short.Issue("u1", globals.RoleUser)
	require.NoError(t, err)
	_, err = tokens.Parse(ctx, stale)
	require.Error(t, err)
	assert.Equal(t, "Token expired", err.Error())
}

func TestRejectsNoneAlgorithm(t *testing.T) {
	tokens := middleware.NewTokens("secret", time.Hour, nil)
	claims := &middleware.Claims{
		UserID: "u1",
		Role:   globals.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Parse(context.Background(), unsigned)
	assert.Error(t, err)
}

func TestRequireRolesAndChain(t *testing.T) {
	tokens := middleware.NewTokens("secret", time.Hour, nil)
	h := middleware.Chain(tokens.Authenticate, middleware.RequireRoles(globals.RoleAdmin))(echoIdentity)

	user, _, _ := tokens.Issue("u1", globals.RoleUser)
	admin, _, _ := tokens.Issue("a1", globals.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, run(h, "").Code)
	assert.Equal(t, http.StatusForbidden, run(h, "Bearer "+user).Code)
	assert.Equal(t, http.StatusOK, run(h, "Bearer "+admin).Code)
}

func TestStoredAccountOverridesTokenRole(t *testing.T) {
	ctx := context.Background()
	accounts := memstore.NewUserStore()
	boss := &models.User{Name: "Boss", Email: "boss@example.com", Phone: "5550001", Role: globals.RoleAdmin, IsVerified: true}
	require.NoError(t, accounts.Insert(ctx, boss))

	tokens := middleware.NewTokens("secret", time.Hour, nil).WithAccounts(accounts)
	adminOnly := middleware.Chain(tokens.Authenticate, middleware.RequireRoles(globals.RoleAdmin))(echoIdentity)
	signed, _, err := tokens.Issue(boss.ID.Hex(), globals.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, run(adminOnly, "Bearer "+signed).Code)

	_, err = accounts.UpdateOne(ctx, bson.M{"_id": boss.ID}, bson.M{"role": globals.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, run(adminOnly, "Bearer "+signed).Code, "demotion applies to live tokens")
	rec := run(tokens.Authenticate(echoIdentity), "Bearer "+signed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"User"`)

	deleted, err := accounts.DeleteOne(ctx, bson.M{"_id": boss.ID})
	require.NoError(t, err)
	require.True(t, deleted)
	rec = run(tokens.Authenticate(echoIdentity), "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account no longer exists")

	stranger, _, err := tokens.Issue("not-an-id", globals.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, run(tokens.Authenticate(echoIdentity), "Bearer "+stranger).Code)
}

func TestWebsocketTokenFromQuery(t *testing.T) {
	tokens := middleware.NewTokens("secret", time.Hour, nil)
	signed, _, _ := tokens.Issue("u1", globals.RoleUser)
	h := tokens.Authenticate(echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/live?token="+signed, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// plain requests must use the header
	req = httptest.NewRequest(http.MethodGet, "/live?token="+signed, nil)
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTPMiddleware(t *testing.T) {
	var seenID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = utils.GetRequestID(r)
		if r.URL.Path == "/panic" {
			panic("boom")
		}
		w.WriteHeader(http.StatusTeapot)
	})
	h := middleware.RequestID(middleware.Logging(middleware.Recover(middleware.SecurityHeaders(inner))))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "fixed-id", seenID)
}
