package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"gadgethub/globals"
	"gadgethub/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type claimsKey struct{}

// Middleware wraps a route handler.
type Middleware func(httprouter.Handle) httprouter.Handle

// Chain applies mws so the first one listed runs first.
func Chain(mws ...Middleware) Middleware {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}

// Authenticate requires a valid bearer token and stores its claims on the
// request context. Browsers cannot set headers on a websocket handshake, so
// upgrades may pass the token as ?token= instead.
func (t *Tokens) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw := bearerToken(r)
		if raw == "" && websocket.IsWebSocketUpgrade(r) {
			raw = r.URL.Query().Get("token")
		}
		if raw == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := t.Parse(r.Context(), raw)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		if err := t.refreshRole(r.Context(), claims); err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		ctx = context.WithValue(ctx, globals.TokenIDKey, claims.ID)
		ctx = context.WithValue(ctx, claimsKey{}, claims)
		next(w, r.WithContext(ctx), ps)
	}
}

// refreshRole replaces the role baked into the token with the stored one.
func (t *Tokens) refreshRole(ctx context.Context, claims *Claims) error {
	if t.accounts == nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return utils.Unauthorized("Invalid token")
	}
	u, err := t.accounts.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if u == nil {
		return utils.Unauthorized("Account no longer exists")
	}
	claims.Role = u.Role
	return nil
}

// RequireRoles rejects authenticated callers whose role is not listed.
func RequireRoles(roles ...string) Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if !slices.Contains(roles, utils.GetRoleFromRequest(r)) {
				utils.RespondWithError(w, http.StatusForbidden, "Access denied")
				return
			}
			next(w, r, ps)
		}
	}
}

// ClaimsFromRequest returns the claims Authenticate stored, if any.
func ClaimsFromRequest(r *http.Request) *Claims {
	c, _ := r.Context().Value(claimsKey{}).(*Claims)
	return c
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 8 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
