package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
)

// Claims carried by every access token.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RevocationList remembers logged-out token ids.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AccountLookup loads the current user record behind a token. users.Store
// satisfies it.
type AccountLookup interface {
	FindOne(ctx context.Context, filter bson.M) (*models.User, error)
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret   []byte
	ttl      time.Duration
	revoked  RevocationList
	accounts AccountLookup
	now      func() time.Time
}

func NewTokens(secret string, ttl time.Duration, revoked RevocationList) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}
}

// WithAccounts makes Authenticate check every token against the stored
// user, so deleted accounts are locked out and role changes apply at once.
func (t *Tokens) WithAccounts(a AccountLookup) *Tokens {
	t.accounts = a
	return t
}

// Issue signs a token for the user with a fresh jti.
func (t *Tokens) Issue(userID, role string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utils.GetUUID(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates signature, expiry and revocation.
func (t *Tokens) Parse(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.Unauthorized("Token expired")
		}
		return nil, utils.Unauthorized("Invalid token")
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, utils.Unauthorized("Invalid token")
	}

	if t.revoked != nil {
		revoked, err := t.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, utils.Unauthorized("Token has been revoked")
		}
	}
	return claims, nil
}

// Revoke blacklists the token until it expires.
func (t *Tokens) Revoke(ctx context.Context, c *Claims) error {
	if t.revoked == nil || c == nil {
		return nil
	}
	ttl := time.Minute
	if c.ExpiresAt != nil {
		ttl = c.ExpiresAt.Sub(t.now())
	}
	return t.revoked.Revoke(ctx, c.ID, ttl)
}
