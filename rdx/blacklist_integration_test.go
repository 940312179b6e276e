//go:build integration

package rdx_test

import (
	"context"
	"testing"
	"time"

	"gadgethub/rdx"
	"gadgethub/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBlacklist(t *testing.T) {
	conn := testutil.StartRedis(t)
	bl := rdx.NewTokenBlacklist(conn)
	ctx := context.Background()

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := conn.TTL(ctx, "auth:revoked:jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, bl.Revoke(ctx, "jti-expired", 0))
	revoked, err = bl.IsRevoked(ctx, "jti-expired")
	require.NoError(t, err)
	assert.False(t, revoked, "already expired tokens are not stored")
}
