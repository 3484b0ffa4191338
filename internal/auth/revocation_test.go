package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRevocationList(t *testing.T) *RevocationList {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRevocationList(rdb)
}

func claimsWithExpiry(jti string, expiresAt time.Time) *Claims {
	return &Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

func TestRevokeThenIsRevoked(t *testing.T) {
	r := newTestRevocationList(t)
	ctx := context.Background()

	claims := claimsWithExpiry("jti-1", time.Now().Add(time.Hour))
	require.NoError(t, r.Revoke(ctx, claims))

	assert.True(t, r.IsRevoked(ctx, "jti-1"))
	assert.False(t, r.IsRevoked(ctx, "jti-other"))
}

func TestRevokeAlreadyExpiredTokenIsNoop(t *testing.T) {
	r := newTestRevocationList(t)
	ctx := context.Background()

	claims := claimsWithExpiry("jti-old", time.Now().Add(-time.Minute))
	require.NoError(t, r.Revoke(ctx, claims))
	assert.False(t, r.IsRevoked(ctx, "jti-old"), "an expired token needs no revocation entry")
}

func TestRevokeTokenWithoutExpiry(t *testing.T) {
	r := newTestRevocationList(t)
	ctx := context.Background()

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{ID: "jti-no-exp"}}
	require.NoError(t, r.Revoke(ctx, claims))
	assert.False(t, r.IsRevoked(ctx, "jti-no-exp"))
}

func TestNilRevocationListDisablesChecks(t *testing.T) {
	ctx := context.Background()
	claims := claimsWithExpiry("jti-x", time.Now().Add(time.Hour))

	var nilList *RevocationList
	assert.NoError(t, nilList.Revoke(ctx, claims))
	assert.False(t, nilList.IsRevoked(ctx, "jti-x"))

	noBackend := NewRevocationList(nil)
	assert.NoError(t, noBackend.Revoke(ctx, claims))
	assert.False(t, noBackend.IsRevoked(ctx, "jti-x"))
}
