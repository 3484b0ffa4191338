package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const revokedKeyPrefix = "auth:revoked:"

// RevocationList invalidates individual tokens before their natural expiry,
// keyed by jti in redis with a TTL equal to the token's remaining lifetime.
// A nil list disables revocation (tokens stay valid until expiry).
type RevocationList struct {
	rdb *redis.Client
}

func NewRevocationList(rdb *redis.Client) *RevocationList {
	return &RevocationList{rdb: rdb}
}

// Revoke marks the token unusable for the rest of its lifetime.
func (r *RevocationList) Revoke(ctx context.Context, claims *Claims) error {
	if r == nil || r.rdb == nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err()
}

// IsRevoked reports whether the token id was revoked. Redis errors fail open:
// the token's own signature and expiry checks have already passed.
func (r *RevocationList) IsRevoked(ctx context.Context, jti string) bool {
	if r == nil || r.rdb == nil {
		return false
	}
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		log.Printf("Warning: revocation check failed: %v", err)
		return false
	}
	return n > 0
}
