package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// TokenBlacklist implements auth.TokenBlacklist on Redis:
// - key: rtbl:<sha256(token)> -> "1" with the token's remaining TTL
// - entries expire on their own, so the set never needs sweeping
// Hashing keeps raw refresh tokens out of the keyspace (and out of
// MONITOR output, slowlogs and RDB dumps).
type TokenBlacklist struct {
	rdb    *goredis.Client
	prefix string
}

func NewTokenBlacklist(c *Client) *TokenBlacklist {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &TokenBlacklist{
		rdb:    rdb,
		prefix: "rtbl:",
	}
}

func (b *TokenBlacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return b.prefix + hex.EncodeToString(sum[:])
}

func (b *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" {
		// idempotent
		return nil
	}
	if b.rdb == nil {
		return domain.ErrRedisUnavailable(errors.New("token blacklist not configured"))
	}
	if ttl <= 0 {
		// already past its natural expiry; nothing worth remembering
		return nil
	}

	if err := b.rdb.Set(ctx, b.key(token), "1", ttl).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	if b.rdb == nil {
		return false, domain.ErrRedisUnavailable(errors.New("token blacklist not configured"))
	}

	if err := b.rdb.Get(ctx, b.key(token)).Err(); err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, domain.ErrRedisUnavailable(err)
	}
	return true, nil
}
