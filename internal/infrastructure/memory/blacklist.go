package memory

import (
	"context"
	"strings"
	"sync"
	"time"
)

// TokenBlacklist is the single-process revocation set. Entries carry an
// expiry; Contains lazily drops stale ones so the map stays bounded by
// the refresh TTL.
type TokenBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time

	now func() time.Time
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// WithClock overrides the time source for tests.
func (b *TokenBlacklist) WithClock(fn func() time.Time) *TokenBlacklist {
	if fn != nil {
		b.now = fn
	}
	return b
}

func (b *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" || ttl <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[token] = b.now().Add(ttl)
	return nil
}

func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.entries[token]
	if !ok {
		return false, nil
	}
	if !exp.After(b.now()) {
		delete(b.entries, token)
		return false, nil
	}
	return true, nil
}
