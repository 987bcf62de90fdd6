package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// UserRepo is the single-process fallback store used when no database is
// configured (local development, demos). It implements the same guard
// semantics as the postgres repo so dev behaves like prod.
type UserRepo struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byUsername map[string]string // username -> userID

	now func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:       make(map[string]domain.User),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

// WithClock overrides the time source for tests.
func (r *UserRepo) WithClock(fn func() time.Time) *UserRepo {
	if fn != nil {
		r.now = fn
	}
	return r
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		return domain.User{}, domain.ErrInternal(nil)
	}
	key := strings.ToLower(u.Username)
	if _, exists := r.byUsername[key]; exists {
		return domain.User{}, domain.ErrUsernameAlreadyExists()
	}

	r.byID[u.ID] = u
	r.byUsername[key] = u.ID
	return u, nil
}

func (r *UserRepo) RecordLoginFailure(ctx context.Context, userID string, threshold int, lockFor time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.LoginAttempts++
	if threshold > 0 && u.LoginAttempts >= threshold {
		until := r.now().Add(lockFor)
		u.LockUntil = &until
	}
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) RecordLoginSuccess(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	now := r.now()
	u.LastLogin = &now
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	u.PasswordChangedAt = &changedAt
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) SetResetToken(ctx context.Context, userID string, digest string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordResetToken = &digest
	u.PasswordResetExpires = &expires
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) GetByResetDigest(ctx context.Context, digest string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.findByDigestLocked(digest)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) ConsumeResetToken(ctx context.Context, digest string, newHash string, changedAt time.Time) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.findByDigestLocked(digest)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}

	u.PasswordHash = newHash
	u.PasswordChangedAt = &changedAt
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	u.LoginAttempts = 0
	u.LockUntil = nil
	r.byID[u.ID] = u
	return u, nil
}

// findByDigestLocked scans for an unexpired digest match. Callers hold
// at least the read lock.
func (r *UserRepo) findByDigestLocked(digest string) (domain.User, bool) {
	if digest == "" {
		return domain.User{}, false
	}
	now := r.now()
	for _, u := range r.byID {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == digest &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return u, true
		}
	}
	return domain.User{}, false
}
