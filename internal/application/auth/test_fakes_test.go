package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID       map[string]domain.User
	byUsername map[string]string // username -> userID

	now func() time.Time

	// injected errors (if set, method returns error)
	getByUsernameErr error
	getByIDErr       error
	failureErr       error
	successErr       error
	updatePwdErr     error
	setResetErr      error
	consumeErr       error

	// recorded calls
	failures  []string
	successes []string
	updated   []struct{ id, hash string }
}

func newFakeUserRepo(now func() time.Time) *fakeUserRepo {
	return &fakeUserRepo{
		byID:       map[string]domain.User{},
		byUsername: map[string]string{},
		now:        now,
	}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byUsername[u.Username] = u.ID
}

func (f *fakeUserRepo) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByUsernameErr != nil {
		return domain.User{}, f.getByUsernameErr
	}
	id, ok := f.byUsername[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return f.byID[id], nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.put(u)
	return u, nil
}

func (f *fakeUserRepo) RecordLoginFailure(ctx context.Context, userID string, threshold int, lockFor time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failureErr != nil {
		return f.failureErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.LoginAttempts++
	if u.LoginAttempts >= threshold {
		until := f.now().Add(lockFor)
		u.LockUntil = &until
	}
	f.byID[userID] = u
	f.failures = append(f.failures, userID)
	return nil
}

func (f *fakeUserRepo) RecordLoginSuccess(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.successErr != nil {
		return f.successErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	last := f.now()
	u.LastLogin = &last
	f.byID[userID] = u
	f.successes = append(f.successes, userID)
	return nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string, changedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	u.PasswordChangedAt = &changedAt
	f.byID[userID] = u
	f.updated = append(f.updated, struct{ id, hash string }{userID, newHash})
	return nil
}

func (f *fakeUserRepo) SetResetToken(ctx context.Context, userID string, digest string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setResetErr != nil {
		return f.setResetErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	exp := expires
	u.PasswordResetToken = &digest
	u.PasswordResetExpires = &exp
	f.byID[userID] = u
	return nil
}

func (f *fakeUserRepo) findByDigestLocked(digest string) (domain.User, bool) {
	for _, u := range f.byID {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == digest &&
			u.PasswordResetExpires != nil && f.now().Before(*u.PasswordResetExpires) {
			return u, true
		}
	}
	return domain.User{}, false
}

func (f *fakeUserRepo) GetByResetDigest(ctx context.Context, digest string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.findByDigestLocked(digest)
	if !ok {
		return domain.User{}, domain.ErrInvalidOrExpiredToken()
	}
	return u, nil
}

func (f *fakeUserRepo) ConsumeResetToken(ctx context.Context, digest string, newHash string, changedAt time.Time) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.consumeErr != nil {
		return domain.User{}, f.consumeErr
	}
	u, ok := f.findByDigestLocked(digest)
	if !ok {
		return domain.User{}, domain.ErrInvalidOrExpiredToken()
	}
	u.PasswordHash = newHash
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	u.PasswordChangedAt = &changedAt
	f.byID[u.ID] = u
	return u, nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeCodec struct {
	mu sync.Mutex

	now func() time.Time

	issueAccessErr  error
	issueRefreshErr error
	verifyAccessFn  func(token string) (AccessClaims, error)
	verifyRefreshFn func(token string) (RefreshClaims, error)

	seq int
}

func (c *fakeCodec) IssueAccessToken(u domain.User) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.issueAccessErr != nil {
		return "", c.issueAccessErr
	}
	c.seq++
	return fmt.Sprintf("access(%s)#%d", u.ID, c.seq), nil
}

func (c *fakeCodec) IssueRefreshToken(u domain.User) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.issueRefreshErr != nil {
		return "", c.issueRefreshErr
	}
	c.seq++
	return fmt.Sprintf("refresh(%s)#%d", u.ID, c.seq), nil
}

func (c *fakeCodec) VerifyAccessToken(token string) (AccessClaims, error) {
	if c.verifyAccessFn != nil {
		return c.verifyAccessFn(token)
	}
	return AccessClaims{}, domain.ErrTokenInvalid()
}

func (c *fakeCodec) VerifyRefreshToken(token string) (RefreshClaims, error) {
	if c.verifyRefreshFn != nil {
		return c.verifyRefreshFn(token)
	}
	end := strings.Index(token, ")")
	if !strings.HasPrefix(token, "refresh(") || end < 0 {
		return RefreshClaims{}, domain.ErrTokenInvalid()
	}
	uid := token[len("refresh("):end]
	return RefreshClaims{
		UserID:   uid,
		IssuedAt: c.now(),
		Exp:      c.now().Add(7 * 24 * time.Hour),
	}, nil
}

type fakeBlacklist struct {
	mu sync.Mutex

	entries map[string]time.Duration

	addErr      error
	containsErr error
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{entries: map[string]time.Duration{}}
}

func (b *fakeBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.addErr != nil {
		return b.addErr
	}
	b.entries[token] = ttl
	return nil
}

func (b *fakeBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.containsErr != nil {
		return false, b.containsErr
	}
	_, ok := b.entries[token]
	return ok, nil
}

type fakePublisher struct {
	resetErr  error
	resetEvts []PasswordResetEvent
}

func (p *fakePublisher) PublishPasswordReset(ctx context.Context, evt PasswordResetEvent) error {
	if p.resetErr != nil {
		return p.resetErr
	}
	p.resetEvts = append(p.resetEvts, evt)
	return nil
}

/*
Service factory for tests
*/

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	svc       *Service
	users     *fakeUserRepo
	hasher    *fakeHasher
	codec     *fakeCodec
	blacklist *fakeBlacklist
	pub       *fakePublisher
	clock     *testClock
}

func newSvcForTest(t *testing.T) *testEnv {
	t.Helper()

	clock := newTestClock()
	users := newFakeUserRepo(clock.Now)
	hasher := &fakeHasher{}
	codec := &fakeCodec{now: clock.Now}
	blacklist := newFakeBlacklist()
	pub := &fakePublisher{}

	svc := NewService(users, hasher, codec, blacklist, pub, Config{
		RefreshTTL:           7 * 24 * time.Hour,
		ResetTokenTTL:        10 * time.Minute,
		LockThreshold:        5,
		LockDuration:         2 * time.Hour,
		PasswordResetBaseURL: "https://fe/reset-password?token=",
		RevealResetToken:     true,
	}).WithClock(clock.Now)

	return &testEnv{
		svc:       svc,
		users:     users,
		hasher:    hasher,
		codec:     codec,
		blacklist: blacklist,
		pub:       pub,
		clock:     clock,
	}
}

// activeUser seeds an ACTIVE user whose password is pw (fake hasher scheme).
func (e *testEnv) activeUser(id, username, pw string) domain.User {
	u := domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash:" + pw,
		Status:       domain.StatusActive,
		IsActive:     true,
		Role: &domain.Role{
			ID:   "r1",
			Name: "employee",
			Permissions: []domain.Permission{
				{ID: "p1", Name: "employee_read"},
			},
		},
	}
	e.users.put(u)
	return u
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}
