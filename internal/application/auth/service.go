package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

const (
	// Five consecutive failures lock the account; the fifth failure is
	// the one that sets lock-until.
	defaultLockThreshold = 5
	defaultLockDuration  = 2 * time.Hour

	defaultAccessTTL  = 8 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
	defaultResetTTL   = 10 * time.Minute
)

type Service struct {
	users     UserRepo
	hasher    PasswordHasher
	codec     TokenCodec
	blacklist TokenBlacklist
	pub       EventPublisher

	refreshTTL    time.Duration
	resetTokenTTL time.Duration
	lockThreshold int
	lockDuration  time.Duration

	passwordResetBaseURL string
	revealResetToken     bool

	now   func() time.Time
	audit func(action string, fields map[string]string)
}

type Config struct {
	RefreshTTL    time.Duration
	ResetTokenTTL time.Duration
	LockThreshold int
	LockDuration  time.Duration

	PasswordResetBaseURL string

	// RevealResetToken returns the plaintext reset token to the caller
	// instead of relying on out-of-band delivery. Dev only.
	RevealResetToken bool
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	codec TokenCodec,
	blacklist TokenBlacklist,
	pub EventPublisher,
	cfg Config,
) *Service {
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTTL
	}
	if cfg.LockThreshold <= 0 {
		cfg.LockThreshold = defaultLockThreshold
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = defaultLockDuration
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		codec:     codec,
		blacklist: blacklist,
		pub:       pub,

		refreshTTL:    cfg.RefreshTTL,
		resetTokenTTL: cfg.ResetTokenTTL,
		lockThreshold: cfg.LockThreshold,
		lockDuration:  cfg.LockDuration,

		passwordResetBaseURL: cfg.PasswordResetBaseURL,
		revealResetToken:     cfg.RevealResetToken,

		now:   time.Now,
		audit: func(string, map[string]string) {},
	}
}

// WithAudit installs an audit sink for security-relevant actions.
func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// WithClock overrides the time source. Tests use this to drive expiry.
func (s *Service) WithClock(fn func() time.Time) *Service {
	if fn != nil {
		s.now = fn
	}
	return s
}

// TokenPair is the common token output for handlers/DTO mapping.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string // "Bearer"
}

// AuthResult is returned by every flow that ends in a live session.
type AuthResult struct {
	User   domain.User
	Grants domain.Grants
	Tokens TokenPair
}

// issuePair issues an access+refresh token pair for a user.
func (s *Service) issuePair(u domain.User) (TokenPair, error) {
	access, err := s.codec.IssueAccessToken(u)
	if err != nil {
		return TokenPair{}, domain.ErrTokenSignFailed(err)
	}
	refresh, err := s.codec.IssueRefreshToken(u)
	if err != nil {
		return TokenPair{}, domain.ErrTokenSignFailed(err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}, nil
}

func (s *Service) result(u domain.User) (AuthResult, error) {
	pair, err := s.issuePair(u)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		User:   u.Sanitized(),
		Grants: domain.Resolve(u),
		Tokens: pair,
	}, nil
}

// newResetToken returns a fresh plaintext reset token and its digest.
// Only the digest is ever persisted.
func newResetToken() (plaintext, digest string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plaintext = hex.EncodeToString(b)
	return plaintext, hashResetToken(plaintext), nil
}

// hashResetToken maps a presented plaintext token to its stored digest.
func hashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
