package auth

import (
	"context"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users. Only describes WHAT the auth service needs,
not HOW it is stored. Lookups hydrate the role with its permissions and
the user's custom permission grants.
*/
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// RecordLoginFailure atomically increments the failed-attempt counter
	// and sets lock-until when the incremented counter reaches threshold.
	// Atomic at the store so two concurrent failures cannot lose an update.
	RecordLoginFailure(ctx context.Context, userID string, threshold int, lockFor time.Duration) error

	// RecordLoginSuccess resets the counter, clears lock-until and stamps
	// last-login in a single update.
	RecordLoginSuccess(ctx context.Context, userID string) error

	// UpdatePasswordHash stores a new hash and stamps password-changed-at
	// with the caller's clock, so token staleness checks compare against
	// the same time source that issues tokens.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string, changedAt time.Time) error

	// SetResetToken stores the reset-token digest and its expiry as a pair.
	SetResetToken(ctx context.Context, userID string, digest string, expires time.Time) error

	// GetByResetDigest returns the user whose stored digest matches and
	// whose expiry is still in the future.
	GetByResetDigest(ctx context.Context, digest string) (domain.User, error)

	// ConsumeResetToken sets the new password hash and clears both reset
	// fields in one atomic update, keyed by an unexpired digest match.
	// changedAt stamps password-changed-at, same contract as
	// UpdatePasswordHash.
	ConsumeResetToken(ctx context.Context, digest string, newHash string, changedAt time.Time) (domain.User, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenCodec
----------
Issues and verifies the two signed token kinds. Both carry a typ
discriminator; verification of one kind rejects the other.
*/
type AccessClaims struct {
	UserID   string
	Username string
	Active   bool
	RoleID   string
	RoleName string
	IssuedAt time.Time
	Exp      time.Time
}

type RefreshClaims struct {
	UserID   string
	IssuedAt time.Time
	Exp      time.Time
}

type TokenCodec interface {
	IssueAccessToken(u domain.User) (string, error)
	IssueRefreshToken(u domain.User) (string, error)
	VerifyAccessToken(token string) (AccessClaims, error)
	VerifyRefreshToken(token string) (RefreshClaims, error)
}

/*
TokenBlacklist
--------------
Revocation set for refresh tokens. Injected so lifecycle and testability
are explicit: in-memory for single-instance deployments, Redis for
multi-instance. Entries expire with the token they revoke.
*/
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

/*
EventPublisher
--------------
Publishes auth events to RabbitMQ. A mail worker consumes these and
delivers the reset link out of band; this service never sends email.
*/
type EventPublisher interface {
	PublishPasswordReset(ctx context.Context, evt PasswordResetEvent) error
}

type PasswordResetEvent struct {
	UserID   string
	Username string
	Email    string
	URL      string
}
