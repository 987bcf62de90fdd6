package domain

import "time"

// UserStatus gates login independently of credential correctness.
type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusPending  UserStatus = "PENDING"
	StatusDisabled UserStatus = "DISABLED"
)

func IsValidStatus(s string) bool {
	return s == string(StatusActive) || s == string(StatusPending) || s == string(StatusDisabled)
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string

	Status   UserStatus
	IsActive bool

	Role              *Role
	CustomPermissions []Permission

	// Lockout bookkeeping. LoginAttempts and LockUntil are always
	// written together by the store.
	LoginAttempts int
	LockUntil     *time.Time

	// Reset-token fields. The plaintext token is never persisted; only
	// its sha256 digest lives here, paired with an expiry.
	PasswordResetToken   *string
	PasswordResetExpires *time.Time

	LastLogin         *time.Time
	PasswordChangedAt *time.Time

	EmployeeID *string
}

// LockedAt reports whether the account is locked out at the given instant.
func (u User) LockedAt(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}

// RoleName returns the assigned role's name, or "" when no role is set.
func (u User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// PasswordChangedAfter reports whether the password was changed after the
// given token issue time. Tokens issued before a password change are stale.
func (u User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// Sanitized returns a copy safe to hand to transport layers: no password
// hash, no reset-token material.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	return u
}
