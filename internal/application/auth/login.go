package auth

import (
	"context"
	"strings"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// Login authenticates a user and issues a token pair.
//
// The checks run in a fixed order (existence -> active -> status -> lock ->
// password -> guard update); each is a short-circuiting precondition and
// reordering changes observable error precedence.
//
// IMPORTANT: unknown username, inactive account and wrong password all
// surface as incorrect_credentials so callers cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, username, password string) (AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	if username == "" || password == "" {
		return AuthResult{}, domain.ErrIncorrectCredentials()
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		// Hide not-found behind incorrect credentials.
		return AuthResult{}, domain.ErrIncorrectCredentials()
	}
	if !u.IsActive {
		return AuthResult{}, domain.ErrIncorrectCredentials()
	}

	// Account state is not a secret; pending/disabled are reported as such.
	switch u.Status {
	case domain.StatusPending:
		return AuthResult{}, domain.ErrAccountPending()
	case domain.StatusDisabled:
		return AuthResult{}, domain.ErrAccountDisabled()
	}

	// Lock enforcement is authoritative: a locked account rejects the
	// attempt before the password is even checked, until lock-until passes.
	if u.LockedAt(s.now()) {
		s.audit("login_locked_out", map[string]string{"user_id": u.ID})
		return AuthResult{}, domain.ErrAccountLocked()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if gerr := s.users.RecordLoginFailure(ctx, u.ID, s.lockThreshold, s.lockDuration); gerr != nil {
			return AuthResult{}, gerr
		}
		s.audit("login_failed", map[string]string{"user_id": u.ID})
		return AuthResult{}, domain.ErrIncorrectCredentials()
	}

	// Success: reset the guard and stamp last-login in one update.
	if err := s.users.RecordLoginSuccess(ctx, u.ID); err != nil {
		return AuthResult{}, err
	}

	res, err := s.result(u)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit("login", map[string]string{"user_id": u.ID, "username": u.Username})
	return res, nil
}
