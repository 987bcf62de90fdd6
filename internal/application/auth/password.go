package auth

import (
	"context"
	"strings"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// ForgotResult carries the plaintext reset token only when the service is
// configured to reveal it (dev). In production the handler returns the same
// generic message whether or not the username exists.
type ForgotResult struct {
	ResetToken string
}

// ForgotPassword starts the reset lifecycle for a username.
// Unknown or inactive usernames return success with an empty result:
// the endpoint must not reveal which usernames exist.
func (s *Service) ForgotPassword(ctx context.Context, username string) (ForgotResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return ForgotResult{}, nil
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !u.IsActive {
		return ForgotResult{}, nil
	}

	plaintext, digest, err := newResetToken()
	if err != nil {
		return ForgotResult{}, domain.ErrRandomFailed(err)
	}

	// Digest and expiry are stored as a pair; the plaintext never is.
	if err := s.users.SetResetToken(ctx, u.ID, digest, s.now().Add(s.resetTokenTTL)); err != nil {
		return ForgotResult{}, err
	}

	evt := PasswordResetEvent{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		URL:      s.passwordResetBaseURL + plaintext,
	}
	if err := s.pub.PublishPasswordReset(ctx, evt); err != nil {
		return ForgotResult{}, err
	}

	s.audit("password_reset_requested", map[string]string{"user_id": u.ID})

	if s.revealResetToken {
		return ForgotResult{ResetToken: plaintext}, nil
	}
	return ForgotResult{}, nil
}

// VerifyResetToken checks a presented reset token without consuming it.
func (s *Service) VerifyResetToken(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrInvalidOrExpiredToken()
	}
	u, err := s.users.GetByResetDigest(ctx, hashResetToken(token))
	if err != nil {
		return domain.User{}, domain.ErrInvalidOrExpiredToken()
	}
	return u.Sanitized(), nil
}

// ResetPassword consumes a reset token and sets a new password.
// Single use is enforced by the store clearing both reset fields in the
// same update that writes the new hash; a second call with the same token
// finds no matching row.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (AuthResult, error) {
	if token == "" || newPassword == "" {
		return AuthResult{}, domain.ErrInvalidOrExpiredToken()
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return AuthResult{}, domain.ErrHashFailed(err)
	}

	u, err := s.users.ConsumeResetToken(ctx, hashResetToken(token), newHash, s.now())
	if err != nil {
		// Wrong token, already-consumed token and expiry all look alike.
		return AuthResult{}, domain.ErrInvalidOrExpiredToken()
	}

	res, err := s.result(u)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit("password_reset", map[string]string{"user_id": u.ID})
	return res, nil
}

// ChangePassword verifies the current password before storing a new one,
// then issues a fresh pair so the session continues without re-login.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (AuthResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return AuthResult{}, domain.ErrUserNotFound()
	}

	if err := s.hasher.Compare(u.PasswordHash, currentPassword); err != nil {
		return AuthResult{}, domain.ErrIncorrectCurrentPassword()
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return AuthResult{}, domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, u.ID, newHash, s.now()); err != nil {
		return AuthResult{}, err
	}

	res, err := s.result(u)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit("password_changed", map[string]string{"user_id": u.ID})
	return res, nil
}
