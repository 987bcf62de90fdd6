package dto

import (
	"strings"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// -------- Core auth --------

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	return checkStruct(r)
}

// The refresh token normally travels in the HttpOnly cookie; the body
// field is a fallback for non-browser clients.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (r *RefreshRequest) Validate() error { return nil }

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// -------- Password reset --------

// Always answered 200 to avoid username enumeration.
type ForgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	return checkStruct(r)
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (r *ResetPasswordRequest) Validate() error { return checkStruct(r) }

// Token arrives as a query parameter, not JSON.
type VerifyResetTokenQuery struct {
	Token string `json:"-"`
}

func (q *VerifyResetTokenQuery) Validate() error {
	if q.Token == "" {
		return domain.ErrMissingField("token")
	}
	return nil
}

// -------- Password change (authenticated) --------

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (r *ChangePasswordRequest) Validate() error { return checkStruct(r) }
