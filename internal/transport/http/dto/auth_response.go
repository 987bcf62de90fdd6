package dto

import (
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/application/auth"
)

// UserView is the standard user payload. Password material never
// appears here; the service sanitizes before the transport sees it.
type UserView struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	Status      string   `json:"status"`
	IsActive    bool     `json:"is_active"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions"`
	EmployeeID  string   `json:"employee_id,omitempty"`
}

// TokensView is the access token payload. The refresh token travels in
// an HttpOnly cookie, never in JSON, except for non-browser clients
// that sent theirs in the request body.
type TokensView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

// AuthData is returned by login / refresh / reset / change.
type AuthData struct {
	User   UserView   `json:"user"`
	Tokens TokensView `json:"tokens"`
}

// MeData is returned by /verify.
type MeData struct {
	User UserView `json:"user"`
}

type ForgotPasswordData struct {
	Status string `json:"status"` // always "ok"
	// Dev-mode only; prod never echoes the token.
	ResetToken string `json:"reset_token,omitempty"`
}

type VerifyResetTokenData struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
}

type LogoutData struct {
	Status string `json:"status"` // "ok"
}

// -------- converters --------

func NewUserView(id auth.Identity) UserView {
	v := UserView{
		ID:          id.User.ID,
		Username:    id.User.Username,
		Email:       id.User.Email,
		Status:      string(id.User.Status),
		IsActive:    id.User.IsActive,
		Role:        id.Grants.RoleName,
		Permissions: id.Grants.Permissions.Names(),
	}
	if id.User.EmployeeID != nil {
		v.EmployeeID = *id.User.EmployeeID
	}
	return v
}

// NewAuthData shapes a service result for the wire. includeRefresh
// controls whether the refresh token is echoed in the body (cookie-less
// clients) or kept cookie-only.
func NewAuthData(res auth.AuthResult, accessTTL time.Duration, includeRefresh bool) AuthData {
	out := AuthData{
		User: NewUserView(auth.Identity{User: res.User, Grants: res.Grants}),
		Tokens: TokensView{
			AccessToken: res.Tokens.AccessToken,
			TokenType:   res.Tokens.TokenType,
			ExpiresIn:   int64(accessTTL.Seconds()),
		},
	}
	if includeRefresh {
		out.Tokens.RefreshToken = res.Tokens.RefreshToken
	}
	return out
}
