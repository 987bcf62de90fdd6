package http_handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/application/auth"
	"github.com/bossgrand/garment/services/auth-service/internal/domain"
	"github.com/bossgrand/garment/services/auth-service/internal/infrastructure/security"
	"github.com/bossgrand/garment/services/auth-service/internal/logger"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/dto"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/middleware"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc           *auth.Service
	accessTTL     time.Duration
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(svc *auth.Service, accessTTL, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

// errCode pulls the stable machine code out of a domain error for
// metric labels.
func errCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}

// refreshFromRequest prefers the HttpOnly cookie; body is the fallback
// for non-browser clients. The bool reports whether the body supplied
// the token, so the handler knows to echo the rotated one.
func refreshFromRequest(r *http.Request, body string) (string, bool) {
	if tok, err := security.ReadRefreshToken(r); err == nil && tok != "" {
		return tok, false
	}
	return body, body != ""
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(errCode(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Str("role", res.Grants.RoleName).
		Msg("user_logged_in")

	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)
	response.OK(w, dto.NewAuthData(res, h.accessTTL, true))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if r.ContentLength > 0 {
		if err := response.DecodeJSON(r, &req); err != nil {
			response.WriteError(w, r, err)
			return
		}
	}

	tok, fromBody := refreshFromRequest(r, req.RefreshToken)

	res, err := h.svc.Refresh(r.Context(), tok)
	if err != nil {
		middleware.TokenRefreshTotal.WithLabelValues(errCode(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.TokenRefreshTotal.WithLabelValues("success").Inc()

	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)
	response.OK(w, dto.NewAuthData(res, h.accessTTL, fromBody))
}

// Logout is idempotent: revocation failures of an already dead token do
// not surface, and the cookie is cleared either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.LogoutRequest
	if r.ContentLength > 0 {
		_ = response.DecodeJSON(r, &req)
	}

	tok, _ := refreshFromRequest(r, req.RefreshToken)
	if tok != "" {
		if err := h.svc.Logout(r.Context(), tok); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Msg("logout_revoke_failed")
		}
	}

	security.ClearRefreshToken(w, h.secureCookies)
	response.OK(w, dto.LogoutData{Status: "ok"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.ForgotPassword(r.Context(), req.Username)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	// Same answer for known and unknown usernames.
	response.OK(w, dto.ForgotPasswordData{Status: "ok", ResetToken: res.ResetToken})
}

func (h *AuthHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	q := dto.VerifyResetTokenQuery{Token: r.URL.Query().Get("token")}
	if err := q.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.VerifyResetToken(r.Context(), q.Token)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.VerifyResetTokenData{Valid: true, Username: u.Username})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		middleware.PasswordResetsTotal.WithLabelValues(errCode(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.PasswordResetsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("password_reset_completed")

	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)
	response.OK(w, dto.NewAuthData(res, h.accessTTL, true))
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	var req dto.ChangePasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.ChangePassword(r.Context(), id.User.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("password_changed")

	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)
	response.OK(w, dto.NewAuthData(res, h.accessTTL, true))
}

// Verify reports the caller's resolved identity; the Authenticate
// middleware has already done the work.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	response.OK(w, dto.MeData{User: dto.NewUserView(id)})
}
