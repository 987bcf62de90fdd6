package auth

import (
	"context"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// Refresh exchanges a valid refresh token for a new token pair.
// Rotation rule: the presented refresh token is blacklisted once used, so
// a captured token dies with its first successful exchange.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if refreshToken == "" {
		return AuthResult{}, domain.ErrRefreshTokenRequired()
	}

	revoked, err := s.blacklist.Contains(ctx, refreshToken)
	if err != nil {
		return AuthResult{}, err
	}
	if revoked {
		return AuthResult{}, domain.ErrRefreshTokenBlacklisted()
	}

	claims, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		// Expired, tampered and wrong-kind tokens are indistinguishable here.
		return AuthResult{}, domain.ErrInvalidOrExpiredToken()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		// User deleted since issuance: treat as a dead session.
		return AuthResult{}, domain.ErrInvalidOrExpiredToken()
	}
	if !u.IsActive {
		return AuthResult{}, domain.ErrInvalidOrExpiredToken()
	}

	// Revoke the consumed token before handing out its successor.
	ttl := s.refreshTTL
	if remaining := claims.Exp.Sub(s.now()); remaining > 0 {
		ttl = remaining
	}
	if err := s.blacklist.Add(ctx, refreshToken, ttl); err != nil {
		return AuthResult{}, err
	}

	res, err := s.result(u)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit("token_refreshed", map[string]string{"user_id": u.ID})
	return res, nil
}
