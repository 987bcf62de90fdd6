package auth

import (
	"context"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// Identity is the authenticated caller attached to protected requests.
type Identity struct {
	User   domain.User
	Grants domain.Grants
}

// VerifyAccessToken validates an access token against both the signature
// and the current user record: the user must still exist, still be active,
// and must not have changed their password since the token was issued.
func (s *Service) VerifyAccessToken(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, domain.ErrTokenMissing()
	}

	claims, err := s.codec.VerifyAccessToken(token)
	if err != nil {
		return Identity{}, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return Identity{}, domain.ErrUserNotFound()
	}
	if !u.IsActive {
		return Identity{}, domain.ErrTokenInvalid()
	}
	if u.PasswordChangedAfter(claims.IssuedAt) {
		return Identity{}, domain.ErrStaleToken()
	}

	return Identity{User: u.Sanitized(), Grants: domain.Resolve(u)}, nil
}
