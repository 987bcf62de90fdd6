package auth

import "context"

// Logout revokes a refresh token by adding it to the blacklist.
// A missing token is a no-op.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	// Scope the blacklist entry to the token's remaining lifetime when it
	// still parses; an unparseable token gets the full refresh TTL rather
	// than escaping revocation.
	ttl := s.refreshTTL
	if claims, err := s.codec.VerifyRefreshToken(refreshToken); err == nil {
		if remaining := claims.Exp.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}

	if err := s.blacklist.Add(ctx, refreshToken, ttl); err != nil {
		return err
	}
	s.audit("logout", nil)
	return nil
}
