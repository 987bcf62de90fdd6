package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bossgrand/garment/services/auth-service/internal/application/auth"
	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// AccessVerifier resolves a raw access token to a live identity: claims
// verified, user re-fetched, grants resolved.
type AccessVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (auth.Identity, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

const accessCookieName = "access_token"

// ExtractAccessToken looks for the token in priority order: the
// Authorization header, then the access-token cookie, then the
// X-Access-Token header. First hit wins.
func ExtractAccessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(accessCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(r.Header.Get("X-Access-Token"))
}

// Authenticate verifies the access token and injects the resolved
// identity into the request context.
func Authenticate(verifier AccessVerifier, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ExtractAccessToken(r)
			if raw == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			id, err := verifier.VerifyAccessToken(r.Context(), raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
