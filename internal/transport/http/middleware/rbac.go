package middleware

import (
	"net/http"
	"strings"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// RequirePermissions passes only when the identity holds EVERY named
// permission (role grants and custom grants both count). Assumes
// Authenticate already ran.
func RequirePermissions(writeErr WriteErrFunc, names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				// middleware ordering issue or context missing
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			for _, name := range names {
				if !id.Grants.Permissions.Has(name) {
					writeErr(w, r, domain.ErrMissingPermission(name))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles passes when the identity's role matches ANY of the named
// roles.
func RequireRoles(writeErr WriteErrFunc, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			if !id.Grants.RoleIn(roles...) {
				writeErr(w, r, domain.ErrInsufficientRole(strings.Join(roles, "|")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
