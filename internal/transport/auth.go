package transport

import (
	"net/http"
	"strings"

	"github.com/rpggio/jobsite/internal/auth"
)

// AuthMiddleware enforces bearer token authentication and stores the
// resolved principal in the request context.
func AuthMiddleware(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				writeError(w, r, auth.ErrUnauthorized)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil || principal.Role == "" {
				writeError(w, r, auth.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RoleHeaderMiddleware trusts the role named in header. It is used when
// authentication is disabled; a missing header resolves as an unknown role.
func RoleHeaderMiddleware(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.Principal{
				UserID: r.Header.Get("X-Jobsite-User"),
				Role:   r.Header.Get(header),
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
