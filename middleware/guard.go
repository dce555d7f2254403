// Package middleware provides the net/http bearer-token guard in front of
// protected handlers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tripwell/tenauth"
)

type authResultContextKey struct{}

// AuthResultFromContext extracts the validated claims placed by [Guard].
func AuthResultFromContext(ctx context.Context) (*tenauth.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*tenauth.AuthResult)
	return res, ok
}

// Guard validates the Authorization bearer token on every request and
// stores the result in the request context. Every failure is a plain 401;
// the reason is never written to the response.
func Guard(engine *tenauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Validate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole wraps a handler and rejects principals whose claims do not
// include the role. Must run inside [Guard].
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := AuthResultFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, have := range res.Roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
