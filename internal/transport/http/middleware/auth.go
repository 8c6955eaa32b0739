package middleware

import (
	"context"
	"net/http"
	"strings"

	"fictionverse/internal/auth"
	"fictionverse/internal/httputil"
	"fictionverse/internal/supabase"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserKey is the context key for the authenticated identity
	UserKey contextKey = "auth_user"
)

// BearerToken extracts the bearer token from an Authorization header, or ""
// when absent or malformed.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireAuth resolves the request's bearer token through the verifier chain
// and stores the identity in the request context. A missing token and an
// exhausted chain produce the same 401 so callers cannot probe which
// verification strategy is in use. No state is mutated on failure.
func RequireAuth(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				httputil.WriteUnauthorized(w, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the verified identity from the request context.
func UserFromContext(ctx context.Context) (*supabase.User, bool) {
	user, ok := ctx.Value(UserKey).(*supabase.User)
	return user, ok
}
