// internal/api/middleware.go
package api

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fitclub/internal/auth"
	"fitclub/internal/authz"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFrom returns the verified token claims stored by Authenticator.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// WithClaims stores verified claims on the context.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Authenticator extracts the bearer token, verifies it, and stores the
// claims on the request context. Requests without a valid token get 401.
func Authenticator(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				WriteError(w, logger, auth.ErrInvalidToken)
				return
			}

			claims, err := auth.VerifyToken(token, secret)
			if err != nil {
				WriteError(w, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole gates a route on explicit role membership. Runs after
// Authenticator; an authenticated-but-insufficient request gets 403.
func RequireRole(logger *zap.Logger, allowed ...authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				WriteError(w, logger, auth.ErrInvalidToken)
				return
			}
			if err := authz.RequireAnyOf(claims.Role, allowed); err != nil {
				WriteError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}
