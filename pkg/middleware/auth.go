package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/pkg/auth"
	"github.com/fornello/pizzeria/pkg/response"
)

// claimsKey is the unexported context key for the verified identity.
// Only Authenticate writes it, so a handler (or RequireAdmin) that
// finds claims in the context knows the auth gate ran and passed.
type claimsKey struct{}

// ClaimsFromCtx returns the verified identity attached by Authenticate,
// or nil if the request never passed the auth gate.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// WithClaims attaches claims to ctx. Exposed for handler tests that
// exercise gated code without running the full middleware chain.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// Authenticate verifies the Authorization header ("<scheme> <token>")
// and attaches the resulting claims to the request context. A missing
// header yields 401 "Access Denied"; a header whose token segment is
// absent, malformed, or forged yields 401 "Invalid Token" — never a
// panic.
func Authenticate(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.Unauthorized(w, "Access Denied")
				return
			}

			// Second whitespace-separated segment is the token; a
			// header with no scheme prefix leaves it empty and fails
			// verification below.
			var token string
			if parts := strings.SplitN(header, " ", 2); len(parts) == 2 {
				token = strings.TrimSpace(parts[1])
			}

			claims, err := tm.ValidateToken(token)
			if err != nil {
				response.Unauthorized(w, "Invalid Token")
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose identity is not an admin. It must
// be composed after Authenticate; if the identity context is absent the
// gate fails closed with 401 rather than assuming anything about the
// caller.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromCtx(r.Context())
		if claims == nil {
			response.Unauthorized(w, "Access Denied")
			return
		}
		if claims.Role != models.RoleAdmin {
			response.Forbidden(w, "Access denied. Admins only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
