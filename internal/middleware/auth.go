package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmynk/billpay/internal/auth"
	"github.com/mmynk/billpay/internal/httputil"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for the authenticated session claims.
	ClaimsKey contextKey = "claims"
	// RequestIDKey is the context key for the request id.
	RequestIDKey contextKey = "request_id"
)

// GetClaims extracts the session claims from the context.
// Returns nil if the request was not authenticated.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims
}

// GetSubscriberNumber returns the authenticated subscriber number, or "".
func GetSubscriberNumber(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.SubscriberNumber
	}
	return ""
}

// RequireAuth returns a middleware that validates Bearer tokens.
// It adds the token's claims to the request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				httputil.WriteError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				httputil.WriteError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated requests from non-admin subscribers.
// It must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			httputil.WriteError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}
		if !claims.IsAdmin() {
			httputil.WriteError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
