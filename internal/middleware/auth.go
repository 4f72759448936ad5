package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/painelsoft/mdfcopilot/internal/utils"
)

type contextKey string

// SellerKey carries the authenticated seller name in the request
// context.
const SellerKey contextKey = "seller"

// Auth validates the Bearer token on protected routes. With an empty
// secret the gate is disabled (single-terminal installs without
// APP_PASSWORD).
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}
			claims, err := utils.ValidateJWT(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), SellerKey, claims.Seller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Seller extracts the authenticated seller from the context, if any.
func Seller(ctx context.Context) string {
	if v, ok := ctx.Value(SellerKey).(string); ok {
		return v
	}
	return ""
}
