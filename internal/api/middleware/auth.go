package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sanjeevceligo/rollout-insights/internal/auth"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/errors"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// SubjectKey is the context key for the authenticated principal
	SubjectKey ContextKey = "subject"
	// EmailKey is the context key for the principal's email
	EmailKey ContextKey = "email"
)

// Auth returns a middleware that validates bearer tokens
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string
			if header := r.Header.Get("Authorization"); header != "" {
				parts := strings.Split(header, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					tokenStr = parts[1]
				}
			}

			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			claims, err := auth.ParseClaims(tokenStr, jwtSecret)
			if err != nil {
				utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject extracts the authenticated principal from the request context
func GetSubject(r *http.Request) (string, bool) {
	subject, ok := r.Context().Value(SubjectKey).(string)
	return subject, ok
}
