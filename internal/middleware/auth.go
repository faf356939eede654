package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/models"
	"github.com/benvon/toolhub/internal/request"
	"github.com/benvon/toolhub/internal/services/oidc"
)

// TokenAuthenticator verifies a bearer token.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// Auth requires a valid bearer token and stores the caller identity in the
// request context. Invalid tokens answer 401; a provider that cannot be
// resolved answers 500.
func Auth(authenticator TokenAuthenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondErrorJSON(w, r, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", logger)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				respondErrorJSON(w, r, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format", logger)
				return
			}

			identity, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, oidc.ErrInvalidToken) {
					logger.Debug("token_rejected",
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("error", logpkg.SanitizeError(err)),
					)
					respondErrorJSON(w, r, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", logger)
					return
				}
				logger.Error("authentication_unavailable",
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondErrorJSON(w, r, http.StatusInternalServerError, "internal_error", "Authentication is temporarily unavailable", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithIdentity(r.Context(), identity)))
		})
	}
}
