package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/models"
)

const defaultCORSMaxAge = 86400

// CORSReloader wraps rs/cors and periodically reloads CORS config from the database.
type CORSReloader struct {
	swapHandler
	repo     database.CorsConfigRepositoryInterface
	fallback string
	log      *zap.Logger
}

// NewCORSReloader creates a CORS middleware that loads config from the DB and
// hot-reloads it. frontendURLFallback is used until a config row exists.
func NewCORSReloader(repo database.CorsConfigRepositoryInterface, frontendURLFallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	r := &CORSReloader{
		repo:     repo,
		fallback: strings.TrimSpace(frontendURLFallback),
		log:      log,
	}
	r.interval = reloadInterval
	r.build = r.handler
	return r
}

// Middleware returns a middleware that wraps next with CORS and hot-reload.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return r.wrap
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *CORSReloader) Start(ctx context.Context) {
	r.run(ctx)
}

func (r *CORSReloader) handler(ctx context.Context, next http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}

	cfg, err := r.repo.Get(ctx)
	switch {
	case err == nil:
		opts.AllowedOrigins = cfg.Origins()
		opts.AllowCredentials = cfg.AllowCredentials
		opts.MaxAge = cfg.MaxAge
	case errors.Is(err, database.ErrNotFound):
		opts.AllowedOrigins = (&models.CorsConfig{AllowedOrigins: r.fallback}).Origins()
		opts.AllowCredentials = true
		opts.MaxAge = defaultCORSMaxAge
	default:
		r.log.Warn("failed_to_load_cors_config", zap.Error(err))
		return nil
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}

	return cors.New(opts).Handler(next)
}
