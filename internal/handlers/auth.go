package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/database"
	logpkg "github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/request"
	"github.com/benvon/toolhub/internal/services/dashboard"
	"github.com/benvon/toolhub/internal/services/oidc"
)

// LoginConfigSource builds the frontend login configuration. *oidc.Provider
// satisfies it.
type LoginConfigSource interface {
	GetLoginConfig(ctx context.Context, providerName, state string) (*oidc.LoginConfig, error)
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	login        LoginConfigSource
	providerName string
	svc          *dashboard.Service
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(login LoginConfigSource, providerName string, svc *dashboard.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{login: login, providerName: providerName, svc: svc, logger: logger}
}

// RegisterPublicRoutes registers routes that must work before sign-in.
// The router should already have the /api/v1/auth prefix.
func (h *AuthHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/oidc/login", h.GetOIDCLogin).Methods("GET")
}

// RegisterRoutes registers authenticated auth routes.
// The router should already have the /api/v1/auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// GetOIDCLogin returns OIDC configuration for frontend
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	loginConfig, err := h.login.GetLoginConfig(r.Context(), h.providerName, uuid.NewString())
	if errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, r, http.StatusNotFound, "not_found", "OIDC provider is not configured")
		return
	}
	if err != nil {
		h.logger.Error("failed_to_get_oidc_login_config",
			zap.String("provider", h.providerName),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, r, http.StatusInternalServerError, "internal_error", "Failed to get OIDC configuration")
		return
	}

	respondJSON(w, http.StatusOK, loginConfig)
}

// GetMe provisions the caller's account on first sight and returns it.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Me(r.Context(), request.IdentityFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}
