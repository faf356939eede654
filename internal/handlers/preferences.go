package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/request"
	"github.com/benvon/toolhub/internal/services/dashboard"
	"github.com/benvon/toolhub/internal/validation"
)

// PreferencesHandler handles onboarding preferences and recommendations.
type PreferencesHandler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(svc *dashboard.Service, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers preference routes on an authenticated router.
func (h *PreferencesHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
	r.HandleFunc("/preferences", h.SavePreferences).Methods("POST")
	r.HandleFunc("/preferences/suggest", h.SuggestPreferences).Methods("POST")
	r.HandleFunc("/recommended-tools", h.GetRecommendedTools).Methods("GET")
}

// SavePreferences handles POST /preferences
func (h *PreferencesHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var req validation.SavePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	identity := request.IdentityFromContext(r.Context())
	result, err := h.svc.SavePreferences(r.Context(), identity, validation.SanitizeIDs(req.SelectedPreferences))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tags":    result.Tags,
		"toolIds": result.ToolIDs,
	})
}

// GetPreferences handles GET /preferences
func (h *PreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.svc.GetPreferences(r.Context(), request.IdentityFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

// SuggestPreferences handles POST /preferences/suggest
func (h *PreferencesHandler) SuggestPreferences(w http.ResponseWriter, r *http.Request) {
	var req validation.SuggestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	identity := request.IdentityFromContext(r.Context())
	suggestion, err := h.svc.Suggest(r.Context(), identity, validation.SanitizeText(req.Description))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, suggestion)
}

// GetRecommendedTools handles GET /recommended-tools
func (h *PreferencesHandler) GetRecommendedTools(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Recommended(r.Context(), request.IdentityFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}
