package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/request"
	"github.com/benvon/toolhub/internal/services/dashboard"
	"github.com/benvon/toolhub/internal/validation"
)

// RecentToolsHandler records and lists tool launches.
type RecentToolsHandler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

// NewRecentToolsHandler creates a new recent tools handler
func NewRecentToolsHandler(svc *dashboard.Service, logger *zap.Logger) *RecentToolsHandler {
	return &RecentToolsHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers recent-use routes on an authenticated router.
func (h *RecentToolsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/recent-tools", h.ListRecentTools).Methods("GET")
	r.HandleFunc("/recent-tools", h.RecordToolUse).Methods("POST")
}

// ListRecentTools handles GET /recent-tools
func (h *RecentToolsHandler) ListRecentTools(w http.ResponseWriter, r *http.Request) {
	identity := request.IdentityFromContext(r.Context())
	recent, err := h.svc.ListRecent(r.Context(), identity, dashboard.RecentLimit)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"recentTools": recent})
}

// RecordToolUse handles POST /recent-tools
func (h *RecentToolsHandler) RecordToolUse(w http.ResponseWriter, r *http.Request) {
	var req validation.RecordUseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	identity := request.IdentityFromContext(r.Context())
	if err := h.svc.RecordUse(r.Context(), identity, req.ToolID); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
