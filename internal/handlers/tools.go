package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/services/dashboard"
)

// ToolsHandler serves the public catalog endpoints.
type ToolsHandler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

// NewToolsHandler creates a new tools handler
func NewToolsHandler(svc *dashboard.Service, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers catalog routes. The router should already have
// the /api/v1 prefix.
func (h *ToolsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tools", h.ListTools).Methods("GET")
	r.HandleFunc("/tools/popular", h.PopularTools).Methods("GET")
	r.HandleFunc("/tools/{id}", h.GetTool).Methods("GET")
	r.HandleFunc("/categories", h.ListCategories).Methods("GET")
	r.HandleFunc("/preference-options", h.ListPreferenceOptions).Methods("GET")
}

// CategorySummary is a category without its tool list.
type CategorySummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ToolCount int    `json:"toolCount"`
}

// ListTools handles GET /tools?category=&q=&new=
func (h *ToolsHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.Query{
		Category: q.Get("category"),
		Search:   q.Get("q"),
	}
	if raw := q.Get("new"); raw != "" {
		newOnly, err := strconv.ParseBool(raw)
		if err != nil {
			respondJSONError(w, r, http.StatusBadRequest, "validation_error", "new: must be true or false")
			return
		}
		query.NewOnly = newOnly
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"tools": h.svc.Catalog().Filter(query),
	})
}

// PopularTools handles GET /tools/popular?limit=
func (h *ToolsHandler) PopularTools(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	tools, err := h.svc.Popular(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tools": tools})
}

// GetTool handles GET /tools/{id}
func (h *ToolsHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	tool, ok := h.svc.Catalog().Lookup(id)
	if !ok {
		respondJSONError(w, r, http.StatusNotFound, "not_found", "Tool not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tool": tool})
}

// ListCategories handles GET /categories
func (h *ToolsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.svc.Catalog().Categories()
	out := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategorySummary{ID: c.ID, Title: c.Title, ToolCount: len(c.Tools)})
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": out})
}

// ListPreferenceOptions handles GET /preference-options
func (h *ToolsHandler) ListPreferenceOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"options": h.svc.Catalog().Options(),
	})
}
