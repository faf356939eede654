package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler handles OpenAPI document requests
type OpenAPIHandler struct {
	spec []byte

	once    sync.Once
	asJSON  []byte
	jsonErr error
}

// NewOpenAPIHandler serves spec, a YAML OpenAPI document.
func NewOpenAPIHandler(spec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{spec: spec}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods("GET")
}

// ServeYAML serves the OpenAPI spec in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	if len(h.spec) == 0 {
		respondJSONError(w, r, http.StatusNotFound, "not_found", "OpenAPI document not found")
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	if _, err := w.Write(h.spec); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// ServeJSON serves the OpenAPI spec in JSON format. The conversion runs once.
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	if len(h.spec) == 0 {
		respondJSONError(w, r, http.StatusNotFound, "not_found", "OpenAPI document not found")
		return
	}

	h.once.Do(func() {
		var doc map[string]any
		if h.jsonErr = yaml.Unmarshal(h.spec, &doc); h.jsonErr != nil {
			return
		}
		h.asJSON, h.jsonErr = json.Marshal(doc)
	})
	if h.jsonErr != nil {
		respondJSONError(w, r, http.StatusInternalServerError, "internal_error", "Failed to parse OpenAPI document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(h.asJSON); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}
