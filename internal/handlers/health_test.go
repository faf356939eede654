package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
)

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	healthy := func(ctx context.Context) error { return nil }
	failing := func(ctx context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		query      string
		wantStatus int
		wantBody   string
		wantChecks map[string]string
	}{
		{
			name:       "basic mode skips checks",
			checks:     map[string]CheckFunc{"database": failing},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name:       "extended mode all healthy",
			checks:     map[string]CheckFunc{"database": healthy, "redis": healthy},
			query:      "?mode=extended",
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
			wantChecks: map[string]string{"database": "healthy", "redis": "healthy"},
		},
		{
			name:       "extended mode with a failure",
			checks:     map[string]CheckFunc{"database": healthy, "rabbitmq": failing},
			query:      "?mode=extended",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
			wantChecks: map[string]string{"database": "healthy", "rabbitmq": "unhealthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker("1.2.3")
			for name, check := range tt.checks {
				h.AddCheck(name, check)
			}

			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("status field = %q, want %q", resp.Status, tt.wantBody)
			}
			if resp.Timestamp == "" {
				t.Error("Expected timestamp to be set")
			}
			if diff := cmp.Diff(tt.wantChecks, resp.Checks); diff != "" {
				t.Errorf("checks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	r := mux.NewRouter()
	NewHealthChecker("1.2.3").RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["version"] != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", body["version"])
	}
}
