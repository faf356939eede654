package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/models"
	"github.com/benvon/toolhub/internal/request"
	"github.com/benvon/toolhub/internal/services/dashboard"
)

const testSubject = "user_abc"

// testEnv is a router backed by a private migrated SQLite database.
type testEnv struct {
	db     *database.DB
	svc    *dashboard.Service
	router *mux.Router
}

func newTestEnv(t *testing.T, opts ...dashboard.Option) *testEnv {
	t.Helper()

	ctx := context.Background()
	db, err := database.New(ctx, database.DialectSQLite, filepath.Join(t.TempDir(), "toolhub.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	logger := zap.NewNop()
	svc := dashboard.NewService(
		database.NewUserRepository(db),
		database.NewPreferencesRepository(db),
		database.NewRecentToolRepository(db),
		database.NewToolUsageRepository(db),
		testCatalog(t),
		logger,
		opts...,
	)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	NewToolsHandler(svc, logger).RegisterRoutes(api)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(withTestIdentity)
	NewPreferencesHandler(svc, logger).RegisterRoutes(protected)
	NewRecentToolsHandler(svc, logger).RegisterRoutes(protected)
	NewDashboardHandler(svc, logger).RegisterRoutes(protected)
	NewAuthHandler(nil, "cognito", svc, logger).RegisterRoutes(protected.PathPrefix("/auth").Subrouter())

	return &testEnv{db: db, svc: svc, router: r}
}

// withTestIdentity stands in for the bearer-token middleware. Requests carrying
// X-Test-Anonymous get no identity.
func withTestIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test-Anonymous") == "" {
			identity := &models.Identity{Subject: testSubject, Email: "ada@example.com", Name: "Ada"}
			r = r.WithContext(request.WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

// provision creates the caller's account the way the frontend does on login.
func (e *testEnv) provision(t *testing.T) *models.User {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/v1/auth/me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /auth/me status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var account struct {
		User models.User `json:"user"`
	}
	decodeBody(t, rec, &account)
	return &account.User
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decodeBody(t, rec, &body)
	if success, _ := body["success"].(bool); success {
		t.Errorf("expected success=false in error body %v", body)
	}
	kind, _ := body["error"].(string)
	return kind
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New(
		[]catalog.Category{
			{ID: "gen", Title: "AI generation", Tools: []catalog.Tool{
				{ID: "painter", Title: "Painter", Description: "Paints pictures", Tags: []string{"design", "creative"}, Href: "/painter"},
				{ID: "scribe", Title: "Scribe", Description: "Writes copy", Tags: []string{"writing"}, Href: "/scribe", IsNew: true},
			}},
			{ID: "audio", Title: "Audio and voiceover", Tools: []catalog.Tool{
				{ID: "narrator", Title: "Narrator", Description: "Reads aloud", Tags: []string{"audio", "writing"}, Href: "/narrator", IsNew: true},
			}},
		},
		[]catalog.PreferenceOption{
			{ID: "design", Title: "Design", Tags: []string{"design", "creative"}},
			{ID: "writing", Title: "Writing", Tags: []string{"writing"}},
			{ID: "audio", Title: "Audio", Tags: []string{"audio"}},
		},
	)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return c
}
