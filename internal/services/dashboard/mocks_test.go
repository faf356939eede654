package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/models"
	"github.com/benvon/toolhub/internal/queue"
)

type mockUserRepo struct {
	createFunc          func(ctx context.Context, user *models.User) error
	getByProviderIDFunc func(ctx context.Context, providerID string) (*models.User, error)
	updateFunc          func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = uuid.New()
	return nil
}

func (m *mockUserRepo) GetByProviderID(ctx context.Context, providerID string) (*models.User, error) {
	if m.getByProviderIDFunc != nil {
		return m.getByProviderIDFunc(ctx, providerID)
	}
	return nil, database.ErrNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

type mockPreferencesRepo struct {
	getByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)
	upsertFunc      func(ctx context.Context, prefs *models.UserPreferences) error
}

func (m *mockPreferencesRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, database.ErrNotFound
}

func (m *mockPreferencesRepo) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, prefs)
	}
	return nil
}

type mockRecentRepo struct {
	touchFunc        func(ctx context.Context, userID uuid.UUID, toolID string, at time.Time) error
	listByUserIDFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]*models.RecentToolUse, error)
}

func (m *mockRecentRepo) Touch(ctx context.Context, userID uuid.UUID, toolID string, at time.Time) error {
	if m.touchFunc != nil {
		return m.touchFunc(ctx, userID, toolID, at)
	}
	return nil
}

func (m *mockRecentRepo) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.RecentToolUse, error) {
	if m.listByUserIDFunc != nil {
		return m.listByUserIDFunc(ctx, userID, limit)
	}
	return nil, nil
}

type mockUsageRepo struct {
	listTopFunc func(ctx context.Context, limit int) ([]*models.ToolUsageStat, error)
}

func (m *mockUsageRepo) Increment(ctx context.Context, toolID string, at time.Time) error {
	return nil
}

func (m *mockUsageRepo) ListTop(ctx context.Context, limit int) ([]*models.ToolUsageStat, error) {
	if m.listTopFunc != nil {
		return m.listTopFunc(ctx, limit)
	}
	return nil, nil
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, event *queue.Event) error
}

func (m *mockPublisher) Publish(ctx context.Context, event *queue.Event) error {
	return m.publishFunc(ctx, event)
}

type mockSuggester struct {
	suggestFunc func(ctx context.Context, description string, options []catalog.PreferenceOption) ([]string, error)
}

func (m *mockSuggester) SuggestPreferences(ctx context.Context, description string, options []catalog.PreferenceOption) ([]string, error) {
	return m.suggestFunc(ctx, description, options)
}

type testDeps struct {
	users  *mockUserRepo
	prefs  *mockPreferencesRepo
	recent *mockRecentRepo
	usage  *mockUsageRepo
}

func newTestDeps() *testDeps {
	return &testDeps{
		users:  &mockUserRepo{},
		prefs:  &mockPreferencesRepo{},
		recent: &mockRecentRepo{},
		usage:  &mockUsageRepo{},
	}
}

func (d *testDeps) service(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return NewService(d.users, d.prefs, d.recent, d.usage, testCatalog(t), zap.NewNop(), opts...)
}

// withUser makes GetByProviderID resolve the given account.
func (d *testDeps) withUser(user *models.User) *testDeps {
	d.users.getByProviderIDFunc = func(ctx context.Context, providerID string) (*models.User, error) {
		if providerID != user.ProviderID {
			return nil, database.ErrNotFound
		}
		copied := *user
		return &copied, nil
	}
	return d
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New(
		[]catalog.Category{
			{ID: "gen", Title: "AI generation", Tools: []catalog.Tool{
				{ID: "painter", Title: "Painter", Description: "Paints pictures", Tags: []string{"design"}, Href: "/painter"},
				{ID: "scribe", Title: "Scribe", Description: "Writes copy", Tags: []string{"writing"}, Href: "/scribe", IsNew: true},
			}},
			{ID: "audio", Title: "Audio and voiceover", Tools: []catalog.Tool{
				{ID: "narrator", Title: "Narrator", Description: "Reads aloud", Tags: []string{"audio", "writing"}, Href: "/narrator", IsNew: true},
			}},
		},
		[]catalog.PreferenceOption{
			{ID: "design", Title: "Design", Tags: []string{"design"}},
			{ID: "writing", Title: "Writing", Tags: []string{"writing"}},
			{ID: "audio", Title: "Audio", Tags: []string{"audio"}},
		},
	)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return c
}

func testUser() *models.User {
	return &models.User{
		ID:             uuid.MustParse("7d9c7c51-3f0c-4f5f-9e51-3b8e0f4f1a01"),
		ProviderID:     "user_abc",
		Email:          "ada@example.com",
		PurchasedCoins: models.DefaultPurchasedCoins,
	}
}

func testIdentity() *models.Identity {
	return &models.Identity{Subject: "user_abc", Email: "ada@example.com"}
}
