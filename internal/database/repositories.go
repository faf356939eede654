package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/toolhub/internal/models"
)

// UserRepositoryInterface defines account lookups and provisioning.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByProviderID(ctx context.Context, providerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// PreferencesRepositoryInterface defines the preference store.
type PreferencesRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)
	Upsert(ctx context.Context, prefs *models.UserPreferences) error
}

// RecentToolRepositoryInterface defines the recent-use store.
type RecentToolRepositoryInterface interface {
	Touch(ctx context.Context, userID uuid.UUID, toolID string, at time.Time) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.RecentToolUse, error)
}

// ToolUsageRepositoryInterface defines the aggregate popularity store.
type ToolUsageRepositoryInterface interface {
	Increment(ctx context.Context, toolID string, at time.Time) error
	ListTop(ctx context.Context, limit int) ([]*models.ToolUsageStat, error)
}

// OIDCConfigRepositoryInterface is what the OIDC provider needs to resolve configuration.
type OIDCConfigRepositoryInterface interface {
	GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error)
}

// CorsConfigRepositoryInterface is read by the CORS reloader.
type CorsConfigRepositoryInterface interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
	Set(ctx context.Context, c *models.CorsConfig) error
}

// RatelimitConfigRepositoryInterface is read by the rate limit reloader, which
// also seeds the default rate.
type RatelimitConfigRepositoryInterface interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface            = (*UserRepository)(nil)
	_ PreferencesRepositoryInterface     = (*PreferencesRepository)(nil)
	_ RecentToolRepositoryInterface      = (*RecentToolRepository)(nil)
	_ ToolUsageRepositoryInterface       = (*ToolUsageRepository)(nil)
	_ OIDCConfigRepositoryInterface      = (*OIDCConfigRepository)(nil)
	_ CorsConfigRepositoryInterface      = (*CorsConfigRepository)(nil)
	_ RatelimitConfigRepositoryInterface = (*RatelimitConfigRepository)(nil)
)
