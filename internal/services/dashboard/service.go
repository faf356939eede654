// Package dashboard implements the account, preference, recommendation and
// recent-use operations behind the HTTP API.
package dashboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/apperrors"
	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/models"
	"github.com/benvon/toolhub/internal/queue"
	"github.com/benvon/toolhub/internal/recommend"
	"github.com/benvon/toolhub/internal/services/ai"
)

const (
	// RecentLimit is the number of recent tools returned by ListRecent callers.
	RecentLimit = 10
	// DefaultPopularLimit and MaxPopularLimit bound Popular.
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50
)

// Service is safe for concurrent use.
type Service struct {
	users     database.UserRepositoryInterface
	prefs     database.PreferencesRepositoryInterface
	recent    database.RecentToolRepositoryInterface
	usage     database.ToolUsageRepositoryInterface
	catalog   *catalog.Catalog
	engine    *recommend.Engine
	publisher queue.Publisher
	suggester ai.Suggester
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithPublisher enables tool_used events after RecordUse.
func WithPublisher(p queue.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithSuggester enables Suggest.
func WithSuggester(sg ai.Suggester) Option {
	return func(s *Service) { s.suggester = sg }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a dashboard service.
func NewService(
	users database.UserRepositoryInterface,
	prefs database.PreferencesRepositoryInterface,
	recent database.RecentToolRepositoryInterface,
	usage database.ToolUsageRepositoryInterface,
	cat *catalog.Catalog,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		users:   users,
		prefs:   prefs,
		recent:  recent,
		usage:   usage,
		catalog: cat,
		engine:  recommend.NewEngine(cat),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the service was built with.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// SuggestionsEnabled reports whether Suggest can be served.
func (s *Service) SuggestionsEnabled() bool {
	return s.suggester != nil
}

// resolveUser looks up the account for identity without creating it.
func (s *Service) resolveUser(ctx context.Context, identity *models.Identity) (*models.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, &apperrors.AuthenticationError{Reason: "missing identity"}
	}
	user, err := s.users.GetByProviderID(ctx, identity.Subject)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperrors.NotFound("user", "")
	}
	if err != nil {
		return nil, apperrors.Persistence("get user", err)
	}
	return user, nil
}
