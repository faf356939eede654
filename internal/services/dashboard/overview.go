package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/models"
	"github.com/benvon/toolhub/internal/telemetry"
)

// Overview is everything the dashboard landing page renders.
type Overview struct {
	User             *models.User   `json:"user"`
	RecentTools      []RecentTool   `json:"recentTools"`
	RecommendedTools []ToolLink     `json:"recommendedTools"`
	NewTools         []catalog.Tool `json:"newTools"`
}

// Overview loads the caller's account, recent tools and recommendations. The
// two reads run concurrently.
func (s *Service) Overview(ctx context.Context, identity *models.Identity) (_ *Overview, err error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.overview")
	defer func() { telemetry.EndSpan(span, err) }()

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	var (
		recent []RecentTool
		prefs  *Preferences
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = s.listRecent(gctx, user, RecentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		prefs, err = s.loadPreferences(gctx, user)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Overview{
		User:             user,
		RecentTools:      recent,
		RecommendedTools: s.recommendations(prefs.ToolIDs).RecommendedTools,
		NewTools:         s.catalog.NewTools(),
	}, nil
}
