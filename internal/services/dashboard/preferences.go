package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/apperrors"
	"github.com/benvon/toolhub/internal/database"
	logpkg "github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/models"
	"github.com/benvon/toolhub/internal/recommend"
	"github.com/benvon/toolhub/internal/telemetry"
)

// Preferences is the stored preference row as seen by clients.
type Preferences struct {
	HasPreferences bool       `json:"hasPreferences"`
	Tags           []string   `json:"tags"`
	ToolIDs        []string   `json:"toolIds"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// ToolLink is the compact tool reference used by recommendation lists.
type ToolLink struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Href string `json:"href"`
}

// Recommendations lists the caller's recommended tools. ToolIDs is the stored
// list; RecommendedTools only carries ids that still resolve.
type Recommendations struct {
	RecommendedTools []ToolLink `json:"recommendedTools"`
	ToolIDs          []string   `json:"toolIds"`
}

// Suggestion is an AI-proposed selection and what it would recommend.
type Suggestion struct {
	SelectedPreferences []string `json:"selectedPreferences"`
	recommend.Result
}

// SavePreferences recomputes tags and tools for selected and replaces the
// caller's preference row.
func (s *Service) SavePreferences(ctx context.Context, identity *models.Identity, selected []string) (_ recommend.Result, err error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.save_preferences",
		attribute.Int("preferences.selected", len(selected)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return recommend.Result{}, err
	}

	result := s.engine.Compute(selected)
	prefs := &models.UserPreferences{
		UserID:  user.ID,
		Tags:    result.Tags,
		ToolIDs: result.ToolIDs,
	}
	if err := s.prefs.Upsert(ctx, prefs); err != nil {
		return recommend.Result{}, apperrors.Persistence("save preferences", err)
	}

	span.SetAttributes(attribute.Int("preferences.tools", len(result.ToolIDs)))
	s.logger.Info("preferences_saved",
		zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())),
		zap.Int("tag_count", len(result.Tags)),
		zap.Int("tool_count", len(result.ToolIDs)),
	)
	return result, nil
}

// GetPreferences returns the caller's stored preferences, or an empty value
// with HasPreferences false.
func (s *Service) GetPreferences(ctx context.Context, identity *models.Identity) (*Preferences, error) {
	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.loadPreferences(ctx, user)
}

func (s *Service) loadPreferences(ctx context.Context, user *models.User) (*Preferences, error) {
	row, err := s.prefs.GetByUserID(ctx, user.ID)
	if errors.Is(err, database.ErrNotFound) {
		return &Preferences{Tags: []string{}, ToolIDs: []string{}}, nil
	}
	if err != nil {
		return nil, apperrors.Persistence("get preferences", err)
	}
	updated := row.UpdatedAt
	return &Preferences{
		HasPreferences: true,
		Tags:           nonNil(row.Tags),
		ToolIDs:        nonNil(row.ToolIDs),
		UpdatedAt:      &updated,
	}, nil
}

// Recommended returns the tools stored on the caller's preference row.
func (s *Service) Recommended(ctx context.Context, identity *models.Identity) (_ *Recommendations, err error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.recommended")
	defer func() { telemetry.EndSpan(span, err) }()

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	prefs, err := s.loadPreferences(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.recommendations(prefs.ToolIDs), nil
}

func (s *Service) recommendations(toolIDs []string) *Recommendations {
	out := &Recommendations{RecommendedTools: []ToolLink{}, ToolIDs: toolIDs}
	for _, id := range toolIDs {
		tool, ok := s.catalog.Lookup(id)
		if !ok {
			continue
		}
		out.RecommendedTools = append(out.RecommendedTools, ToolLink{ID: tool.ID, Name: tool.Title, Href: tool.Href})
	}
	return out
}

// Suggest asks the configured model to pick preference options for a free-text
// description and previews the recommendation. Nothing is saved.
func (s *Service) Suggest(ctx context.Context, identity *models.Identity, description string) (_ *Suggestion, err error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.suggest_preferences")
	defer func() { telemetry.EndSpan(span, err) }()

	if s.suggester == nil {
		return nil, apperrors.Unavailable("preference suggestions", nil)
	}
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.Validation("description", "is required")
	}
	if _, err := s.resolveUser(ctx, identity); err != nil {
		return nil, err
	}

	ids, err := s.suggester.SuggestPreferences(ctx, description, s.catalog.Options())
	if err != nil {
		s.logger.Warn("preference_suggestion_failed", zap.String("error", logpkg.SanitizeError(err)))
		return nil, apperrors.Unavailable("preference suggestions", err)
	}
	ids = s.engine.KnownOptions(ids)
	return &Suggestion{SelectedPreferences: ids, Result: s.engine.Compute(ids)}, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
