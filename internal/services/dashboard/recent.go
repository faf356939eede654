package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/apperrors"
	"github.com/benvon/toolhub/internal/catalog"
	logpkg "github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/models"
	"github.com/benvon/toolhub/internal/queue"
	"github.com/benvon/toolhub/internal/telemetry"
)

const publishTimeout = 2 * time.Second

// RecentTool is a recent-use row joined with its catalog entry.
type RecentTool struct {
	UserID     uuid.UUID    `json:"userId"`
	ToolID     string       `json:"toolId"`
	LastUsedAt time.Time    `json:"lastUsedAt"`
	Tool       catalog.Tool `json:"tool"`
}

// PopularTool is a tool with its aggregate launch count.
type PopularTool struct {
	Tool       catalog.Tool `json:"tool"`
	UseCount   int64        `json:"useCount"`
	LastUsedAt time.Time    `json:"lastUsedAt"`
}

// RecordUse marks toolID as just used by the caller. The id is not checked
// against the catalog; ListRecent hides ids that do not resolve.
func (s *Service) RecordUse(ctx context.Context, identity *models.Identity, toolID string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.record_use")
	defer func() { telemetry.EndSpan(span, err) }()

	toolID = strings.TrimSpace(toolID)
	if toolID == "" {
		return apperrors.Validation("toolId", "is required")
	}
	span.SetAttributes(attribute.String("tool.id", toolID))

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return err
	}

	at := s.now().UTC()
	if err := s.recent.Touch(ctx, user.ID, toolID, at); err != nil {
		return apperrors.Persistence("record tool use", err)
	}

	s.publishToolUsed(ctx, user.ID, toolID, at)
	return nil
}

// publishToolUsed is best effort; the touch already succeeded.
func (s *Service) publishToolUsed(ctx context.Context, userID uuid.UUID, toolID string, at time.Time) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := queue.NewToolUsedEvent(userID, toolID, at)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed_to_publish_tool_used",
			zap.String("error", logpkg.SanitizeError(err)),
			zap.String("tool_id", logpkg.SanitizeToolID(toolID)),
			zap.String("event_id", event.ID.String()),
		)
	}
}

// ListRecent returns up to limit of the caller's most recently used tools,
// newest first. Rows whose tool is no longer in the catalog are dropped after
// the limit is applied, so fewer than limit entries may come back.
func (s *Service) ListRecent(ctx context.Context, identity *models.Identity, limit int) (_ []RecentTool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.list_recent")
	defer func() { telemetry.EndSpan(span, err) }()

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.listRecent(ctx, user, limit)
}

func (s *Service) listRecent(ctx context.Context, user *models.User, limit int) ([]RecentTool, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	rows, err := s.recent.ListByUserID(ctx, user.ID, limit)
	if err != nil {
		return nil, apperrors.Persistence("list recent tools", err)
	}

	out := make([]RecentTool, 0, len(rows))
	for _, row := range rows {
		tool, ok := s.catalog.Lookup(row.ToolID)
		if !ok {
			continue
		}
		out = append(out, RecentTool{
			UserID:     row.UserID,
			ToolID:     row.ToolID,
			LastUsedAt: row.LastUsedAt,
			Tool:       tool,
		})
	}
	return out, nil
}

// Popular returns the most used tools across all users. limit is clamped to
// [1, MaxPopularLimit]; zero means DefaultPopularLimit.
func (s *Service) Popular(ctx context.Context, limit int) (_ []PopularTool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.popular")
	defer func() { telemetry.EndSpan(span, err) }()

	switch {
	case limit <= 0:
		limit = DefaultPopularLimit
	case limit > MaxPopularLimit:
		limit = MaxPopularLimit
	}

	stats, err := s.usage.ListTop(ctx, limit)
	if err != nil {
		return nil, apperrors.Persistence("list popular tools", err)
	}

	out := make([]PopularTool, 0, len(stats))
	for _, stat := range stats {
		tool, ok := s.catalog.Lookup(stat.ToolID)
		if !ok {
			continue
		}
		out = append(out, PopularTool{Tool: tool, UseCount: stat.UseCount, LastUsedAt: stat.LastUsedAt})
	}
	return out, nil
}
