package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/toolhub/internal/models"
)

// ToolUsageRepository keeps aggregate launch counts per tool.
type ToolUsageRepository struct {
	db *DB
}

// NewToolUsageRepository creates a new tool usage repository
func NewToolUsageRepository(db *DB) *ToolUsageRepository {
	return &ToolUsageRepository{db: db}
}

// Increment adds one launch of toolID at the given time.
func (r *ToolUsageRepository) Increment(ctx context.Context, toolID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tool_usage_stats (tool_id, use_count, last_used_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (tool_id) DO UPDATE SET
			use_count = tool_usage_stats.use_count + 1,
			last_used_at = CASE
				WHEN EXCLUDED.last_used_at > tool_usage_stats.last_used_at THEN EXCLUDED.last_used_at
				ELSE tool_usage_stats.last_used_at
			END
	`, toolID, dbTime(at))
	if err != nil {
		return fmt.Errorf("failed to increment tool usage: %w", err)
	}
	return nil
}

// ListTop returns the most used tools, highest count first.
func (r *ToolUsageRepository) ListTop(ctx context.Context, limit int) ([]*models.ToolUsageStat, error) {
	if limit <= 0 {
		return []*models.ToolUsageStat{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT tool_id, use_count, last_used_at
		FROM tool_usage_stats
		ORDER BY use_count DESC, tool_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool usage: %w", err)
	}
	defer closeRows(rows)

	out := make([]*models.ToolUsageStat, 0, limit)
	for rows.Next() {
		stat := &models.ToolUsageStat{}
		if err := rows.Scan(&stat.ToolID, &stat.UseCount, &stat.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tool usage: %w", err)
		}
		out = append(out, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tool usage: %w", err)
	}
	return out, nil
}
