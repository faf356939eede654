package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/toolhub/internal/models"
)

// RecentToolRepository tracks the last launch time per (user, tool).
type RecentToolRepository struct {
	db *DB
}

// NewRecentToolRepository creates a new recent tool repository
func NewRecentToolRepository(db *DB) *RecentToolRepository {
	return &RecentToolRepository{db: db}
}

// Touch refreshes the recency of (userID, toolID) to at: the existing row is
// removed and a fresh one inserted in one transaction. A concurrent touch that
// wins the insert race collapses onto the primary key, keeping the later time.
func (r *RecentToolRepository) Touch(ctx context.Context, userID uuid.UUID, toolID string, at time.Time) error {
	at = dbTime(at)
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_recent_tools WHERE user_id = $1 AND tool_id = $2`,
			userID, toolID,
		); err != nil {
			return fmt.Errorf("failed to delete recent tool: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_recent_tools (user_id, tool_id, last_used_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, tool_id) DO UPDATE SET
				last_used_at = CASE
					WHEN EXCLUDED.last_used_at > user_recent_tools.last_used_at THEN EXCLUDED.last_used_at
					ELSE user_recent_tools.last_used_at
				END
		`, userID, toolID, at); err != nil {
			return fmt.Errorf("failed to insert recent tool: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to touch recent tool: %w", err)
	}
	return nil
}

// ListByUserID returns up to limit rows, most recent first.
func (r *RecentToolRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.RecentToolUse, error) {
	if limit <= 0 {
		return []*models.RecentToolUse{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, tool_id, last_used_at
		FROM user_recent_tools
		WHERE user_id = $1
		ORDER BY last_used_at DESC, tool_id ASC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent tools: %w", err)
	}
	defer closeRows(rows)

	out := make([]*models.RecentToolUse, 0, limit)
	for rows.Next() {
		use := &models.RecentToolUse{}
		if err := rows.Scan(&use.UserID, &use.ToolID, &use.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent tool: %w", err)
		}
		out = append(out, use)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent tools: %w", err)
	}
	return out, nil
}
