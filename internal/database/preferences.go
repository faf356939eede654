package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/toolhub/internal/models"
)

// PreferencesRepository stores the single preferences row per user.
type PreferencesRepository struct {
	db *DB
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetByUserID returns the user's preferences or ErrNotFound when none were saved.
func (r *PreferencesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	var (
		prefs            = &models.UserPreferences{}
		tagsJSON, idJSON string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, tags, tool_ids, created_at, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`, userID).Scan(&prefs.UserID, &tagsJSON, &idJSON, &prefs.CreatedAt, &prefs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preferences for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	if prefs.Tags, err = decodeStrings(tagsJSON); err != nil {
		return nil, fmt.Errorf("failed to decode preference tags: %w", err)
	}
	if prefs.ToolIDs, err = decodeStrings(idJSON); err != nil {
		return nil, fmt.Errorf("failed to decode preference tool ids: %w", err)
	}
	return prefs, nil
}

// Upsert replaces the user's tags and tool ids. There is no merge with the
// previous row; the last writer wins.
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	tagsJSON, err := encodeStrings(prefs.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode preference tags: %w", err)
	}
	idsJSON, err := encodeStrings(prefs.ToolIDs)
	if err != nil {
		return fmt.Errorf("failed to encode preference tool ids: %w", err)
	}

	now := dbTime(time.Now())
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO user_preferences (user_id, tags, tool_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			tags = EXCLUDED.tags,
			tool_ids = EXCLUDED.tool_ids,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, prefs.UserID, tagsJSON, idsJSON, now, now).Scan(&prefs.CreatedAt, &prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}

// JSON is passed as text so lib/pq does not send it as bytea.
func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStrings(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
