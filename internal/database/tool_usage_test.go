package database

import (
	"context"
	"testing"
	"time"
)

func TestToolUsageRepositoryIncrementAndListTop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewToolUsageRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	increments := []struct {
		toolID string
		at     time.Time
	}{
		{"copy-writer", base},
		{"voice-over", base.Add(time.Minute)},
		{"copy-writer", base.Add(2 * time.Minute)},
		{"copy-writer", base.Add(-time.Hour)},
		{"logo-maker", base},
	}
	for _, inc := range increments {
		if err := repo.Increment(ctx, inc.toolID, inc.at); err != nil {
			t.Fatalf("Increment(%s) error = %v", inc.toolID, err)
		}
	}

	top, err := repo.ListTop(ctx, 2)
	if err != nil {
		t.Fatalf("ListTop() error = %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].ToolID != "copy-writer" || top[0].UseCount != 3 {
		t.Errorf("top[0] = %+v, want copy-writer x3", top[0])
	}
	if !top[0].LastUsedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("LastUsedAt regressed to %v", top[0].LastUsedAt)
	}
	// ties break on tool id
	if top[1].ToolID != "logo-maker" || top[1].UseCount != 1 {
		t.Errorf("top[1] = %+v, want logo-maker x1", top[1])
	}
}
