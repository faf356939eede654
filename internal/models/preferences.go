package models

import (
	"time"

	"github.com/google/uuid"
)

// UserPreferences is the single preferences row per user. Tags and ToolIDs are
// recomputed and replaced on every save.
type UserPreferences struct {
	UserID    uuid.UUID `json:"userId"`
	Tags      []string  `json:"tags"`
	ToolIDs   []string  `json:"toolIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
