package models

import (
	"time"

	"github.com/google/uuid"
)

// RecentToolUse records the last time a user launched a tool. (UserID, ToolID) is unique.
type RecentToolUse struct {
	UserID     uuid.UUID `json:"userId"`
	ToolID     string    `json:"toolId"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// ToolUsageStat is the aggregate launch count for a tool across all users.
type ToolUsageStat struct {
	ToolID     string    `json:"toolId"`
	UseCount   int64     `json:"useCount"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}
