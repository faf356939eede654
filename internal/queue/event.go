package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeToolUsed is published after a user opens a tool.
	EventTypeToolUsed EventType = "tool_used"
)

// Event is the message body exchanged over the event queue.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	ToolID     string    `json:"tool_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewToolUsedEvent creates a tool_used event.
func NewToolUsedEvent(userID uuid.UUID, toolID string, at time.Time) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       EventTypeToolUsed,
		UserID:     userID,
		ToolID:     toolID,
		OccurredAt: at.UTC(),
	}
}

// Validate checks the fields a consumer relies on.
func (e *Event) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("event id is required")
	}
	if e.Type != EventTypeToolUsed {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if strings.TrimSpace(e.ToolID) == "" {
		return fmt.Errorf("tool_id is required")
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("occurred_at is required")
	}
	return nil
}

// DecodeEvent parses and validates a message body.
func DecodeEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return &event, nil
}
