package ai

import (
	"context"

	"github.com/benvon/toolhub/internal/catalog"
)

// Suggester maps a free-text description of a user's work onto preference option ids.
type Suggester interface {
	// SuggestPreferences returns option ids drawn from options, in the order
	// the model ranked them. Ids outside options are never returned.
	SuggestPreferences(ctx context.Context, description string, options []catalog.PreferenceOption) ([]string, error)
}
