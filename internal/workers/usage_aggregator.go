package workers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/database"
	logpkg "github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/queue"
)

// EventProcessor handles one decoded event.
type EventProcessor func(ctx context.Context, event *queue.Event) error

// ToolLookup reports whether a tool id exists in the catalog.
type ToolLookup interface {
	Has(id string) bool
}

// ErrUnknownTool marks an event for a tool the catalog does not carry.
var ErrUnknownTool = errors.New("unknown tool")

// UsageAggregator consumes tool_used events and maintains popularity counts.
type UsageAggregator struct {
	usageRepo database.ToolUsageRepositoryInterface
	tools     ToolLookup
	logger    *zap.Logger
	registry  map[queue.EventType]EventProcessor
}

// NewUsageAggregator creates an aggregator and registers the tool_used processor.
func NewUsageAggregator(usageRepo database.ToolUsageRepositoryInterface, tools ToolLookup, logger *zap.Logger) *UsageAggregator {
	a := &UsageAggregator{
		usageRepo: usageRepo,
		tools:     tools,
		logger:    logger,
		registry:  make(map[queue.EventType]EventProcessor),
	}
	a.RegisterProcessor(queue.EventTypeToolUsed, a.ProcessToolUsed)
	return a
}

// RegisterProcessor registers a processor for an event type.
func (a *UsageAggregator) RegisterProcessor(typ queue.EventType, proc EventProcessor) {
	a.registry[typ] = proc
}

// ProcessToolUsed bumps the aggregate count for the event's tool.
func (a *UsageAggregator) ProcessToolUsed(ctx context.Context, event *queue.Event) error {
	if !a.tools.Has(event.ToolID) {
		return fmt.Errorf("%w: %s", ErrUnknownTool, event.ToolID)
	}
	if err := a.usageRepo.Increment(ctx, event.ToolID, event.OccurredAt); err != nil {
		return fmt.Errorf("failed to increment tool usage: %w", err)
	}
	a.logger.Debug("tool_usage_recorded",
		zap.String("event_id", event.ID.String()),
		zap.String("tool_id", logpkg.SanitizeToolID(event.ToolID)),
		zap.String("user_id", logpkg.SanitizeUserID(event.UserID.String())),
	)
	return nil
}

// ProcessMessage dispatches a message and settles it. Events that can never
// succeed are acked and dropped; store failures are nacked without requeue so
// they land in the dead letter queue.
func (a *UsageAggregator) ProcessMessage(ctx context.Context, msg queue.MessageInterface) error {
	event := msg.GetEvent()
	proc, ok := a.registry[event.Type]
	if !ok {
		a.logger.Warn("unhandled_event_type",
			zap.String("event_id", event.ID.String()),
			zap.String("event_type", logpkg.SanitizeString(string(event.Type), logpkg.MaxGeneralStringLength)),
		)
		return msg.Ack()
	}

	err := proc(ctx, event)
	switch {
	case err == nil:
		return msg.Ack()
	case errors.Is(err, ErrUnknownTool):
		a.logger.Info("dropping_event_for_unknown_tool",
			zap.String("event_id", event.ID.String()),
			zap.String("tool_id", logpkg.SanitizeToolID(event.ToolID)),
		)
		return msg.Ack()
	default:
		if nackErr := msg.Nack(false); nackErr != nil {
			return fmt.Errorf("failed to nack message after %w: %w", err, nackErr)
		}
		return err
	}
}

// Run processes messages until ctx is cancelled or the queue closes its channels.
func (a *UsageAggregator) Run(ctx context.Context, msgChan <-chan queue.MessageInterface, errChan <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			a.logger.Error("queue_error", zap.String("error", logpkg.SanitizeError(err)))
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("message_channel_closed")
				return
			}
			if err := a.ProcessMessage(ctx, msg); err != nil {
				a.logger.Error("failed_to_process_event",
					zap.String("error", logpkg.SanitizeError(err)),
					zap.String("event_id", msg.GetEvent().ID.String()),
					zap.String("event_type", string(msg.GetEvent().Type)),
				)
			}
		}
	}
}
