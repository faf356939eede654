package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/benvon/toolhub/internal/logger"
)

const (
	// DefaultConnectAttempts covers a broker that starts alongside the service.
	DefaultConnectAttempts = 10

	initialRetryDelay = 2 * time.Second
	maxRetryDelay     = 30 * time.Second
)

// Connect dials RabbitMQ, retrying with exponential backoff capped at 30s.
func Connect(ctx context.Context, amqpURL string, attempts int, logger *zap.Logger) (*RabbitMQQueue, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		q, err := NewRabbitMQQueue(amqpURL)
		if err == nil {
			logger.Info("connected_to_rabbitmq", zap.Int("attempt", attempt+1))
			return q, nil
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}

		delay := retryDelay(attempt)
		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", attempts),
			zap.String("error", logpkg.SanitizeError(err)),
			zap.Duration("retry_delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}

func retryDelay(attempt int) time.Duration {
	if attempt >= 5 {
		return maxRetryDelay
	}
	delay := initialRetryDelay * time.Duration(1<<uint(attempt))
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
