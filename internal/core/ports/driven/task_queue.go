package driven

import (
	"context"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// TaskQueue handles background task queuing and processing.
// Implementations can use Redis (preferred) or Postgres (fallback).
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing.
	Enqueue(ctx context.Context, task *domain.Task) error

	// DequeueWithTimeout retrieves the next available task, waiting up to
	// timeout seconds. Returns nil, nil if the timeout elapses with no task.
	// The returned task is marked processing and not handed to other workers.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion; the task leaves the queue.
	Ack(ctx context.Context, taskID string) error

	// Nack marks the task failed. It is re-queued for retry until
	// MaxAttempts is exceeded, then moved to failed state.
	Nack(ctx context.Context, taskID string, reason string) error

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}
