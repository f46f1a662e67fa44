package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

func setupTestQueue(t *testing.T) (*Queue, *redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	q, err := NewQueue(client, "test-worker")
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	return q, client, func() {
		client.Close()
		mr.Close()
	}
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	q, _, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewSyncConnectionTask("conn-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a task")
	}
	if got.ID != task.ID {
		t.Errorf("expected task %s, got %s", task.ID, got.ID)
	}
	if got.Type != domain.TaskTypeSyncConnection {
		t.Errorf("expected type %s, got %s", domain.TaskTypeSyncConnection, got.Type)
	}
	if got.ConnectionID() != "conn-1" {
		t.Errorf("expected connection conn-1, got %s", got.ConnectionID())
	}
	if got.Status != domain.TaskStatusProcessing {
		t.Errorf("expected status processing, got %s", got.Status)
	}
	if got.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", got.Attempts)
	}
}

func TestQueue_DequeueEmpty(t *testing.T) {
	q, _, cleanup := setupTestQueue(t)
	defer cleanup()

	got, err := q.DequeueWithTimeout(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no task, got %+v", got)
	}
}

func TestQueue_Ack(t *testing.T) {
	q, client, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewSyncConnectionTask("conn-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("expected a task, got task=%v err=%v", got, err)
	}

	if err := q.Ack(ctx, got.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := getStoredTask(t, client, got.ID)
	if stored.Status != domain.TaskStatusCompleted {
		t.Errorf("expected status completed, got %s", stored.Status)
	}
	if stored.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestQueue_Nack_Retries(t *testing.T) {
	q, client, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewSyncConnectionTask("conn-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("expected a task, got task=%v err=%v", got, err)
	}

	if err := q.Nack(ctx, got.ID, "provider unavailable"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := getStoredTask(t, client, got.ID)
	if stored.Status != domain.TaskStatusPending {
		t.Errorf("expected status pending for retry, got %s", stored.Status)
	}
	if stored.Error != "provider unavailable" {
		t.Errorf("expected error to be recorded, got %q", stored.Error)
	}

	// Retry goes through the scheduled set with backoff
	n, err := client.ZCard(ctx, scheduledTasks).Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 scheduled retry, got %d", n)
	}
}

func TestQueue_Nack_Exhausted(t *testing.T) {
	q, client, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewSyncConnectionTask("conn-1")
	task.MaxAttempts = 1
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("expected a task, got task=%v err=%v", got, err)
	}

	if err := q.Nack(ctx, got.ID, "still failing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := getStoredTask(t, client, got.ID)
	if stored.Status != domain.TaskStatusFailed {
		t.Errorf("expected status failed, got %s", stored.Status)
	}
}

func TestQueue_Nack_Unknown(t *testing.T) {
	q, _, cleanup := setupTestQueue(t)
	defer cleanup()

	err := q.Nack(context.Background(), "no-such-task", "reason")
	if err == nil {
		t.Fatal("expected error for unknown task")
	}
}

func TestQueue_Ping(t *testing.T) {
	q, _, cleanup := setupTestQueue(t)
	defer cleanup()

	if err := q.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func getStoredTask(t *testing.T, client *redis.Client, taskID string) *domain.Task {
	t.Helper()

	data, err := client.Get(context.Background(), taskKeyPrefix+taskID).Result()
	if err != nil {
		t.Fatalf("failed to get task %s: %v", taskID, err)
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		t.Fatalf("failed to unmarshal task: %v", err)
	}
	return &task
}
