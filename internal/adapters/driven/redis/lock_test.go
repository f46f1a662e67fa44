package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestNewLock(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)

	if lock == nil {
		t.Fatal("expected non-nil lock")
	}
	if lock.ownerID == "" {
		t.Error("expected non-empty owner ID")
	}
}

func TestLock_OwnerID_Unique(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	if lock1.OwnerID() == lock2.OwnerID() {
		t.Errorf("expected unique owner IDs, got same: %s", lock1.OwnerID())
	}
}

func TestLock_Acquire_Success(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "scheduler", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected to acquire lock")
	}
}

func TestLock_Acquire_AlreadyHeld(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	acquired, err := lock1.Acquire(ctx, "scheduler", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected first lock to acquire")
	}

	acquired, err = lock2.Acquire(ctx, "scheduler", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected second lock to fail")
	}
}

func TestLock_Release(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	acquired, err := lock1.Acquire(ctx, "scheduler", 10*time.Second)
	if err != nil || !acquired {
		t.Fatalf("expected to acquire lock, got acquired=%v err=%v", acquired, err)
	}

	if err := lock1.Release(ctx, "scheduler"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Released lock is free for another instance
	acquired, err = lock2.Acquire(ctx, "scheduler", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected second lock to acquire after release")
	}
}

func TestLock_Release_NotOwner(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	acquired, err := lock1.Acquire(ctx, "scheduler", 10*time.Second)
	if err != nil || !acquired {
		t.Fatalf("expected to acquire lock, got acquired=%v err=%v", acquired, err)
	}

	// Release by non-owner is a no-op, not an error
	if err := lock2.Release(ctx, "scheduler"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Owner still holds the lock
	acquired, err = lock2.Acquire(ctx, "scheduler", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected lock to remain held by owner")
	}
}

func TestLock_Release_NotHeld(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	if err := lock.Release(ctx, "never-acquired"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLock_TTLExpiry(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	acquired, err := lock1.Acquire(ctx, "scheduler", 1*time.Second)
	if err != nil || !acquired {
		t.Fatalf("expected to acquire lock, got acquired=%v err=%v", acquired, err)
	}

	mr.FastForward(2 * time.Second)

	acquired, err = lock2.Acquire(ctx, "scheduler", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected lock to be acquirable after TTL expiry")
	}
}

func TestLock_Ping(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	if err := lock.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
