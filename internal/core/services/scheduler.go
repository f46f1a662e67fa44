package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Scheduler enqueues periodic full-sync tasks. It runs on worker nodes and
// fires a sync_all task whenever the configured cron schedule comes due.
//
// For multi-worker deployments, configure a DistributedLock to prevent
// duplicate task enqueuing across instances.
type Scheduler struct {
	taskQueue driven.TaskQueue
	lock      driven.DistributedLock
	logger    *slog.Logger

	schedule cron.Schedule
	interval time.Duration

	mu      sync.RWMutex
	running bool
	nextRun time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}

	lockTTL      time.Duration
	lockRequired bool
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	TaskQueue    driven.TaskQueue
	Lock         driven.DistributedLock // Optional: distributed lock for multi-instance coordination
	Logger       *slog.Logger
	CronSpec     string        // Standard 5-field cron expression (default: "0 */6 * * *")
	PollInterval time.Duration // How often to check whether the schedule is due (default: 30s)
	LockTTL      time.Duration // TTL for the distributed lock (default: 60s)
	LockRequired bool          // If true, skip scheduling when lock cannot be acquired
}

// NewScheduler creates a new scheduler. It returns an error when the cron
// expression cannot be parsed.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	spec := cfg.CronSpec
	if spec == "" {
		spec = "0 */6 * * *"
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	interval := cfg.PollInterval
	if interval == 0 {
		interval = 30 * time.Second
	}

	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 60 * time.Second
	}

	// Default to requiring the lock when one is provided
	lockRequired := cfg.LockRequired
	if cfg.Lock != nil && !cfg.LockRequired {
		lockRequired = true
	}

	return &Scheduler{
		taskQueue:    cfg.TaskQueue,
		lock:         cfg.Lock,
		logger:       logger,
		schedule:     schedule,
		interval:     interval,
		lockTTL:      lockTTL,
		lockRequired: lockRequired,
	}, nil
}

// Start begins the scheduler loop.
// It runs until Stop is called or context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.nextRun = s.schedule.Next(time.Now())
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("scheduler starting",
		"poll_interval", s.interval,
		"next_run", s.nextRun,
	)

	go s.run(ctx)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkAndEnqueue(ctx)
		}
	}
}

// checkAndEnqueue enqueues a sync_all task when the schedule is due.
// If a distributed lock is configured, it acquires the lock first to prevent
// duplicate enqueuing across multiple scheduler instances.
func (s *Scheduler) checkAndEnqueue(ctx context.Context) {
	now := time.Now()

	s.mu.RLock()
	due := !now.Before(s.nextRun)
	s.mu.RUnlock()

	if !due {
		return
	}

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, "scheduler", s.lockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire scheduler lock", "error", err)
			if s.lockRequired {
				return // Skip this cycle
			}
		} else if !acquired {
			s.logger.Debug("scheduler lock held by another instance, skipping cycle")
			s.advance(now)
			return
		} else {
			defer func() {
				if err := s.lock.Release(ctx, "scheduler"); err != nil {
					s.logger.Warn("failed to release scheduler lock", "error", err)
				}
			}()
		}
	}

	if err := s.EnqueueSyncAll(ctx); err != nil {
		s.logger.Error("failed to enqueue sync_all task", "error", err)
		return
	}

	s.advance(now)
}

// EnqueueSyncAll immediately enqueues a full-sync task, ignoring the schedule.
func (s *Scheduler) EnqueueSyncAll(ctx context.Context) error {
	task := domain.NewTask(domain.TaskTypeSyncAll, nil)

	if err := s.taskQueue.Enqueue(ctx, task); err != nil {
		return err
	}

	s.logger.Info("enqueued sync_all task", "task_id", task.ID)
	return nil
}

func (s *Scheduler) advance(from time.Time) {
	s.mu.Lock()
	s.nextRun = s.schedule.Next(from)
	s.mu.Unlock()

	s.logger.Debug("scheduler advanced", "next_run", s.nextRun)
}
