// Package scheduler runs registered tasks on independent fixed-interval
// timers. It owns no business logic: invocations are fire-and-forget, and
// overlap protection is the responsibility of the task itself (the
// interaction cycle carries its own run-lock).
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task pairs a function value with a fixed-interval recurrence descriptor.
type Task struct {
	Name     string
	Interval time.Duration
	// Immediate additionally fires the task once at startup instead of
	// waiting a full interval for the first tick.
	Immediate bool
	Run       func(ctx context.Context)
}

// Scheduler triggers registered tasks until its context is cancelled.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	tasks   []Task
	started bool
}

// New creates an empty scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger.Named("scheduler")}
}

// Register adds a task. Registration is rejected after Start.
func (s *Scheduler) Register(t Task) error {
	if t.Name == "" {
		return fmt.Errorf("task name must not be empty")
	}
	if t.Interval <= 0 {
		return fmt.Errorf("task %q: interval must be a positive duration", t.Name)
	}
	if t.Run == nil {
		return fmt.Errorf("task %q: run function must not be nil", t.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("task %q: scheduler already started", t.Name)
	}
	s.tasks = append(s.tasks, t)
	return nil
}

// Start runs every registered task on its own ticker and blocks until the
// context is cancelled, then waits for in-flight invocations to return.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	tasks := s.tasks
	s.mu.Unlock()

	if len(tasks) == 0 {
		return fmt.Errorf("no tasks registered")
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			s.runTask(ctx, t)
		}(task)
	}

	<-ctx.Done()
	wg.Wait()
	s.logger.Info("Scheduler stopped.")
	return ctx.Err()
}

func (s *Scheduler) runTask(ctx context.Context, t Task) {
	logger := s.logger.With(zap.String("task", t.Name), zap.Duration("interval", t.Interval))
	logger.Info("Task registered.")

	if t.Immediate {
		s.invoke(ctx, t, logger)
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.invoke(ctx, t, logger)
		}
	}
}

// invoke runs one trigger, shielding the ticker loop from panics so a single
// bad invocation cannot silence all future ones.
func (s *Scheduler) invoke(ctx context.Context, t Task, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task panicked.", zap.Any("panic_value", r), zap.Stack("stack"))
		}
	}()

	start := time.Now()
	t.Run(ctx)
	logger.Debug("Task trigger complete.", zap.Duration("duration", time.Since(start)))
}
