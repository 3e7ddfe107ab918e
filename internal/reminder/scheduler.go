package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"activity-planner/internal/model"
)

// TaskLister loads every stored task.
type TaskLister interface {
	GetAll(ctx context.Context) ([]model.Task, error)
}

// Scheduler keeps the timer facility in sync with task deadlines.
type Scheduler struct {
	tasks  TaskLister
	timers Timers
	now    func() time.Time
	logger *slog.Logger
}

func NewScheduler(tasks TaskLister, timers Timers, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{tasks: tasks, timers: timers, now: time.Now, logger: logger}
}

// WithClock replaces the wall clock, for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Schedule arms the deadline reminder and the priority check for task.
// Reminders whose fire time has already passed are dropped.
func (s *Scheduler) Schedule(task model.Task) {
	now := s.now()
	for _, r := range Plan(task) {
		if !r.FireAt.After(now) {
			s.logger.Debug("reminder in the past, skipped",
				slog.String("key", r.Key.String()),
				slog.Time("fire_at", r.FireAt),
			)
			continue
		}
		s.timers.Register(r.Key, r.FireAt, r.Payload)
		s.logger.Debug("reminder scheduled",
			slog.String("key", r.Key.String()),
			slog.String("title", task.Title),
			slog.Time("fire_at", r.FireAt),
		)
	}
}

// Cancel disarms both reminders for taskID.
func (s *Scheduler) Cancel(taskID uint) {
	for _, key := range Keys(taskID) {
		s.timers.Cancel(key)
	}
	s.logger.Debug("reminders cancelled", slog.Uint64("task_id", uint64(taskID)))
}

// RescheduleAll rebuilds timers for every open task, typically after a
// restart. Existing registrations are replaced key by key.
func (s *Scheduler) RescheduleAll(ctx context.Context) (int, error) {
	tasks, err := s.tasks.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("reschedule reminders: %w", err)
	}
	scheduled := 0
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		s.Schedule(task)
		scheduled++
	}
	s.logger.Info("reminders rebuilt", slog.Int("tasks", scheduled))
	return scheduled, nil
}
