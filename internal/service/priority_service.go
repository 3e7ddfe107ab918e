package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"activity-planner/internal/model"
	"activity-planner/internal/notify"
	"activity-planner/internal/priority"
	"activity-planner/internal/reminder"
	"activity-planner/internal/repository"
)

// PriorityService re-evaluates stored priorities against the clock.
type PriorityService struct {
	taskRepo  *repository.TaskRepository
	reminders Reminders
	presenter notify.Presenter
	now       func() time.Time
	logger    *slog.Logger
}

// NewPriorityService builds the batch updater. presenter may be nil, in
// which case changes are only logged.
func NewPriorityService(taskRepo *repository.TaskRepository, reminders Reminders, presenter notify.Presenter, logger *slog.Logger) *PriorityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriorityService{
		taskRepo:  taskRepo,
		reminders: reminders,
		presenter: presenter,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *PriorityService) WithClock(now func() time.Time) *PriorityService {
	s.now = now
	return s
}

// Candidates returns open tasks whose deadline is still ahead.
func (s *PriorityService) Candidates(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.taskRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	now := s.now()
	out := tasks[:0]
	for _, task := range tasks {
		if !task.Completed && task.Deadline.After(now) {
			out = append(out, task)
		}
	}
	return out, nil
}

// UpdatePriorities stores the recomputed priority of every task whose label
// moved and resynchronizes its reminders. Failed writes are skipped.
// It reports whether any task changed.
func (s *PriorityService) UpdatePriorities(ctx context.Context, tasks []model.Task) bool {
	changed := false
	for _, task := range tasks {
		if s.UpdateTask(ctx, task) {
			changed = true
		}
	}
	return changed
}

// UpdateTask is UpdatePriorities for a single task. Only the priority
// column is written, and only if it still holds the value task was read
// with; reminders are rebuilt from the row as stored afterwards.
func (s *PriorityService) UpdateTask(ctx context.Context, task model.Task) bool {
	next := priority.For(s.now(), task.Deadline)
	if next == task.Priority {
		return false
	}

	swapped, err := s.taskRepo.UpdatePriority(ctx, task.ID, task.Priority, next)
	if err != nil {
		s.logger.Error("persist priority",
			slog.Uint64("task_id", uint64(task.ID)),
			slog.String("error", err.Error()),
		)
		return false
	}
	if !swapped {
		s.logger.Debug("task changed since it was read, skipped", slog.Uint64("task_id", uint64(task.ID)))
		return false
	}

	s.logger.Info("priority changed",
		slog.Uint64("task_id", uint64(task.ID)),
		slog.String("title", task.Title),
		slog.String("from", string(task.Priority)),
		slog.String("to", string(next)),
	)

	stored, err := s.taskRepo.GetByID(ctx, task.ID)
	if err != nil {
		s.logger.Error("reload task after priority change",
			slog.Uint64("task_id", uint64(task.ID)),
			slog.String("error", err.Error()),
		)
		return true
	}
	s.reminders.Cancel(stored.ID)
	if !stored.Completed {
		s.reminders.Schedule(*stored)
	}

	if s.presenter != nil {
		s.presenter.Present(ctx, notify.Notification{
			ID:    reminder.Key{TaskID: stored.ID, Kind: reminder.KindPriorityCheck}.String(),
			Title: "Priority Updated",
			Body:  fmt.Sprintf("%s: %s → %s", stored.Title, task.Priority, next),
		})
	}
	return true
}

// RunPeriodicCheck evaluates every candidate task.
func (s *PriorityService) RunPeriodicCheck(ctx context.Context) (int, bool, error) {
	tasks, err := s.Candidates(ctx)
	if err != nil {
		return 0, false, err
	}
	if len(tasks) == 0 {
		s.logger.Debug("priority check: no tasks need updating")
		return 0, false, nil
	}
	changed := s.UpdatePriorities(ctx, tasks)
	s.logger.Info("priority check finished", slog.Int("checked", len(tasks)), slog.Bool("changed", changed))
	return len(tasks), changed, nil
}
