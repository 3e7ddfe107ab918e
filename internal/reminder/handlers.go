package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"activity-planner/internal/model"
	"activity-planner/internal/notify"
	"activity-planner/internal/priority"
	"activity-planner/internal/repository"
)

// DeadlineLayout formats deadlines in alerts.
const DeadlineLayout = "Jan 02, 2006 15:04"

// TaskStore is what the handlers read and write.
type TaskStore interface {
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	UpdatePriority(ctx context.Context, id uint, old, next model.Priority) (bool, error)
}

// Handlers react to fired reminders.
type Handlers struct {
	store     TaskStore
	presenter notify.Presenter
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

func NewHandlers(store TaskStore, presenter notify.Presenter, loc *time.Location, logger *slog.Logger) *Handlers {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: store, presenter: presenter, loc: loc, now: time.Now, logger: logger}
}

// WithClock replaces the wall clock, for tests.
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	h.now = now
	return h
}

// Fire dispatches a fired timer to the handler for its kind.
func (h *Handlers) Fire(ctx context.Context, key Key, payload Payload) {
	if payload.TaskID == 0 || payload.TaskID != key.TaskID {
		h.logger.Warn("malformed reminder payload", slog.String("key", key.String()))
		return
	}
	switch key.Kind {
	case KindDeadline:
		h.Deadline(ctx, payload)
	case KindPriorityCheck:
		h.PriorityCheck(ctx, payload)
	default:
		h.logger.Warn("unknown reminder kind", slog.String("key", key.String()))
	}
}

// Deadline tells the user that a task is about to fall due.
func (h *Handlers) Deadline(ctx context.Context, payload Payload) {
	if _, ok := h.lookup(ctx, payload.TaskID); !ok {
		return
	}
	due := payload.Deadline.In(h.loc).Format(DeadlineLayout)
	h.presenter.Present(ctx, notify.Notification{
		ID:    Key{TaskID: payload.TaskID, Kind: KindDeadline}.String(),
		Title: "⏰ Deadline Approaching!",
		Body:  fmt.Sprintf("Task '%s' is approaching its deadline at %s.\nComplete it soon!", payload.Title, due),
	})
}

// PriorityCheck recomputes the stored task's priority and announces a change.
// It never schedules further timers.
func (h *Handlers) PriorityCheck(ctx context.Context, payload Payload) {
	task, ok := h.lookup(ctx, payload.TaskID)
	if !ok || task.Completed {
		return
	}

	now := h.now()
	next := priority.For(now, task.Deadline)
	if next == task.Priority {
		return
	}

	old := task.Priority
	swapped, err := h.store.UpdatePriority(ctx, task.ID, old, next)
	if err != nil {
		h.logger.Error("persist rechecked priority",
			slog.Uint64("task_id", uint64(task.ID)),
			slog.String("error", err.Error()),
		)
		return
	}
	if !swapped {
		h.logger.Debug("task changed during recheck", slog.Uint64("task_id", uint64(task.ID)))
		return
	}

	days := priority.DaysRemaining(now, task.Deadline)
	h.logger.Info("priority rechecked",
		slog.Uint64("task_id", uint64(task.ID)),
		slog.String("from", string(old)),
		slog.String("to", string(next)),
	)
	h.presenter.Present(ctx, notify.Notification{
		ID:    Key{TaskID: task.ID, Kind: KindPriorityCheck}.String(),
		Title: "📊 Priority Updated",
		Body: fmt.Sprintf("Task '%s' priority has been updated from %s to %s.\nDays remaining: %d",
			task.Title, old, next, days),
	})
}

func (h *Handlers) lookup(ctx context.Context, id uint) (*model.Task, bool) {
	task, err := h.store.GetByID(ctx, id)
	switch {
	case err == nil:
		return task, true
	case errors.Is(err, repository.ErrNotFound):
		h.logger.Debug("reminder for missing task", slog.Uint64("task_id", uint64(id)))
	default:
		h.logger.Error("load task for reminder",
			slog.Uint64("task_id", uint64(id)),
			slog.String("error", err.Error()),
		)
	}
	return nil, false
}
