package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"activity-planner/internal/model"
	"activity-planner/internal/repository"
)

// TaskInput represents data required to create or edit a task.
type TaskInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	StartTime   time.Time
	Deadline    time.Time
}

// TaskService wraps task-related business logic and keeps reminders in
// step with every write.
type TaskService struct {
	taskRepo  *repository.TaskRepository
	reminders Reminders
	loc       *time.Location
}

func NewTaskService(taskRepo *repository.TaskRepository, reminders Reminders, loc *time.Location) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{taskRepo: taskRepo, reminders: reminders, loc: loc}
}

// Location is the zone calendar days are computed in.
func (s *TaskService) Location() *time.Location {
	return s.loc
}

// CreateTask validates input, stores the task and schedules its reminders.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	task, err := buildTask(input)
	if err != nil {
		return nil, err
	}
	if input.StartTime.IsZero() || input.Deadline.IsZero() {
		return nil, fmt.Errorf("%w: start and deadline are required", ErrInvalidInput)
	}
	if !task.Deadline.After(task.StartTime) {
		return nil, fmt.Errorf("%w: deadline must be after start", ErrInvalidInput)
	}

	if err := s.taskRepo.Insert(ctx, task); err != nil {
		return nil, err
	}
	s.reminders.Schedule(*task)
	return task, nil
}

// UpdateTask replaces the editable fields of a task and reschedules its
// reminders against the new deadline. Zero times and an empty priority keep
// the stored values.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, input TaskInput) (*model.Task, error) {
	existing, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task, err := buildTask(input)
	if err != nil {
		return nil, err
	}
	task.ID = id
	task.Completed = existing.Completed
	if strings.TrimSpace(input.Priority) == "" {
		task.Priority = existing.Priority
	}
	if input.StartTime.IsZero() {
		task.StartTime = existing.StartTime
	}
	if input.Deadline.IsZero() {
		task.Deadline = existing.Deadline
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.reminders.Cancel(id)
	if !task.Completed {
		s.reminders.Schedule(*task)
	}
	return s.taskRepo.GetByID(ctx, id)
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	return s.taskRepo.GetByID(ctx, id)
}

// ListTasks returns every task ordered by deadline.
func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.GetAll(ctx)
}

// DeleteTask removes a task and cancels its reminders.
func (s *TaskService) DeleteTask(ctx context.Context, id uint) error {
	s.reminders.Cancel(id)
	return s.taskRepo.Delete(ctx, id)
}

// DeleteTasks removes several tasks at once.
func (s *TaskService) DeleteTasks(ctx context.Context, ids []uint) (int64, error) {
	for _, id := range ids {
		s.reminders.Cancel(id)
	}
	return s.taskRepo.DeleteMany(ctx, ids)
}

// SetCompleted toggles completion. Completing a task silences its
// reminders; reopening it arms them again.
func (s *TaskService) SetCompleted(ctx context.Context, id uint, completed bool) (*model.Task, error) {
	if err := s.taskRepo.SetCompleted(ctx, id, completed); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if completed {
		s.reminders.Cancel(id)
	} else {
		s.reminders.Schedule(*task)
	}
	return task, nil
}

// TasksBetween lists tasks starting within [start, end], earliest first.
func (s *TaskService) TasksBetween(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end before start", ErrInvalidInput)
	}
	return s.taskRepo.GetBetween(ctx, start, end)
}

// TasksOnDate lists tasks that are active on the calendar day containing
// day: the day lies between the start's day and the deadline's day.
func (s *TaskService) TasksOnDate(ctx context.Context, day time.Time) ([]model.Task, error) {
	from := startOfDay(day.In(s.loc))
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)

	candidates, err := s.taskRepo.GetOverlapping(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := candidates[:0]
	for _, task := range candidates {
		if onDate(task, from, s.loc) {
			out = append(out, task)
		}
	}
	return out, nil
}

func onDate(task model.Task, dayStart time.Time, loc *time.Location) bool {
	first := startOfDay(task.StartTime.In(loc))
	last := startOfDay(task.Deadline.In(loc)).AddDate(0, 0, 1)
	return !dayStart.Before(first) && dayStart.Before(last)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func buildTask(input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	prio, err := model.ParsePriority(input.Priority)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &model.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Priority:    prio,
		StartTime:   input.StartTime,
		Deadline:    input.Deadline,
	}, nil
}
