package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"activity-planner/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Insert stores a new task and fills in its ID.
func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) error {
	task.ID = 0
	normalizeTimes(task)
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an existing task.
// Completion is changed only through SetCompleted.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	normalizeTimes(task)
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"start_time":  task.StartTime,
		"deadline":    task.Deadline,
		"priority":    task.Priority,
		"category":    task.Category,
	})
	if res.Error != nil {
		return fmt.Errorf("update task %d: %w", task.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update task %d: %w", task.ID, ErrNotFound)
	}
	return nil
}

// UpdatePriority moves a task from old to next and touches nothing else.
// It reports false when the stored priority is no longer old or the task is
// gone, leaving the row as it is.
func (r *TaskRepository) UpdatePriority(ctx context.Context, id uint, old, next model.Priority) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND priority = ?", id, old).
		Update("priority", next)
	if res.Error != nil {
		return false, fmt.Errorf("update task %d priority: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete task %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteMany removes all listed tasks and reports how many rows went away.
func (r *TaskRepository) DeleteMany(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	default:
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
}

// GetAll lists every task ordered by deadline.
func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("deadline ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GetBetween lists tasks starting within [start, end], earliest start first.
func (r *TaskRepository) GetBetween(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time <= ?", start.UTC(), end.UTC()).
		Order("start_time ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks between: %w", err)
	}
	return tasks, nil
}

// GetOverlapping lists tasks whose [start, deadline] span intersects [from, to].
func (r *TaskRepository) GetOverlapping(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("start_time <= ? AND deadline >= ?", to.UTC(), from.UTC()).
		Order("start_time ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list overlapping tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) SetCompleted(ctx context.Context, id uint, completed bool) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Update("completed", completed)
	if res.Error != nil {
		return fmt.Errorf("set task %d completed: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set task %d completed: %w", id, ErrNotFound)
	}
	return nil
}

// normalizeTimes stores timestamps in UTC so that SQLite's text comparison
// orders them chronologically.
func normalizeTimes(task *model.Task) {
	task.StartTime = task.StartTime.UTC()
	task.Deadline = task.Deadline.UTC()
}
