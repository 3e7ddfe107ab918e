package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"activity-planner/internal/model"
	"activity-planner/internal/notify"
	"activity-planner/internal/repository"
)

// DigestService builds human-readable summaries of open tasks.
type DigestService struct {
	taskRepo  *repository.TaskRepository
	presenter notify.Presenter
}

func NewDigestService(taskRepo *repository.TaskRepository, presenter notify.Presenter) *DigestService {
	return &DigestService{taskRepo: taskRepo, presenter: presenter}
}

// Summary lists open tasks, nearest deadline first.
func (s *DigestService) Summary(ctx context.Context, now time.Time) (string, error) {
	tasks, err := s.taskRepo.GetAll(ctx)
	if err != nil {
		return "", err
	}

	var pending []model.Task
	for _, task := range tasks {
		if !task.Completed {
			pending = append(pending, task)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Deadline.Before(pending[j].Deadline)
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Jan 02, 2006")))
	if len(pending) == 0 {
		builder.WriteString("No open tasks.\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatTask(task, now))
		}
	}
	return strings.TrimSpace(builder.String()), nil
}

// Send presents the summary as a notification.
func (s *DigestService) Send(ctx context.Context, now time.Time) error {
	text, err := s.Summary(ctx, now)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	s.presenter.Present(ctx, notify.Notification{
		ID:    "digest/" + now.Format("2006-01-02"),
		Title: "Daily summary",
		Body:  text,
	})
	return nil
}

func formatTask(task model.Task, now time.Time) string {
	var sb strings.Builder

	d := task.Deadline.In(now.Location())
	icon := "🟢"
	switch {
	case now.After(d):
		icon = "⚠️"
	case d.Sub(now) <= 48*time.Hour:
		icon = "⏳"
	}

	sb.WriteString(fmt.Sprintf("%s [%s] %s", icon, task.Priority, strings.TrimSpace(task.Title)))
	if category := strings.TrimSpace(task.Category); category != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", category))
	}

	if now.After(d) {
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s, overdue", d.Format("2006-01-02 15:04")))
	} else {
		daysLeft := int(d.Sub(now).Hours()/24) + 1
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s, ≈%d days left", d.Format("2006-01-02 15:04"), daysLeft))
	}

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", strings.TrimSpace(task.Description)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
