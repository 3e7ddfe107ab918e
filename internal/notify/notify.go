// Package notify delivers user-facing alerts. Delivery is fire-and-forget:
// presenters log failures and never report them to the caller.
package notify

import (
	"context"
	"log/slog"
)

// Notification is a single alert. ID identifies the alert slot so that a
// newer alert with the same ID may replace an older one.
type Notification struct {
	ID    string
	Title string
	Body  string
}

// Presenter shows a notification to the user.
type Presenter interface {
	Present(ctx context.Context, n Notification)
}

// LogPresenter writes notifications to a structured logger.
type LogPresenter struct {
	logger *slog.Logger
}

func NewLogPresenter(logger *slog.Logger) *LogPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPresenter{logger: logger}
}

func (p *LogPresenter) Present(ctx context.Context, n Notification) {
	p.logger.InfoContext(ctx, "notification",
		slog.String("id", n.ID),
		slog.String("title", n.Title),
		slog.String("body", n.Body),
	)
}

// Multi fans a notification out to every presenter in order.
type Multi []Presenter

func (m Multi) Present(ctx context.Context, n Notification) {
	for _, p := range m {
		if p != nil {
			p.Present(ctx, n)
		}
	}
}
