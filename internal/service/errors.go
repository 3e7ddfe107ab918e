package service

import (
	"errors"

	"activity-planner/internal/model"
)

var (
	// ErrInvalidInput marks a request the caller can fix.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned for a wrong email/password pair or an unknown session.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Reminders is the reminder bookkeeping the services drive.
type Reminders interface {
	Schedule(task model.Task)
	Cancel(taskID uint)
}
