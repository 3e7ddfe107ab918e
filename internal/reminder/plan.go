// Package reminder turns task deadlines into one-shot timers and handles
// them when they fire.
//
// Timers are derived from Task.Deadline every time a task is scheduled and
// are never persisted, so after a restart RescheduleAll must rebuild them.
package reminder

import (
	"fmt"
	"time"

	"activity-planner/internal/model"
)

// Kind distinguishes the two reminders kept per task.
type Kind string

const (
	KindDeadline      Kind = "deadline"
	KindPriorityCheck Kind = "priority-check"
)

const (
	DeadlineLead      = time.Hour
	PriorityCheckLead = 24 * time.Hour
)

// Key identifies a registered timer. Registering the same key twice
// replaces the earlier timer.
type Key struct {
	TaskID uint
	Kind   Kind
}

func (k Key) String() string {
	return fmt.Sprintf("task-%d/%s", k.TaskID, k.Kind)
}

// Payload is captured when the timer is scheduled and handed back on fire.
type Payload struct {
	TaskID   uint
	Title    string
	Deadline time.Time
}

// Reminder is one planned timer for a task.
type Reminder struct {
	Key     Key
	FireAt  time.Time
	Payload Payload
}

// Plan lists the reminders for task, deadline reminder first.
func Plan(task model.Task) []Reminder {
	payload := Payload{TaskID: task.ID, Title: task.Title, Deadline: task.Deadline}
	return []Reminder{
		{
			Key:     Key{TaskID: task.ID, Kind: KindDeadline},
			FireAt:  task.Deadline.Add(-DeadlineLead),
			Payload: payload,
		},
		{
			Key:     Key{TaskID: task.ID, Kind: KindPriorityCheck},
			FireAt:  task.Deadline.Add(-PriorityCheckLead),
			Payload: payload,
		},
	}
}

// Keys returns the keys Plan would produce for taskID.
func Keys(taskID uint) []Key {
	return []Key{
		{TaskID: taskID, Kind: KindDeadline},
		{TaskID: taskID, Kind: KindPriorityCheck},
	}
}
