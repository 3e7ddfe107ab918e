// Package priority derives a task's urgency label from how much time is
// left before its deadline.
//
// The rule is the only place day thresholds live; the batch updater and
// the scheduled recheck both call For.
package priority

import (
	"time"

	"activity-planner/internal/model"
)

const (
	day = 24 * time.Hour

	highWithinDays   = 2
	mediumWithinDays = 5
)

// For returns High once the deadline has passed. Otherwise whole days
// remaining decide: up to 2 is High, up to 5 Medium, anything further Low.
func For(now, deadline time.Time) model.Priority {
	if !deadline.After(now) {
		return model.PriorityHigh
	}
	switch days := DaysRemaining(now, deadline); {
	case days <= highWithinDays:
		return model.PriorityHigh
	case days <= mediumWithinDays:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// DaysRemaining is the number of whole days between now and deadline,
// truncated toward zero.
func DaysRemaining(now, deadline time.Time) int {
	return int(deadline.Sub(now) / day)
}
