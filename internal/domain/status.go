package domain

import (
	"strings"
	"time"
)

// Status represents the temporal state of a task. It is derived from
// (completed, deadline, now) and never set directly by a caller.
type Status string

const (
	StatusUpcoming  Status = "upcoming"  // Not completed, deadline absent or in the future
	StatusCompleted Status = "completed" // Completed flag set
	StatusMissed    Status = "missed"    // Not completed, deadline in the past
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{StatusUpcoming, StatusCompleted, StatusMissed}
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusMissed:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes and validates a status label.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// DeriveStatus computes a task's status from its completion flag and
// deadline at the given instant. Completion overrides the deadline
// comparison; a deadline strictly before now means the task is missed.
func DeriveStatus(completed bool, deadline *time.Time, now time.Time) Status {
	switch {
	case completed:
		return StatusCompleted
	case deadline != nil && deadline.Before(now):
		return StatusMissed
	default:
		return StatusUpcoming
	}
}
