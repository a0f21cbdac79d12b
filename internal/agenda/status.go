// Package agenda classifies sessions against a reference time and orders them for display.
package agenda

import (
	"math"
	"time"

	"github.com/julefagdag/agenda/internal/models"
)

// Status is the derived state of a session relative to a reference time.
type Status string

const (
	StatusCurrent   Status = "current"
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
)

// rank orders statuses for display: current, then upcoming, then completed.
func (s Status) rank() int {
	switch s {
	case StatusCurrent:
		return 0
	case StatusUpcoming:
		return 1
	default:
		return 2
	}
}

// Classify returns the status of session at now. Both ends of the running interval are
// inclusive. A session with StartTime after EndTime has no defined status.
func Classify(session models.Session, now time.Time) Status {
	switch {
	case now.Before(session.StartTime):
		return StatusUpcoming
	case now.After(session.EndTime):
		return StatusCompleted
	default:
		return StatusCurrent
	}
}

// MinutesUntilStart rounds the time until start up to whole minutes.
func MinutesUntilStart(session models.Session, now time.Time) int {
	return int(math.Ceil(session.StartTime.Sub(now).Minutes()))
}

// FloorMinutesUntilStart truncates the time until start down to whole minutes.
func FloorMinutesUntilStart(session models.Session, now time.Time) int {
	return int(math.Floor(session.StartTime.Sub(now).Minutes()))
}
