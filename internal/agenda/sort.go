package agenda

import (
	"slices"
	"time"

	"github.com/julefagdag/agenda/internal/models"
)

// Grouped partitions sessions by status, each bucket in display order.
type Grouped struct {
	Current   []models.Session `json:"current"`
	Upcoming  []models.Session `json:"upcoming"`
	Completed []models.Session `json:"completed"`
}

// Len returns the number of sessions across all buckets.
func (g Grouped) Len() int {
	return len(g.Current) + len(g.Upcoming) + len(g.Completed)
}

// Sort returns a copy of sessions ordered current first, then upcoming, then completed,
// and by ascending start time within a status. Equal keys keep their input order.
func Sort(sessions []models.Session, now time.Time) []models.Session {
	out := slices.Clone(sessions)
	slices.SortStableFunc(out, func(a, b models.Session) int {
		if ra, rb := Classify(a, now).rank(), Classify(b, now).rank(); ra != rb {
			return ra - rb
		}
		return a.StartTime.Compare(b.StartTime)
	})
	return out
}

// Group buckets sessions by status in a single pass, preserving their order.
func Group(sessions []models.Session, now time.Time) Grouped {
	g := Grouped{
		Current:   []models.Session{},
		Upcoming:  []models.Session{},
		Completed: []models.Session{},
	}
	for _, s := range sessions {
		switch Classify(s, now) {
		case StatusCurrent:
			g.Current = append(g.Current, s)
		case StatusUpcoming:
			g.Upcoming = append(g.Upcoming, s)
		default:
			g.Completed = append(g.Completed, s)
		}
	}
	return g
}

// SortAndGroup sorts sessions for display and partitions them by status.
func SortAndGroup(sessions []models.Session, now time.Time) Grouped {
	return Group(Sort(sessions, now), now)
}
