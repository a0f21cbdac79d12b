package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/agenda"
	"github.com/julefagdag/agenda/internal/favorites"
	"github.com/julefagdag/agenda/internal/models"
)

const (
	// LeadMinutes is how long before start a favorite session triggers its reminder.
	LeadMinutes = 10
	// TickInterval is how often the scheduler should be driven.
	TickInterval = 60 * time.Second
)

// State is the reminder lifecycle of one session.
type State string

const (
	StateNotYetDue State = "not_yet_due"
	StateNotified  State = "notified"
	StateExpired   State = "expired"
)

// Scheduler emits at most one reminder per favorite session, exactly when the whole
// minutes until start equal LeadMinutes. A tick that misses that minute skips the reminder.
type Scheduler struct {
	gate   *PermissionGate
	logger *zap.Logger
	lead   int

	mu       sync.Mutex
	notified map[string]struct{}
}

// NewScheduler returns a Scheduler delivering through gate.
func NewScheduler(gate *PermissionGate, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		gate:     gate,
		logger:   logger,
		lead:     LeadMinutes,
		notified: make(map[string]struct{}),
	}
}

// Tick evaluates every favorite session at now and returns the reminders it delivered.
// Sessions that have started are dropped from the notified set afterwards.
func (s *Scheduler) Tick(ctx context.Context, now time.Time, sessions []models.Session, favs favorites.Set) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sent []Notification
	if s.gate.Allowed(ctx) {
		for _, session := range sessions {
			id := session.ID.String()
			if !favs.Contains(id) {
				continue
			}
			if _, done := s.notified[id]; done {
				continue
			}
			if !session.StartTime.After(now) || agenda.FloorMinutesUntilStart(session, now) != s.lead {
				continue
			}
			n := Build(session, s.lead)
			if _, err := s.gate.Deliver(ctx, n); err != nil {
				s.logger.Warn("deliver notification", zap.String("session_id", id), zap.Error(err))
			}
			s.notified[id] = struct{}{}
			sent = append(sent, n)
		}
	}

	for _, session := range sessions {
		if session.StartTime.Before(now) {
			delete(s.notified, session.ID.String())
		}
	}
	return sent
}

// State reports the reminder state of session at now.
func (s *Scheduler) State(session models.Session, now time.Time) State {
	if session.StartTime.Before(now) {
		return StateExpired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notified[session.ID.String()]; ok {
		return StateNotified
	}
	return StateNotYetDue
}

// Notified returns the number of sessions currently in the notified set.
func (s *Scheduler) Notified() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notified)
}

// Build formats the reminder for session starting in minutes.
func Build(session models.Session, minutes int) Notification {
	return Notification{
		SessionID: session.ID.String(),
		Title:     session.DisplayTitle(),
		Room:      session.Room,
		Minutes:   minutes,
		Body:      fmt.Sprintf("%s • Starter om %d %s", session.Room, minutes, minuteWord(minutes)),
	}
}

func minuteWord(n int) string {
	if n == 1 {
		return "minutt"
	}
	return "minutter"
}
