// Package watch drives the attendee's live agenda: once a minute it reclassifies the
// sessions, runs the reminder scheduler and recomputes the upcoming banner.
package watch

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/agenda"
	"github.com/julefagdag/agenda/internal/common/clock"
	"github.com/julefagdag/agenda/internal/common/task"
	"github.com/julefagdag/agenda/internal/favorites"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/notify"
)

// Favorites is the favorites view the loop reads from.
type Favorites interface {
	GetAll() favorites.Set
	Subscribe(fn func(favorites.Set)) func()
}

// Frame is one rendering of the agenda.
type Frame struct {
	At            time.Time
	Agenda        agenda.Grouped
	Favorites     favorites.Set
	Banner        *notify.Banner
	Notifications []notify.Notification
}

// Loop is the attendee's local tick.
type Loop struct {
	favs      Favorites
	scheduler *notify.Scheduler
	clock     clock.Clock
	interval  time.Duration
	logger    *zap.Logger

	mu            sync.Mutex
	sessions      []models.Session
	favoritesOnly bool
	onFrame       func(Frame)

	// frameMu serializes frames from the tick loop and favorites notifications.
	frameMu sync.Mutex
}

// NewLoop creates a loop over sessions. A nil scheduler disables reminders.
func NewLoop(sessions []models.Session, favs Favorites, scheduler *notify.Scheduler, c clock.Clock, logger *zap.Logger) *Loop {
	if c == nil {
		c = &clock.DefaultClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		favs:      favs,
		scheduler: scheduler,
		clock:     c,
		interval:  notify.TickInterval,
		logger:    logger,
		sessions:  slices.Clone(sessions),
		onFrame:   func(Frame) {},
	}
}

// WithInterval overrides the tick period.
func (l *Loop) WithInterval(d time.Duration) *Loop {
	l.interval = d
	return l
}

// FavoritesOnly restricts the rendered agenda to favorite sessions. Reminders always
// consider every favorite.
func (l *Loop) FavoritesOnly(only bool) *Loop {
	l.mu.Lock()
	l.favoritesOnly = only
	l.mu.Unlock()
	return l
}

// OnFrame sets the callback receiving every frame.
func (l *Loop) OnFrame(fn func(Frame)) *Loop {
	l.mu.Lock()
	l.onFrame = fn
	l.mu.Unlock()
	return l
}

// SetSessions replaces the session list used from the next frame on.
func (l *Loop) SetSessions(sessions []models.Session) {
	l.mu.Lock()
	l.sessions = slices.Clone(sessions)
	l.mu.Unlock()
}

// Tick runs the scheduler and renders one frame at now.
func (l *Loop) Tick(ctx context.Context, now time.Time) Frame {
	return l.frame(ctx, now, true)
}

// Run ticks until ctx is cancelled. A favorites change renders a frame immediately
// without running the scheduler.
func (l *Loop) Run(ctx context.Context) {
	unsub := l.favs.Subscribe(func(favorites.Set) {
		if ctx.Err() == nil {
			l.frame(ctx, l.clock.Now(), false)
		}
	})
	defer unsub()
	task.NewPeriodic("agenda-tick", l.clock, l.interval, func(ctx context.Context, now time.Time) {
		l.Tick(ctx, now)
	}, l.logger).Run(ctx)
}

func (l *Loop) frame(ctx context.Context, now time.Time, tick bool) Frame {
	l.frameMu.Lock()
	defer l.frameMu.Unlock()

	l.mu.Lock()
	sessions := l.sessions
	only := l.favoritesOnly
	emit := l.onFrame
	l.mu.Unlock()

	favs := l.favs.GetAll()
	f := Frame{At: now, Favorites: favs}
	if tick && l.scheduler != nil {
		f.Notifications = l.scheduler.Tick(ctx, now, sessions, favs)
		for _, n := range f.Notifications {
			l.logger.Info("reminder sent", zap.String("session_id", n.SessionID), zap.Int("minutes", n.Minutes))
		}
	}
	shown := sessions
	if only {
		shown = FilterFavorites(sessions, favs)
	}
	f.Agenda = agenda.SortAndGroup(shown, now)
	f.Banner = notify.UpcomingBanner(now, sessions, favs)
	emit(f)
	return f
}

// FilterFavorites keeps the sessions whose id is in favs, in input order.
func FilterFavorites(sessions []models.Session, favs favorites.Set) []models.Session {
	out := make([]models.Session, 0, len(favs))
	for _, s := range sessions {
		if favs.Contains(s.ID.String()) {
			out = append(out, s)
		}
	}
	return out
}
