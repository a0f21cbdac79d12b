// Package adminview holds the organizer's results view: its authentication state, the
// latest fetched results and the periodic refresh.
package adminview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/client"
	"github.com/julefagdag/agenda/internal/common/clock"
	"github.com/julefagdag/agenda/internal/common/task"
	"github.com/julefagdag/agenda/internal/stats"
)

// RefreshInterval is the period of the results refresh while authenticated.
const RefreshInterval = 30 * time.Second

// State is the authentication state of the view.
type State string

const (
	Anonymous     State = "anonymous"
	Authenticated State = "authenticated"
)

// Source is the API surface the view reads from.
type Source interface {
	Authenticated(ctx context.Context) bool
	Login(ctx context.Context, password string) (time.Time, error)
	Logout(ctx context.Context) error
	FeedbackResults(ctx context.Context) ([]stats.SessionFeedbackResult, error)
	ListEventFeedback(ctx context.Context) (*client.EventFeedbackList, error)
}

// Snapshot is what the view currently shows.
type Snapshot struct {
	State         State
	Results       []stats.SessionFeedbackResult
	EventFeedback *client.EventFeedbackList
	RefreshedAt   time.Time
	// Err is the last refresh failure, cleared by the next successful refresh.
	Err error
}

// View is the organizer results view.
type View struct {
	source   Source
	clock    clock.Clock
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	snap    Snapshot
	refresh *task.Periodic
	nextSub int
	subs    map[int]func(Snapshot)
	runCtx  context.Context
}

// New creates a view. It starts authenticated when the source already holds a credential.
func New(ctx context.Context, source Source, c clock.Clock, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &View{
		source:   source,
		clock:    c,
		interval: RefreshInterval,
		logger:   logger,
		subs:     make(map[int]func(Snapshot)),
		snap:     Snapshot{State: Anonymous},
	}
	if source.Authenticated(ctx) {
		v.snap.State = Authenticated
	}
	return v
}

// WithInterval overrides the refresh period.
func (v *View) WithInterval(d time.Duration) *View {
	v.interval = d
	return v
}

// Snapshot returns a copy of the current view state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Subscribe registers fn for every state change. The returned func unsubscribes.
func (v *View) Subscribe(fn func(Snapshot)) func() {
	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Login checks the password and, on success, starts the refresh when Run is active.
func (v *View) Login(ctx context.Context, password string) error {
	if _, err := v.source.Login(ctx, password); err != nil {
		return err
	}
	v.update(func(s *Snapshot) { s.State = Authenticated; s.Err = nil })
	v.mu.Lock()
	runCtx := v.runCtx
	v.mu.Unlock()
	if runCtx != nil {
		v.startRefresh(runCtx)
	}
	return nil
}

// Logout clears the credential and the shown results, and stops the refresh.
func (v *View) Logout(ctx context.Context) {
	v.stopRefresh()
	if err := v.source.Logout(ctx); err != nil {
		v.logger.Warn("clear admin credential", zap.Error(err))
	}
	v.update(func(s *Snapshot) { *s = Snapshot{State: Anonymous} })
}

// Refresh fetches results once. A rejected credential logs the view out; any other
// failure is recorded on the snapshot and the previous results are kept.
func (v *View) Refresh(ctx context.Context, now time.Time) error {
	if v.Snapshot().State != Authenticated {
		return apperr.Unauthorized("not logged in")
	}
	results, err := v.source.FeedbackResults(ctx)
	var events *client.EventFeedbackList
	if err == nil {
		events, err = v.source.ListEventFeedback(ctx)
	}
	switch {
	case err == nil:
		v.update(func(s *Snapshot) {
			s.Results = results
			s.EventFeedback = events
			s.RefreshedAt = now
			s.Err = nil
		})
		return nil
	case apperr.IsAuth(err):
		v.logger.Info("admin credential rejected, logging out", zap.Error(err))
		if lerr := v.source.Logout(context.WithoutCancel(ctx)); lerr != nil {
			v.logger.Warn("clear admin credential", zap.Error(lerr))
		}
		v.update(func(s *Snapshot) { *s = Snapshot{State: Anonymous} })
		// Refresh may run on the refresh loop itself, so the loop is stopped without waiting.
		if p := v.takeRefresh(); p != nil {
			go p.Stop()
		}
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		v.logger.Warn("refresh results failed", zap.Error(err))
		v.update(func(s *Snapshot) { s.Err = fmt.Errorf("kunne ikke hente tilbakemeldinger: %w", err) })
		return err
	}
}

// Run keeps results fresh while authenticated until ctx is cancelled.
func (v *View) Run(ctx context.Context) {
	v.mu.Lock()
	v.runCtx = ctx
	v.mu.Unlock()
	if v.Snapshot().State == Authenticated {
		v.startRefresh(ctx)
	}
	<-ctx.Done()
	v.stopRefresh()
	v.mu.Lock()
	v.runCtx = nil
	v.mu.Unlock()
}

// Refreshing reports whether the periodic refresh is active.
func (v *View) Refreshing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refresh != nil && v.refresh.Running()
}

func (v *View) startRefresh(ctx context.Context) {
	v.mu.Lock()
	if v.refresh != nil {
		v.mu.Unlock()
		return
	}
	p := task.NewPeriodic("admin-refresh", v.clock, v.interval, func(ctx context.Context, now time.Time) {
		_ = v.Refresh(ctx, now)
	}, v.logger)
	v.refresh = p
	v.mu.Unlock()
	p.Start(ctx)
}

func (v *View) stopRefresh() {
	if p := v.takeRefresh(); p != nil {
		p.Stop()
	}
}

func (v *View) takeRefresh() *task.Periodic {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.refresh
	v.refresh = nil
	return p
}

func (v *View) update(fn func(*Snapshot)) {
	v.mu.Lock()
	fn(&v.snap)
	snap := v.snap
	subs := make([]func(Snapshot), 0, len(v.subs))
	for _, s := range v.subs {
		subs = append(subs, s)
	}
	v.mu.Unlock()
	for _, s := range subs {
		s(snap)
	}
}
