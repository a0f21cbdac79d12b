// Package task runs a function on a fixed period until it is stopped.
package task

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/common/clock"
)

// Periodic runs fn once on start and then on every tick of its clock's ticker.
type Periodic struct {
	name     string
	clock    clock.Clock
	interval time.Duration
	fn       func(ctx context.Context, now time.Time)
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPeriodic creates a stopped task. A nil clock uses the system clock.
func NewPeriodic(name string, c clock.Clock, interval time.Duration, fn func(ctx context.Context, now time.Time), logger *zap.Logger) *Periodic {
	if c == nil {
		c = &clock.DefaultClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Periodic{name: name, clock: c, interval: interval, fn: fn, logger: logger}
}

// Start launches the loop bound to parent. Calling Start on a running task is a no-op.
func (p *Periodic) Start(parent context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.done = make(chan struct{})
	// The ticker is created before Start returns so a clock advanced right after Start
	// is observed by the loop.
	ticker := p.clock.NewTicker(p.interval)
	go p.run(ctx, ticker, p.done)
	p.logger.Debug("task started", zap.String("task", p.name), zap.Duration("interval", p.interval))
}

// Stop cancels the loop and waits for it to exit. Its ticker is released.
func (p *Periodic) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Debug("task stopped", zap.String("task", p.name))
}

// Running reports whether the loop is active.
func (p *Periodic) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Run blocks, running the loop until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) {
	done := make(chan struct{})
	p.run(ctx, p.clock.NewTicker(p.interval), done)
}

func (p *Periodic) run(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	p.fn(ctx, p.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			p.fn(ctx, now)
		}
	}
}
