package clientstate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/common/clock"
	"github.com/julefagdag/agenda/internal/common/task"
)

// PollOrigin marks changes the PollingBus found in storage rather than received from a
// view in this process.
const PollOrigin = "storage-poll"

// PollingBus delivers changes to every view sharing a storage file, including views in
// other processes. Local publishes fan out immediately; writes made elsewhere are found
// by re-reading the watched keys on every tick.
type PollingBus struct {
	storage Storage
	keys    []string
	local   *LocalBus
	logger  *zap.Logger
	poller  *task.Periodic

	mu   sync.Mutex
	last map[string]string
}

// NewPollingBus watches keys in storage every interval. A nil clock uses the system clock.
func NewPollingBus(storage Storage, keys []string, c clock.Clock, interval time.Duration, logger *zap.Logger) *PollingBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &PollingBus{
		storage: storage,
		keys:    keys,
		local:   NewLocalBus(),
		logger:  logger,
		last:    make(map[string]string, len(keys)),
	}
	b.poller = task.NewPeriodic("state-poll", c, interval, b.poll, logger)
	return b
}

// Start records the current values as seen and begins polling.
func (b *PollingBus) Start(ctx context.Context) error {
	for _, key := range b.keys {
		v, _, err := b.storage.Get(ctx, key)
		if err != nil {
			return err
		}
		b.mu.Lock()
		b.last[key] = v
		b.mu.Unlock()
	}
	b.poller.Start(ctx)
	return nil
}

// Stop ends polling. Local delivery keeps working.
func (b *PollingBus) Stop() {
	b.poller.Stop()
}

func (b *PollingBus) Publish(ctx context.Context, change Change) error {
	b.mu.Lock()
	b.last[change.Key] = change.Value
	b.mu.Unlock()
	return b.local.Publish(ctx, change)
}

func (b *PollingBus) Subscribe(handler func(Change)) (func(), error) {
	return b.local.Subscribe(handler)
}

func (b *PollingBus) poll(ctx context.Context, _ time.Time) {
	for _, key := range b.keys {
		v, _, err := b.storage.Get(ctx, key)
		if err != nil {
			if ctx.Err() == nil {
				b.logger.Warn("poll state failed", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		b.mu.Lock()
		prev, seen := b.last[key]
		b.last[key] = v
		b.mu.Unlock()
		if seen && prev == v {
			continue
		}
		if err := b.local.Publish(ctx, Change{Key: key, Value: v, Origin: PollOrigin}); err != nil {
			b.logger.Warn("deliver polled change failed", zap.String("key", key), zap.Error(err))
		}
	}
}
