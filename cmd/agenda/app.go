package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/julefagdag/agenda/config"
	"github.com/julefagdag/agenda/internal/client"
	"github.com/julefagdag/agenda/internal/clientstate"
	"github.com/julefagdag/agenda/internal/favorites"
	"github.com/julefagdag/agenda/internal/receipts"
	"github.com/julefagdag/agenda/pkg/redis"
)

// app is the client-side wiring shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	loc      *time.Location
	storage  clientstate.Storage
	bus      clientstate.Bus
	api      *client.Client
	receipts *receipts.Receipts
	closers  []func() error
}

func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(opts.verbose)
	loc, err := time.LoadLocation(cfg.Client.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Client.Timezone, err)
	}
	a := &app{cfg: cfg, logger: logger, loc: loc}

	switch cfg.Client.StateBackend {
	case "redis":
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		storage, err := clientstate.NewRedisStorage(rdb.Client, cfg.Client.ClientID)
		if err != nil {
			a.close()
			return nil, err
		}
		a.storage = storage
		a.bus = clientstate.NewRedisBus(rdb.Client, cfg.Client.ClientID, logger)
	case "sqlite", "":
		if err := os.MkdirAll(filepath.Dir(cfg.Client.StatePath), 0o755); err != nil {
			return nil, fmt.Errorf("state dir: %w", err)
		}
		storage, err := clientstate.NewSQLiteStorage(ctx, cfg.Client.StatePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, storage.Close)
		a.storage = storage
		bus := clientstate.NewPollingBus(storage, []string{clientstate.KeyFavorites}, nil, cfg.Client.PollInterval, logger)
		if err := bus.Start(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("watch state: %w", err)
		}
		a.closers = append(a.closers, func() error { bus.Stop(); return nil })
		a.bus = bus
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Client.StateBackend)
	}

	baseURL := cfg.Client.BaseURL
	if opts.baseURL != "" {
		baseURL = opts.baseURL
	}
	a.api = client.New(baseURL, a.storage, logger)
	a.receipts = receipts.New(a.storage, logger)
	return a, nil
}

func (a *app) favorites(ctx context.Context) (*favorites.Store, error) {
	store, err := favorites.NewStore(ctx, a.storage, a.bus, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { store.Close(); return nil })
	return store, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Debug("close", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
