// Package main loads the agenda into PostgreSQL and maintains it: replace all sessions from
// a YAML file, move the event to another day, or add a completed test session.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/julefagdag/agenda/config"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/sessions"
	"github.com/julefagdag/agenda/pkg/database"
	"github.com/julefagdag/agenda/pkg/redis"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Maintain the agenda sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLoadCmd(), newShiftDateCmd(), newTestSessionCmd())
	return root
}

// env is the database wiring shared by the seed commands.
type env struct {
	logger  *zap.Logger
	repo    *sessions.Repository
	service *sessions.Service
	loc     *time.Location
	close   func()
}

func connect(ctx context.Context) (*env, error) {
	logger := newLogger()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Client.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Client.Timezone, err)
	}
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	closers := []func(){pool.Close}

	// Without Redis the API serves stale sessions until the cache TTL runs out.
	var cache *sessions.Cache
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis unavailable, sessions cache not invalidated", zap.Error(err))
	} else {
		cache = sessions.NewCache(rdb, cfg.Server.SessionsCacheTTL, logger)
		closers = append(closers, func() { _ = rdb.Close() })
	}

	repo := sessions.NewRepository(pool)
	return &env{
		logger:  logger,
		repo:    repo,
		service: sessions.NewService(repo, cache, logger),
		loc:     loc,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			_ = logger.Sync()
		},
	}, nil
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [agenda.yaml]",
		Short: "Replace every session with the agenda file (default seed/agenda.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "seed/agenda.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			list, err := sessions.ParseSeed(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.repo.ReplaceAll(ctx, list); err != nil {
				return err
			}
			e.service.Invalidate(ctx)
			e.logger.Info("agenda loaded", zap.String("file", path), zap.Int("sessions", len(list)))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Lastet %d sesjoner fra %s\n", len(list), path)
			return nil
		},
	}
}

func newShiftDateCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "shift-date --from YYYY-MM-DD --to YYYY-MM-DD",
		Short: "Move every session on one day to another day, keeping the clock times",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			fromDay, err := time.ParseInLocation(time.DateOnly, from, e.loc)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			toDay, err := time.ParseInLocation(time.DateOnly, to, e.loc)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			list, err := e.repo.List(ctx)
			if err != nil {
				return err
			}
			moved := sessions.ShiftDate(list, fromDay, toDay, e.loc)
			if err := e.repo.UpdateTimes(ctx, moved); err != nil {
				return err
			}
			e.service.Invalidate(ctx)
			for _, s := range moved {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Oppdatert %s: %s\n", s.DisplayTitle(), s.StartTime.In(e.loc).Format(time.RFC3339))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Ferdig med oppdatering av datoer (%d sesjoner)\n", len(moved))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "day to move from")
	cmd.Flags().StringVar(&to, "to", "", "day to move to")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newTestSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-session",
		Short: "Add a session that ended an hour ago, for trying out feedback",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			s := testSession(time.Now())
			if err := e.repo.Create(ctx, &s); err != nil {
				return err
			}
			e.service.Invalidate(ctx)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Test-sesjon opprettet: %s\n", s.ID)
			return nil
		},
	}
}

// testSession ran from two hours to one hour before now.
func testSession(now time.Time) models.Session {
	speaker := "Test Speaker"
	description := "Dette er et test-foredrag for å teste tilbakemeldingsfunksjonaliteten."
	return models.Session{
		Title:       "Test Foredrag - Tilbakemelding",
		Speaker:     &speaker,
		Room:        "Test Rom",
		StartTime:   now.Add(-2 * time.Hour),
		EndTime:     now.Add(-time.Hour),
		Description: &description,
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
