// Package main runs the background job worker (results export to S3).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/julefagdag/agenda/config"
	"github.com/julefagdag/agenda/internal/eventfeedback"
	"github.com/julefagdag/agenda/internal/exports"
	"github.com/julefagdag/agenda/internal/feedback"
	"github.com/julefagdag/agenda/internal/sessions"
	"github.com/julefagdag/agenda/internal/stats"
	"github.com/julefagdag/agenda/internal/worker"
	"github.com/julefagdag/agenda/pkg/database"
	"github.com/julefagdag/agenda/pkg/queue"
	"github.com/julefagdag/agenda/pkg/redis"
	"github.com/julefagdag/agenda/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		ExportsBucket:        cfg.AWS.ExportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	// The worker reads sessions straight from Postgres; a nil cache skips Redis.
	sessionService := sessions.NewService(sessions.NewRepository(pool), nil, logger)
	feedbackRepo := feedback.NewRepository(pool)
	results := func(ctx context.Context) ([]stats.SessionFeedbackResult, error) {
		return feedback.BuildResults(ctx, sessionService, feedbackRepo)
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewExportProcessor(
		exports.NewRepository(pool),
		results,
		eventfeedback.NewRepository(pool),
		s3Client,
		jobQueue,
		nil,
		logger,
	)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
