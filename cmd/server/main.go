// Package main runs the agenda HTTP API server with the organizer live feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/julefagdag/agenda/config"
	"github.com/julefagdag/agenda/internal/auth"
	"github.com/julefagdag/agenda/internal/common/clock"
	"github.com/julefagdag/agenda/internal/eventfeedback"
	"github.com/julefagdag/agenda/internal/exports"
	"github.com/julefagdag/agenda/internal/feedback"
	"github.com/julefagdag/agenda/internal/realtime"
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

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Client, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	gate, err := auth.NewPasswordGate(cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		logger.Fatal("admin password", zap.Error(err))
	}
	jwtService := auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.ExpireHours)

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	sessionRepo := sessions.NewRepository(pool)
	sessionService := sessions.NewService(sessionRepo, sessions.NewCache(rdb, cfg.Server.SessionsCacheTTL, logger), logger)
	feedbackRepo := feedback.NewRepository(pool)
	eventFeedbackRepo := eventfeedback.NewRepository(pool)
	exportRepo := exports.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	h := handlers{
		sessions:      sessions.NewHandler(sessionService, &clock.DefaultClock{}, logger),
		feedback:      feedback.NewHandler(feedbackRepo, sessionService, hub, logger),
		eventFeedback: eventfeedback.NewHandler(eventFeedbackRepo, hub, logger),
		auth:          auth.NewHandler(gate, jwtService, cfg.Server.Production, logger),
		hub:           hub,
	}
	if s3Client != nil {
		h.exports = exports.NewHandler(exportRepo, jobQueue, s3Client, logger)
	}
	router := newRouter(h, jwtService, config.SplitTrim(cfg.Server.CORSAllowedOrigins, ","), logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (results export to S3) when no separate worker process runs.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if s3Client != nil && cfg.Server.EmbeddedWorker {
		results := func(ctx context.Context) ([]stats.SessionFeedbackResult, error) {
			return feedback.BuildResults(ctx, sessionService, feedbackRepo)
		}
		processor := worker.NewExportProcessor(exportRepo, results, eventFeedbackRepo, s3Client, jobQueue, nil, logger)
		go processor.Run(workerCtx)
		logger.Info("export worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
