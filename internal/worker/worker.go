package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/common/clock"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/stats"
	"github.com/julefagdag/agenda/pkg/queue"
	"github.com/julefagdag/agenda/pkg/storage"
)

// ExportStore is the export bookkeeping the processor updates.
type ExportStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Export, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, key string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// ResultsSource builds the per-session feedback results.
type ResultsSource func(ctx context.Context) ([]stats.SessionFeedbackResult, error)

// EventFeedbackSource lists event feedback newest first.
type EventFeedbackSource interface {
	ListNewestFirst(ctx context.Context) ([]models.EventFeedback, error)
}

// Uploader writes export objects.
type Uploader interface {
	UploadExport(ctx context.Context, key string, body io.Reader) error
}

// JobQueue is the job source the loop drains.
type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Document is the JSON object uploaded for one export.
type Document struct {
	ExportID      uuid.UUID                     `json:"export_id"`
	GeneratedAt   time.Time                     `json:"generated_at"`
	Sessions      []stats.SessionFeedbackResult `json:"sessions"`
	EventFeedback []models.EventFeedback        `json:"event_feedback"`
	EventRatings  stats.RatingSummary           `json:"event_ratings"`
}

// ExportProcessor processes results export jobs: build the results, upload them to S3,
// record the object key.
type ExportProcessor struct {
	exports ExportStore
	results ResultsSource
	events  EventFeedbackSource
	s3      Uploader
	queue   JobQueue
	clock   clock.Clock
	logger  *zap.Logger

	// PollTimeout bounds each blocking dequeue; Backoff is the pause after a failure.
	PollTimeout time.Duration
	Backoff     time.Duration
}

// NewExportProcessor creates a results export processor.
func NewExportProcessor(exports ExportStore, results ResultsSource, events EventFeedbackSource, s3 Uploader, q JobQueue, c clock.Clock, logger *zap.Logger) *ExportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = &clock.DefaultClock{}
	}
	return &ExportProcessor{
		exports:     exports,
		results:     results,
		events:      events,
		s3:          s3,
		queue:       q,
		clock:       c,
		logger:      logger,
		PollTimeout: 5 * time.Second,
		Backoff:     queue.RetryBackoff,
	}
}

// Process executes one export job.
func (p *ExportProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := queue.DecodeExport(job)
	if err != nil {
		return err
	}
	exp, err := p.exports.GetByID(ctx, payload.ExportID)
	if err != nil {
		return fmt.Errorf("load export %s: %w", payload.ExportID, err)
	}
	if exp.Status != models.ExportPending {
		p.logger.Info("export already finished", zap.String("export_id", exp.ID.String()), zap.String("status", string(exp.Status)))
		return nil
	}

	results, err := p.results(ctx)
	if err != nil {
		return fmt.Errorf("build results: %w", err)
	}
	events, err := p.events.ListNewestFirst(ctx)
	if err != nil {
		return fmt.Errorf("list event feedback: %w", err)
	}
	doc := Document{
		ExportID:      exp.ID,
		GeneratedAt:   p.clock.Now().UTC(),
		Sessions:      results,
		EventFeedback: events,
		EventRatings:  stats.AggregateRatings(events),
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	key := storage.ExportKey(exp.ID.String(), exp.CreatedAt)
	if err := p.s3.UploadExport(ctx, key, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}
	if err := p.exports.MarkCompleted(ctx, exp.ID, key); err != nil {
		return fmt.Errorf("update db: %w", err)
	}
	p.logger.Info("export completed", zap.String("export_id", exp.ID.String()), zap.String("s3_key", key), zap.Int("sessions", len(results)))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. It returns when ctx is done.
func (p *ExportProcessor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			p.logger.Info("export worker stopping")
			return
		}

		job, err := p.queue.Dequeue(ctx, p.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			p.retry(ctx, job, err)
			p.sleep(ctx)
		}
	}
}

// retry re-enqueues job, or marks its export failed once the final attempt is used up.
func (p *ExportProcessor) retry(ctx context.Context, job *queue.Job, cause error) {
	if job.Attempt+1 >= queue.MaxRetries {
		if payload, err := queue.DecodeExport(job); err == nil {
			if mErr := p.exports.MarkFailed(ctx, payload.ExportID, cause.Error()); mErr != nil {
				p.logger.Error("mark export failed", zap.Error(mErr))
			}
		}
	}
	if err := p.queue.Retry(ctx, job); err != nil {
		p.logger.Error("retry enqueue failed", zap.Error(err))
	}
}

func (p *ExportProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.Backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
