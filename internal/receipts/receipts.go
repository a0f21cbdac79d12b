// Package receipts remembers, per client, which feedback forms were already submitted.
package receipts

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/clientstate"
)

// Receipts reads and writes the submitted-feedback markers in client storage.
type Receipts struct {
	storage clientstate.Storage
	logger  *zap.Logger
}

// New creates Receipts over storage.
func New(storage clientstate.Storage, logger *zap.Logger) *Receipts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Receipts{storage: storage, logger: logger}
}

// HasSubmittedEventFeedback reports whether this client already sent event feedback.
// Storage errors read as false.
func (r *Receipts) HasSubmittedEventFeedback(ctx context.Context) bool {
	v, ok, err := r.storage.Get(ctx, clientstate.KeyEventFeedback)
	if err != nil {
		r.logger.Warn("load event feedback receipt", zap.Error(err))
		return false
	}
	return ok && v == "true"
}

// MarkEventFeedbackSubmitted records that event feedback was sent.
func (r *Receipts) MarkEventFeedbackSubmitted(ctx context.Context) error {
	if err := r.storage.Set(ctx, clientstate.KeyEventFeedback, "true"); err != nil {
		return fmt.Errorf("mark event feedback: %w", err)
	}
	return nil
}

// HasSubmittedFeedback reports whether feedback for sessionID was already sent.
func (r *Receipts) HasSubmittedFeedback(ctx context.Context, sessionID string) bool {
	return slices.Contains(r.submitted(ctx), sessionID)
}

// MarkFeedbackSubmitted adds sessionID to the submitted list if it is not there yet.
func (r *Receipts) MarkFeedbackSubmitted(ctx context.Context, sessionID string) error {
	current := r.submitted(ctx)
	if slices.Contains(current, sessionID) {
		return nil
	}
	b, err := json.Marshal(append(current, sessionID))
	if err != nil {
		return fmt.Errorf("marshal feedback receipts: %w", err)
	}
	if err := r.storage.Set(ctx, clientstate.KeyFeedback, string(b)); err != nil {
		return fmt.Errorf("mark feedback: %w", err)
	}
	return nil
}

// submitted returns the stored session ids; unreadable data is empty.
func (r *Receipts) submitted(ctx context.Context) []string {
	v, ok, err := r.storage.Get(ctx, clientstate.KeyFeedback)
	if err != nil {
		r.logger.Warn("load feedback receipts", zap.Error(err))
		return []string{}
	}
	if !ok {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(v), &ids); err != nil {
		r.logger.Warn("discarding unparsable feedback receipts", zap.Error(err))
		return []string{}
	}
	return ids
}
