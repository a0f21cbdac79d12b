package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportStatus is the lifecycle state of a results export.
type ExportStatus string

const (
	ExportPending   ExportStatus = "pending"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// Export is an organizer-requested snapshot of the feedback results uploaded to S3.
type Export struct {
	ID          uuid.UUID    `json:"id"`
	Status      ExportStatus `json:"status"`
	S3Key       *string      `json:"s3_key,omitempty"`
	Error       *string      `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
