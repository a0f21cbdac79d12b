package exports

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/pkg/queue"
	"github.com/julefagdag/agenda/pkg/response"
)

// Store is the export bookkeeping the handler needs.
type Store interface {
	Create(ctx context.Context) (*models.Export, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Export, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Enqueuer schedules export jobs.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, payload queue.ExportPayload) (*queue.Job, error)
}

// URLSigner signs download URLs for export objects.
type URLSigner interface {
	ExportDownloadURL(ctx context.Context, key string) (string, time.Duration, error)
}

// View is an export as returned by the API, with a download link once completed.
type View struct {
	models.Export
	DownloadURL string `json:"download_url,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"` // seconds
}

// Handler handles results export routes.
type Handler struct {
	store  Store
	queue  Enqueuer
	signer URLSigner
	logger *zap.Logger
}

// NewHandler creates an exports handler.
func NewHandler(store Store, q Enqueuer, signer URLSigner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, queue: q, signer: signer, logger: logger}
}

// Create handles POST /admin/exports.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	e, err := h.store.Create(ctx)
	if err != nil {
		h.logger.Error("create export", zap.Error(err))
		response.Internal(c, "failed to create export")
		return
	}
	if _, err := h.queue.EnqueueExport(ctx, queue.ExportPayload{ExportID: e.ID}); err != nil {
		h.logger.Error("enqueue export", zap.String("export_id", e.ID.String()), zap.Error(err))
		if mErr := h.store.MarkFailed(ctx, e.ID, "could not be queued"); mErr != nil {
			h.logger.Error("mark export failed", zap.Error(mErr))
		}
		response.Internal(c, "failed to queue export")
		return
	}
	response.Accepted(c, View{Export: *e})
}

// Get handles GET /admin/exports/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	ctx := c.Request.Context()
	e, err := h.store.GetByID(ctx, id)
	if err != nil {
		response.Error(c, err, "failed to fetch export")
		return
	}
	view := View{Export: *e}
	if e.Status == models.ExportCompleted && e.S3Key != nil {
		url, expires, err := h.signer.ExportDownloadURL(ctx, *e.S3Key)
		if err != nil {
			h.logger.Error("presign export", zap.String("export_id", id.String()), zap.Error(err))
			response.Internal(c, "failed to sign download url")
			return
		}
		view.DownloadURL = url
		view.ExpiresIn = int(expires.Seconds())
	}
	response.OK(c, view)
}
