package eventfeedback

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/realtime"
	"github.com/julefagdag/agenda/internal/stats"
	"github.com/julefagdag/agenda/pkg/response"
)

// SubmitRequest is the body for POST /event-feedback.
type SubmitRequest struct {
	Comment *string `json:"comment" binding:"omitempty,max=1000"`
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
}

// Validate trims the comment and checks that a comment, a rating, or both are present.
// Field bounds are enforced by the binding tags.
func (r SubmitRequest) Validate() (models.EventFeedback, error) {
	var f models.EventFeedback
	if r.Comment != nil {
		if c := strings.TrimSpace(*r.Comment); c != "" {
			f.Comment = &c
		}
	}
	if r.Rating != nil {
		v := *r.Rating
		f.Rating = &v
	}
	if f.Comment == nil && f.Rating == nil {
		return f, apperr.Validation("comment", "a comment or a rating is required")
	}
	return f, nil
}

// Store persists and lists event feedback.
type Store interface {
	Create(ctx context.Context, f *models.EventFeedback) error
	ListNewestFirst(ctx context.Context) ([]models.EventFeedback, error)
}

// ListResponse is the body of GET /admin/event-feedback.
type ListResponse struct {
	Feedbacks []models.EventFeedback `json:"feedbacks"`
	Summary   stats.RatingSummary    `json:"summary"`
}

// Handler handles event feedback HTTP routes.
type Handler struct {
	store  Store
	feed   realtime.Publisher
	logger *zap.Logger
}

// NewHandler creates an event feedback handler. feed may be nil.
func NewHandler(store Store, feed realtime.Publisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, feed: feed, logger: logger}
}

// Submit handles POST /event-feedback.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err), "invalid request")
		return
	}
	f, err := req.Validate()
	if err != nil {
		response.Error(c, err, "failed to create event feedback")
		return
	}
	if err := h.store.Create(c.Request.Context(), &f); err != nil {
		h.logger.Error("create event feedback", zap.Error(err))
		response.Internal(c, "failed to create event feedback")
		return
	}
	if h.feed != nil {
		h.feed.Publish(realtime.EventEventFeedbackSubmitted, f)
	}
	response.Created(c, f)
}

// List handles GET /admin/event-feedback.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.ListNewestFirst(c.Request.Context())
	if err != nil {
		h.logger.Error("list event feedback", zap.Error(err))
		response.Internal(c, "failed to fetch event feedbacks")
		return
	}
	response.OK(c, ListResponse{Feedbacks: list, Summary: stats.AggregateRatings(list)})
}
