package feedback

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/realtime"
	"github.com/julefagdag/agenda/internal/stats"
	"github.com/julefagdag/agenda/pkg/response"
)

// SubmitRequest is the body for POST /feedback. The answers are pointers so a missing
// answer can be told apart from false.
type SubmitRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
	Useful    *bool  `json:"useful" binding:"required"`
	Learned   *bool  `json:"learned" binding:"required"`
	Explore   *bool  `json:"explore" binding:"required"`
}

// Feedback converts a bound request into the feedback to store.
func (r SubmitRequest) Feedback() models.Feedback {
	return models.Feedback{
		SessionID: uuid.MustParse(r.SessionID),
		Useful:    *r.Useful,
		Learned:   *r.Learned,
		Explore:   *r.Explore,
	}
}

// Store persists and lists session feedback.
type Store interface {
	Create(ctx context.Context, f *models.Feedback) error
	List(ctx context.Context, sessionID *uuid.UUID) ([]models.Feedback, error)
}

// Sessions is the session lookup the handler needs.
type Sessions interface {
	List(ctx context.Context) ([]models.Session, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Handler handles session feedback HTTP routes.
type Handler struct {
	store    Store
	sessions Sessions
	feed     realtime.Publisher
	logger   *zap.Logger
}

// NewHandler creates a feedback handler. feed may be nil.
func NewHandler(store Store, sessions Sessions, feed realtime.Publisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, sessions: sessions, feed: feed, logger: logger}
}

// Submit handles POST /feedback.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err), "invalid request")
		return
	}
	f := req.Feedback()
	ctx := c.Request.Context()
	ok, err := h.sessions.Exists(ctx, f.SessionID)
	if err != nil {
		h.logger.Error("check session", zap.Error(err))
		response.Internal(c, "failed to create feedback")
		return
	}
	if !ok {
		response.Error(c, apperr.NotFound("session", f.SessionID.String()), "")
		return
	}
	if err := h.store.Create(ctx, &f); err != nil {
		if !apperr.IsNotFound(err) {
			h.logger.Error("create feedback", zap.Error(err))
		}
		response.Error(c, err, "failed to create feedback")
		return
	}
	if h.feed != nil {
		h.feed.Publish(realtime.EventFeedbackSubmitted, f)
	}
	response.Created(c, f)
}

// List handles GET /admin/feedback?session_id=.
func (h *Handler) List(c *gin.Context) {
	var sessionID *uuid.UUID
	if raw := c.Query("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid session_id")
			return
		}
		sessionID = &id
	}
	list, err := h.store.List(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("list feedback", zap.Error(err))
		response.Internal(c, "failed to fetch feedback")
		return
	}
	response.OK(c, list)
}

// Results handles GET /admin/feedback/results: every session in start order with its
// statistics and raw feedback.
func (h *Handler) Results(c *gin.Context) {
	results, err := BuildResults(c.Request.Context(), h.sessions, h.store)
	if err != nil {
		h.logger.Error("build feedback results", zap.Error(err))
		response.Internal(c, "failed to fetch feedback results")
		return
	}
	response.OK(c, results)
}

// BuildResults loads sessions and all feedback and aggregates them per session.
func BuildResults(ctx context.Context, sessions Sessions, store Store) ([]stats.SessionFeedbackResult, error) {
	list, err := sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	all, err := store.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return stats.BuildResults(list, all), nil
}
