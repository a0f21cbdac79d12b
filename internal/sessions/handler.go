package sessions

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/agenda"
	"github.com/julefagdag/agenda/internal/common/clock"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/pkg/response"
)

// Lister returns sessions ordered by start time.
type Lister interface {
	List(ctx context.Context) ([]models.Session, error)
}

// AgendaResponse is the body of GET /agenda.
type AgendaResponse struct {
	At time.Time `json:"at"`
	agenda.Grouped
}

// Handler handles session HTTP routes.
type Handler struct {
	sessions Lister
	clock    clock.Clock
	logger   *zap.Logger
}

// NewHandler creates a sessions handler.
func NewHandler(sessions Lister, c clock.Clock, logger *zap.Logger) *Handler {
	if c == nil {
		c = &clock.DefaultClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, clock: c, logger: logger}
}

// List handles GET /sessions.
func (h *Handler) List(c *gin.Context) {
	list, err := h.sessions.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list sessions", zap.Error(err))
		response.Internal(c, "failed to fetch sessions")
		return
	}
	response.OK(c, list)
}

// Agenda handles GET /agenda?at=RFC3339: the sessions sorted and grouped by status at the
// given time, or now.
func (h *Handler) Agenda(c *gin.Context) {
	at := h.clock.Now()
	if raw := c.Query("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "at must be an RFC3339 timestamp")
			return
		}
		at = t
	}
	list, err := h.sessions.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list sessions", zap.Error(err))
		response.Internal(c, "failed to fetch sessions")
		return
	}
	response.OK(c, AgendaResponse{At: at, Grouped: agenda.SortAndGroup(list, at)})
}
