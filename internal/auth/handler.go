package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/pkg/response"
)

// CookieName is the admin credential cookie.
const CookieName = "admin_auth"

// LoginRequest is the body for POST /admin/auth.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler handles the organizer password gate.
type Handler struct {
	gate   *PasswordGate
	jwt    *JWTService
	secure bool
	logger *zap.Logger
}

// NewHandler creates an auth handler. secure marks the cookie Secure (production).
func NewHandler(gate *PasswordGate, jwt *JWTService, secure bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gate: gate, jwt: jwt, secure: secure, logger: logger}
}

// Login handles POST /admin/auth.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err), "invalid request")
		return
	}
	if !h.gate.Check(req.Password) {
		h.logger.Info("admin login rejected", zap.String("client_ip", c.ClientIP()))
		response.Unauthorized(c, "invalid password")
		return
	}
	token, expires, err := h.jwt.Generate()
	if err != nil {
		h.logger.Error("generate admin token", zap.Error(err))
		response.Internal(c, "failed to authenticate")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(h.jwt.TTL().Seconds()), "/", "", h.secure, true)
	response.OK(c, LoginResponse{ExpiresAt: expires})
}

// Logout handles POST /admin/logout.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.secure, true)
	response.OK(c, gin.H{"logged_out": true})
}
