package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/auth"
	"github.com/julefagdag/agenda/internal/eventfeedback"
	"github.com/julefagdag/agenda/internal/exports"
	"github.com/julefagdag/agenda/internal/feedback"
	"github.com/julefagdag/agenda/internal/middleware"
	"github.com/julefagdag/agenda/internal/realtime"
	"github.com/julefagdag/agenda/internal/sessions"
	"github.com/julefagdag/agenda/pkg/response"
)

type handlers struct {
	sessions      *sessions.Handler
	feedback      *feedback.Handler
	eventFeedback *eventfeedback.Handler
	auth          *auth.Handler
	exports       *exports.Handler // nil when S3 is not configured
	hub           *realtime.Hub
}

func newRouter(h handlers, jwtService *auth.JWTService, origins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(origins))
	router.Use(middleware.Logger(logger, "/health"))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public
	router.GET("/sessions", h.sessions.List)
	router.GET("/agenda", h.sessions.Agenda)
	router.POST("/feedback", h.feedback.Submit)
	router.POST("/event-feedback", h.eventFeedback.Submit)

	// Organizer password gate
	router.POST("/admin/auth", h.auth.Login)
	router.POST("/admin/logout", h.auth.Logout)

	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(jwtService))
	{
		admin.GET("/feedback/results", h.feedback.Results)
		admin.GET("/feedback", h.feedback.List)
		admin.GET("/event-feedback", h.eventFeedback.List)
		if h.exports != nil {
			admin.POST("/exports", h.exports.Create)
			admin.GET("/exports/:id", h.exports.Get)
		}
		admin.GET("/ws", realtime.ServeWs(h.hub, realtime.NewUpgrader(origins), logger))
	}
	return router
}
