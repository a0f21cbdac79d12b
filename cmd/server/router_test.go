package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/auth"
	"github.com/julefagdag/agenda/internal/eventfeedback"
	"github.com/julefagdag/agenda/internal/feedback"
	"github.com/julefagdag/agenda/internal/realtime"
	"github.com/julefagdag/agenda/internal/sessions"
)

func testRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gate, err := auth.NewPasswordGate("julefagdag2025", "")
	require.NoError(t, err)
	jwtService := auth.NewJWTService("secret", 24)
	h := handlers{
		sessions:      sessions.NewHandler(nil, nil, nil),
		feedback:      feedback.NewHandler(nil, nil, nil, nil),
		eventFeedback: eventfeedback.NewHandler(nil, nil, nil),
		auth:          auth.NewHandler(gate, jwtService, false, nil),
		hub:           realtime.NewHub(nil, nil, nil),
	}
	return newRouter(h, jwtService, nil, zap.NewNop()), jwtService
}

func TestAdminRoutesRequireCookie(t *testing.T) {
	r, _ := testRouter(t)
	for _, path := range []string{"/admin/feedback/results", "/admin/feedback", "/admin/event-feedback", "/admin/ws"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestExportRoutesAbsentWithoutS3(t *testing.T) {
	r, jwtService := testRouter(t)
	token, _, err := jwtService.Generate()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/admin/exports", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok"}}`, w.Body.String())
}
