package sessions

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julefagdag/agenda/internal/common/clock"
	"github.com/julefagdag/agenda/internal/models"
)

type agendaBody struct {
	Success bool `json:"success"`
	Data    struct {
		At        time.Time        `json:"at"`
		Current   []models.Session `json:"current"`
		Upcoming  []models.Session `json:"upcoming"`
		Completed []models.Session `json:"completed"`
	} `json:"data"`
	Error string `json:"error"`
}

func newRouter(store *fakeStore, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, clock.NewFake(now), nil)
	r := gin.New()
	r.GET("/sessions", h.List)
	r.GET("/agenda", h.Agenda)
	return r
}

func fixture() (*fakeStore, time.Time) {
	base := time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC)
	mk := func(title string, start, length time.Duration) models.Session {
		return models.Session{ID: uuid.New(), Title: title, Room: "Sal 1", StartTime: base.Add(start), EndTime: base.Add(start + length)}
	}
	return &fakeStore{sessions: []models.Session{
		mk("done", -2*time.Hour, time.Hour),
		mk("running", -10*time.Minute, 30*time.Minute),
		mk("next", time.Hour, 30*time.Minute),
	}}, base
}

func TestAgendaGroupsAtNow(t *testing.T) {
	store, now := fixture()
	w := httptest.NewRecorder()
	newRouter(store, now).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/agenda", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body agendaBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, body.Data.At.Equal(now))
	require.Len(t, body.Data.Current, 1)
	assert.Equal(t, "running", body.Data.Current[0].Title)
	require.Len(t, body.Data.Upcoming, 1)
	require.Len(t, body.Data.Completed, 1)
}

func TestAgendaAtQuery(t *testing.T) {
	store, now := fixture()
	w := httptest.NewRecorder()
	at := now.Add(-3 * time.Hour).Format(time.RFC3339)
	newRouter(store, now).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/agenda?at="+at, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body agendaBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Upcoming, 3)
	assert.Empty(t, body.Data.Current)
	assert.Empty(t, body.Data.Completed)
	assert.Equal(t, "done", body.Data.Upcoming[0].Title)
}

func TestAgendaBadAt(t *testing.T) {
	store, now := fixture()
	w := httptest.NewRecorder()
	newRouter(store, now).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/agenda?at=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSessionsFailure(t *testing.T) {
	store, now := fixture()
	store.err = errors.New("db down")
	w := httptest.NewRecorder()
	newRouter(store, now).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body agendaBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "failed to fetch sessions", body.Error)
}

func TestListSessions(t *testing.T) {
	store, now := fixture()
	w := httptest.NewRecorder()
	newRouter(store, now).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []models.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 3)
}
