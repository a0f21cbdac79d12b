package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/realtime"
	"github.com/julefagdag/agenda/internal/stats"
)

type memStore struct {
	mu   sync.Mutex
	list []models.Feedback
	err  error
}

func (m *memStore) Create(_ context.Context, f *models.Feedback) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	m.list = append(m.list, *f)
	return nil
}

func (m *memStore) List(_ context.Context, sessionID *uuid.UUID) ([]models.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Feedback{}
	for _, f := range m.list {
		if sessionID == nil || f.SessionID == *sessionID {
			out = append(out, f)
		}
	}
	return out, m.err
}

type memSessions struct {
	list []models.Session
}

func (m *memSessions) List(context.Context) ([]models.Session, error) { return m.list, nil }

func (m *memSessions) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	for _, s := range m.list {
		if s.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type recordingFeed struct {
	events []string
}

func (r *recordingFeed) Publish(event string, _ interface{}) { r.events = append(r.events, event) }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type HandlerTestSuite struct {
	suite.Suite
	store    *memStore
	sessions *memSessions
	feed     *recordingFeed
	router   *gin.Engine
	first    models.Session
	second   models.Session
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	start := time.Date(2025, 12, 2, 12, 0, 0, 0, time.UTC)
	s.first = models.Session{ID: uuid.New(), Title: "Velkommen", Room: "Sal 1", StartTime: start, EndTime: start.Add(15 * time.Minute)}
	s.second = models.Session{ID: uuid.New(), Title: "Mnemonic", Room: "Sal 1", StartTime: start.Add(time.Hour), EndTime: start.Add(90 * time.Minute)}
	s.store = &memStore{}
	s.sessions = &memSessions{list: []models.Session{s.first, s.second}}
	s.feed = &recordingFeed{}

	h := NewHandler(s.store, s.sessions, s.feed, nil)
	s.router = gin.New()
	s.router.POST("/feedback", h.Submit)
	s.router.GET("/admin/feedback", h.List)
	s.router.GET("/admin/feedback/results", h.Results)
}

func (s *HandlerTestSuite) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (s *HandlerTestSuite) submit(id uuid.UUID, useful, learned, explore bool) {
	w, _ := s.do(http.MethodPost, "/feedback", map[string]any{
		"session_id": id.String(), "useful": useful, "learned": learned, "explore": explore,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
}

func (s *HandlerTestSuite) TestSubmitCreates() {
	w, env := s.do(http.MethodPost, "/feedback", map[string]any{
		"session_id": s.first.ID.String(), "useful": true, "learned": false, "explore": true,
	})
	s.Equal(http.StatusCreated, w.Code)
	s.True(env.Success)

	var f models.Feedback
	s.Require().NoError(json.Unmarshal(env.Data, &f))
	s.Equal(s.first.ID, f.SessionID)
	s.True(f.Useful)
	s.False(f.Learned)
	s.NotEqual(uuid.Nil, f.ID)
	s.Equal([]string{realtime.EventFeedbackSubmitted}, s.feed.events)
}

func (s *HandlerTestSuite) TestSubmitValidation() {
	id := s.first.ID.String()
	cases := map[string]struct {
		body map[string]any
		msg  string
	}{
		"missing session":  {map[string]any{"useful": true, "learned": true, "explore": true}, "validation: session_id: is required"},
		"bad session":      {map[string]any{"session_id": "abc", "useful": true, "learned": true, "explore": true}, "validation: session_id: must be a uuid"},
		"missing learned":  {map[string]any{"session_id": id, "useful": true, "explore": true}, "validation: learned: is required"},
		"null useful":      {map[string]any{"session_id": id, "useful": nil, "learned": true, "explore": true}, "validation: useful: is required"},
		"non-bool explore": {map[string]any{"session_id": id, "useful": true, "learned": true, "explore": "yes"}, "validation: explore: must be of type bool"},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			w, env := s.do(http.MethodPost, "/feedback", tc.body)
			s.Equal(http.StatusBadRequest, w.Code)
			s.False(env.Success)
			s.Equal(tc.msg, env.Error)
		})
	}
	s.Empty(s.store.list)
	s.Empty(s.feed.events)
}

func (s *HandlerTestSuite) TestSubmitAcceptsFalseAnswers() {
	w, env := s.do(http.MethodPost, "/feedback", map[string]any{
		"session_id": s.first.ID.String(), "useful": false, "learned": false, "explore": false,
	})
	s.Equal(http.StatusCreated, w.Code)
	s.True(env.Success)
}

func (s *HandlerTestSuite) TestSubmitUnknownSession() {
	w, env := s.do(http.MethodPost, "/feedback", map[string]any{
		"session_id": uuid.NewString(), "useful": true, "learned": true, "explore": true,
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(env.Error, "not found")
	s.Empty(s.store.list)
}

func (s *HandlerTestSuite) TestSubmitStoreFailure() {
	s.store.err = errors.New("db down")
	w, env := s.do(http.MethodPost, "/feedback", map[string]any{
		"session_id": s.first.ID.String(), "useful": true, "learned": true, "explore": true,
	})
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("failed to create feedback", env.Error)
}

func (s *HandlerTestSuite) TestResults() {
	s.submit(s.second.ID, true, true, false)
	s.submit(s.second.ID, true, false, false)
	s.submit(s.second.ID, false, false, false)

	w, env := s.do(http.MethodGet, "/admin/feedback/results", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var results []stats.SessionFeedbackResult
	s.Require().NoError(json.Unmarshal(env.Data, &results))
	s.Require().Len(results, 2)
	s.Equal(s.first.ID, results[0].Session.ID)
	s.Equal(0, results[0].Statistics.TotalFeedback)
	s.Empty(results[0].Feedbacks)

	st := results[1].Statistics
	s.Equal(3, st.TotalFeedback)
	s.Equal(2, st.UsefulCount)
	s.Equal(67, st.UsefulPercentage)
	s.Equal(33, st.LearnedPercentage)
	s.Equal(0, st.ExplorePercentage)
	s.Len(results[1].Feedbacks, 3)
}

func (s *HandlerTestSuite) TestListFilters() {
	s.submit(s.first.ID, true, true, true)
	s.submit(s.second.ID, false, false, false)

	_, env := s.do(http.MethodGet, "/admin/feedback", nil)
	var all []models.Feedback
	s.Require().NoError(json.Unmarshal(env.Data, &all))
	s.Len(all, 2)

	_, env = s.do(http.MethodGet, "/admin/feedback?session_id="+s.first.ID.String(), nil)
	var one []models.Feedback
	s.Require().NoError(json.Unmarshal(env.Data, &one))
	s.Require().Len(one, 1)
	s.Equal(s.first.ID, one[0].SessionID)

	w, _ := s.do(http.MethodGet, "/admin/feedback?session_id=nope", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
