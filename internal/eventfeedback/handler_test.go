package eventfeedback

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/models"
)

type memStore struct {
	list []models.EventFeedback
	now  time.Time
}

func (m *memStore) Create(_ context.Context, f *models.EventFeedback) error {
	m.now = m.now.Add(time.Minute)
	f.ID = uuid.New()
	f.CreatedAt = m.now
	m.list = append(m.list, *f)
	return nil
}

func (m *memStore) ListNewestFirst(context.Context) ([]models.EventFeedback, error) {
	out := make([]models.EventFeedback, 0, len(m.list))
	for i := len(m.list) - 1; i >= 0; i-- {
		out = append(out, m.list[i])
	}
	return out, nil
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     SubmitRequest
		comment *string
		rating  *int
		wantErr bool
	}{
		{"comment trimmed", SubmitRequest{Comment: strPtr("  Flott dag!  ")}, strPtr("Flott dag!"), nil, false},
		{"rating only", SubmitRequest{Rating: intPtr(5)}, nil, intPtr(5), false},
		{"both", SubmitRequest{Comment: strPtr("Bra"), Rating: intPtr(1)}, strPtr("Bra"), intPtr(1), false},
		{"blank comment with rating", SubmitRequest{Comment: strPtr("   "), Rating: intPtr(3)}, nil, intPtr(3), false},
		{"blank comment only", SubmitRequest{Comment: strPtr("   ")}, nil, nil, true},
		{"empty", SubmitRequest{}, nil, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := tc.req.Validate()
			if tc.wantErr {
				assert.True(t, apperr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.comment, f.Comment)
			assert.Equal(t, tc.rating, f.Rating)
		})
	}
}

func TestSubmitRejectsOutOfBoundsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memStore{}
	r := gin.New()
	r.POST("/event-feedback", NewHandler(store, nil, nil).Submit)

	cases := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"rating too low", `{"rating":0}`, http.StatusBadRequest, "validation: rating: must be at least 1"},
		{"rating too high", `{"rating":6,"comment":"Bra"}`, http.StatusBadRequest, "validation: rating: must be at most 5"},
		{"comment too long", `{"comment":"` + strings.Repeat("a", 1001) + `"}`, http.StatusBadRequest, "validation: comment: cannot exceed 1000 characters"},
		{"comment at limit counts characters", `{"comment":"` + strings.Repeat("æ", 1000) + `"}`, http.StatusCreated, ""},
		{"neither", `{"comment":"  "}`, http.StatusBadRequest, "validation: comment: a comment or a rating is required"},
		{"wrong type", `{"rating":"five"}`, http.StatusBadRequest, "validation: rating: must be of type int"},
		{"malformed", `{"rating":`, http.StatusBadRequest, "validation: invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/event-feedback", bytes.NewBufferString(tc.body)))
			assert.Equal(t, tc.status, w.Code)
			if tc.msg == "" {
				return
			}
			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body.Error)
		})
	}
	assert.Len(t, store.list, 1)
}

func TestSubmitAndList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memStore{now: time.Date(2025, 12, 2, 17, 0, 0, 0, time.UTC)}
	h := NewHandler(store, nil, nil)
	r := gin.New()
	r.POST("/event-feedback", h.Submit)
	r.GET("/admin/event-feedback", h.List)

	post := func(body string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/event-feedback", bytes.NewBufferString(body)))
		return w.Code
	}
	assert.Equal(t, http.StatusCreated, post(`{"rating":5}`))
	assert.Equal(t, http.StatusCreated, post(`{"rating":4,"comment":"God mat"}`))
	assert.Equal(t, http.StatusCreated, post(`{"comment":"Mer kaffe"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"rating":9}`))
	assert.Equal(t, http.StatusBadRequest, post(`{}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"rating":"five"}`))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/event-feedback", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data ListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Feedbacks, 3)
	assert.Equal(t, "Mer kaffe", *body.Data.Feedbacks[0].Comment)
	assert.Nil(t, body.Data.Feedbacks[0].Rating)
	assert.Equal(t, "4.5", body.Data.Summary.Average)
	assert.Equal(t, 2, body.Data.Summary.RatedCount)
	assert.Equal(t, 50, body.Data.Summary.Bucket(5).Percentage)
	assert.Equal(t, 0, body.Data.Summary.Bucket(3).Count)
}
