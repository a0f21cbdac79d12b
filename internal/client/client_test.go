package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/clientstate"
	"github.com/julefagdag/agenda/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestListSessions(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []models.Session{{ID: id, Title: "Go i produksjon", Room: "Sal 1"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", clientstate.NewMemoryStorage(), nil)
	list, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestErrorKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feedback":
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "validation: useful: is required"})
		case "/event-feedback":
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "session abc not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "boom"})
		}
	}))
	defer srv.Close()
	c := New(srv.URL, clientstate.NewMemoryStorage(), nil)
	ctx := context.Background()

	_, err := c.SubmitFeedback(ctx, FeedbackInput{SessionID: uuid.NewString()})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "validation: useful: is required", err.Error())

	_, err = c.SubmitEventFeedback(ctx, EventFeedbackInput{})
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, "session abc not found", err.Error())

	_, err = c.ListSessions(ctx)
	assert.True(t, apperr.IsTransient(err))
}

func TestNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL, clientstate.NewMemoryStorage(), nil)
	_, err := c.ListSessions(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsTransient(err))
}

func TestAdminCallsRequireLogin(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := New(srv.URL, clientstate.NewMemoryStorage(), nil)
	_, err := c.FeedbackResults(context.Background())
	assert.True(t, apperr.IsAuth(err))
	assert.Zero(t, calls)
}

func TestLoginStoresCredentialAndLogoutClears(t *testing.T) {
	expires := time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/auth":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "julefagdag2025" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "invalid password"})
				return
			}
			http.SetCookie(w, &http.Cookie{Name: adminCookie, Value: "tok", Path: "/", HttpOnly: true})
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"expires_at": expires}})
		case "/admin/event-feedback":
			ck, err := r.Cookie(adminCookie)
			if err != nil || ck.Value != "tok" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "unauthorized: missing credential"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"feedbacks": []any{},
				"summary":   map[string]any{"average": "0", "rated_count": 0},
			}})
		case "/admin/logout":
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}
	}))
	defer srv.Close()

	storage := clientstate.NewMemoryStorage()
	c := New(srv.URL, storage, nil)
	ctx := context.Background()

	_, err := c.Login(ctx, "wrong")
	assert.True(t, apperr.IsAuth(err))
	assert.False(t, c.Authenticated(ctx))

	got, err := c.Login(ctx, "julefagdag2025")
	require.NoError(t, err)
	assert.True(t, got.Equal(expires))
	assert.True(t, c.Authenticated(ctx))

	list, err := c.ListEventFeedback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", list.Summary.Average)

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.Authenticated(ctx))
	_, ok, _ := storage.Get(ctx, clientstate.KeyAdminToken)
	assert.False(t, ok)
}

func TestRejectedCredentialIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "unauthorized: token expired"})
	}))
	defer srv.Close()

	storage := clientstate.NewMemoryStorage()
	require.NoError(t, storage.Set(context.Background(), clientstate.KeyAdminToken, "old"))
	c := New(srv.URL, storage, nil)

	_, err := c.ListFeedback(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperr.IsAuth(err))
	assert.Equal(t, "unauthorized: token expired", err.Error())
}
