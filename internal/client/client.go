// Package client is the HTTP collaborator the terminal views use to reach the agenda API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/apperr"
	"github.com/julefagdag/agenda/internal/clientstate"
	"github.com/julefagdag/agenda/internal/models"
	"github.com/julefagdag/agenda/internal/stats"
)

// adminCookie must match the cookie the server sets on login.
const adminCookie = "admin_auth"

// EventFeedbackList is the organizer view of event feedback.
type EventFeedbackList struct {
	Feedbacks []models.EventFeedback `json:"feedbacks"`
	Summary   stats.RatingSummary    `json:"summary"`
}

// Export is an export job as reported by the API.
type Export struct {
	models.Export
	DownloadURL string `json:"download_url,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// FeedbackInput is one attendee's answers for a session.
type FeedbackInput struct {
	SessionID string `json:"session_id"`
	Useful    bool   `json:"useful"`
	Learned   bool   `json:"learned"`
	Explore   bool   `json:"explore"`
}

// EventFeedbackInput is a comment, a rating, or both.
type EventFeedbackInput struct {
	Comment *string `json:"comment,omitempty"`
	Rating  *int    `json:"rating,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client calls the agenda API. The admin credential is kept in client-local storage so it
// survives restarts of the terminal client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	storage    clientstate.Storage
	logger     *zap.Logger
}

// New creates an API client for baseURL. storage holds the admin credential.
func New(baseURL string, storage clientstate.Storage, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		storage:    storage,
		logger:     logger,
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ListSessions returns every session ordered by start time.
func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	var out []models.Session
	err := c.do(ctx, "list sessions", http.MethodGet, "/sessions", nil, false, &out)
	return out, err
}

// SubmitFeedback records one attendee's answers for a session.
func (c *Client) SubmitFeedback(ctx context.Context, in FeedbackInput) (*models.Feedback, error) {
	var out models.Feedback
	if err := c.do(ctx, "submit feedback", http.MethodPost, "/feedback", in, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitEventFeedback records feedback on the whole event.
func (c *Client) SubmitEventFeedback(ctx context.Context, in EventFeedbackInput) (*models.EventFeedback, error) {
	var out models.EventFeedback
	if err := c.do(ctx, "submit event feedback", http.MethodPost, "/event-feedback", in, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges the organizer password for the admin credential and stores it.
func (c *Client) Login(ctx context.Context, password string) (time.Time, error) {
	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return time.Time{}, err
	}
	resp, err := c.send(ctx, "login", http.MethodPost, "/admin/auth", body, "")
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	var out struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := decode(resp, "login", &out); err != nil {
		return time.Time{}, err
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == adminCookie && ck.Value != "" {
			if err := c.storage.Set(ctx, clientstate.KeyAdminToken, ck.Value); err != nil {
				return time.Time{}, fmt.Errorf("store credential: %w", err)
			}
			return out.ExpiresAt, nil
		}
	}
	return time.Time{}, apperr.Unauthorized("no credential in login response")
}

// Logout forgets the stored credential. The server call is best-effort; the local
// credential is cleared even when it fails.
func (c *Client) Logout(ctx context.Context) error {
	if token, ok := c.token(ctx); ok {
		resp, err := c.send(ctx, "logout", http.MethodPost, "/admin/logout", nil, token)
		if err != nil {
			c.logger.Debug("logout request failed", zap.Error(err))
		} else {
			resp.Body.Close()
		}
	}
	return c.storage.Delete(ctx, clientstate.KeyAdminToken)
}

// Authenticated reports whether a credential is stored.
func (c *Client) Authenticated(ctx context.Context) bool {
	_, ok := c.token(ctx)
	return ok
}

// FeedbackResults returns every session with its statistics and raw feedback.
func (c *Client) FeedbackResults(ctx context.Context) ([]stats.SessionFeedbackResult, error) {
	var out []stats.SessionFeedbackResult
	err := c.do(ctx, "feedback results", http.MethodGet, "/admin/feedback/results", nil, true, &out)
	return out, err
}

// ListFeedback returns raw feedback, for one session when sessionID is set.
func (c *Client) ListFeedback(ctx context.Context, sessionID *uuid.UUID) ([]models.Feedback, error) {
	path := "/admin/feedback"
	if sessionID != nil {
		path += "?session_id=" + url.QueryEscape(sessionID.String())
	}
	var out []models.Feedback
	err := c.do(ctx, "list feedback", http.MethodGet, path, nil, true, &out)
	return out, err
}

// ListEventFeedback returns event feedback newest first with the rating summary.
func (c *Client) ListEventFeedback(ctx context.Context) (*EventFeedbackList, error) {
	var out EventFeedbackList
	if err := c.do(ctx, "list event feedback", http.MethodGet, "/admin/event-feedback", nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateExport queues a results export.
func (c *Client) CreateExport(ctx context.Context) (*Export, error) {
	var out Export
	if err := c.do(ctx, "create export", http.MethodPost, "/admin/exports", nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetExport returns the export status and, once completed, its download link.
func (c *Client) GetExport(ctx context.Context, id uuid.UUID) (*Export, error) {
	var out Export
	if err := c.do(ctx, "get export", http.MethodGet, "/admin/exports/"+id.String(), nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) token(ctx context.Context) (string, bool) {
	v, ok, err := c.storage.Get(ctx, clientstate.KeyAdminToken)
	if err != nil {
		c.logger.Warn("read credential", zap.Error(err))
		return "", false
	}
	return v, ok && v != ""
}

func (c *Client) do(ctx context.Context, op, method, path string, in any, admin bool, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return err
		}
	}
	var token string
	if admin {
		var ok bool
		if token, ok = c.token(ctx); !ok {
			return apperr.Unauthorized("not logged in")
		}
	}
	resp, err := c.send(ctx, op, method, path, body, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, op, out)
}

func (c *Client) send(ctx context.Context, op, method, path string, body []byte, token string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: adminCookie, Value: token})
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperr.Transient(op, err)
	}
	return resp, nil
}

// decode unwraps the response envelope and maps the status code to an error kind.
func decode(resp *http.Response, op string, out any) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 500 {
			return apperr.Transient(op, fmt.Errorf("status %d", resp.StatusCode))
		}
		return apperr.Transient(op, fmt.Errorf("decode response: %w", err))
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return apperr.Validation("", strings.TrimPrefix(env.Error, "validation: "))
	case resp.StatusCode == http.StatusUnauthorized:
		return apperr.Unauthorized(strings.TrimPrefix(strings.TrimPrefix(env.Error, "unauthorized"), ": "))
	case resp.StatusCode == http.StatusNotFound:
		resource := strings.TrimSuffix(env.Error, " not found")
		if resource == "" {
			resource = op
		}
		return &apperr.NotFoundError{Resource: resource}
	case resp.StatusCode >= 300:
		return apperr.Transient(op, fmt.Errorf("status %d: %s", resp.StatusCode, env.Error))
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}
