package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, secure bool) (*gin.Engine, *JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gate, err := NewPasswordGate("julefagdag2025", "")
	require.NoError(t, err)
	jwtSvc := NewJWTService("test-secret", 24)
	h := NewHandler(gate, jwtSvc, secure, nil)
	r := gin.New()
	r.POST("/admin/auth", h.Login)
	r.POST("/admin/logout", h.Logout)
	return r, jwtSvc
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body)))
	return w
}

func adminCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestLoginSetsCookie(t *testing.T) {
	r, jwtSvc := newTestHandler(t, true)
	w := post(r, "/admin/auth", `{"password":"julefagdag2025"}`)
	require.Equal(t, http.StatusOK, w.Code)

	c := adminCookie(w)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 24*60*60, c.MaxAge)

	claims, err := jwtSvc.Validate(c.Value)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestLoginRejects(t *testing.T) {
	r, _ := newTestHandler(t, false)
	assert.Equal(t, http.StatusUnauthorized, post(r, "/admin/auth", `{"password":"wrong"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/admin/auth", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/admin/auth", `not json`).Code)
	assert.Nil(t, adminCookie(post(r, "/admin/auth", `{"password":"wrong"}`)))
}

func TestLoginReportsMissingPassword(t *testing.T) {
	r, _ := newTestHandler(t, false)
	for _, body := range []string{`{}`, `{"password":""}`} {
		w := post(r, "/admin/auth", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"validation: password: is required"}`, w.Body.String())
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	r, _ := newTestHandler(t, false)
	w := post(r, "/admin/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	c := adminCookie(w)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestTokenExpiry(t *testing.T) {
	svc := NewJWTService("test-secret", 24)
	issued := time.Date(2025, 12, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, expires, err := svc.Generate()
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour), expires)

	svc.now = func() time.Time { return issued.Add(23 * time.Hour) }
	_, err = svc.Validate(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(25 * time.Hour) }
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("a", 1).Generate()
	require.NoError(t, err)
	_, err = NewJWTService("b", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordGateFromHash(t *testing.T) {
	plain, err := NewPasswordGate("secret", "")
	require.NoError(t, err)
	gate, err := NewPasswordGate("", plain.hash)
	require.NoError(t, err)
	assert.True(t, gate.Check("secret"))
	assert.False(t, gate.Check("Secret"))

	_, err = NewPasswordGate("", "not-a-hash")
	assert.Error(t, err)
	_, err = NewPasswordGate("", "")
	assert.Error(t, err)
}
