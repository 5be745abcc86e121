package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func TestPlainTextResponses(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		body   string
	}{
		{"server error", func(c *gin.Context) { CallServerError(c, errors.New("boom")) }, http.StatusInternalServerError, "Server error"},
		{"not found", func(c *gin.Context) { CallErrorNotFound(c, "Patient not found") }, http.StatusNotFound, "Patient not found"},
		{"user error", func(c *gin.Context) { CallUserError(c, "Invalid patient id") }, http.StatusBadRequest, "Invalid patient id"},
		{"forbidden", func(c *gin.Context) { CallUserNotAuthorized(c, "Doctors only") }, http.StatusForbidden, "Doctors only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/x")
			tt.call(c)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}

func TestRedirectWithFlash(t *testing.T) {
	c, w := newTestContext(http.MethodPost, "/login")
	RedirectWithFlash(c, "/login", "Invalid email or password")
	// POST redirects leave the status buffered in gin's writer.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, FlashCookieName, cookies[0].Name)
	}
}

func TestPopFlash(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/login")
	c.Request.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "Too+many+attempts."})

	assert.Equal(t, "Too many attempts.", PopFlash(c))
	cookies := w.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.True(t, cookies[0].MaxAge < 0)
	}

	c2, _ := newTestContext(http.MethodGet, "/login")
	assert.Equal(t, "", PopFlash(c2))
}

func TestNormalizeHelpers(t *testing.T) {
	assert.Equal(t, "doc@example.com", NormalizeEmail("  Doc@Example.COM "))
	assert.Equal(t, "Jane Doe", NormalizeName("  Jane   Doe "))
	assert.Equal(t, "", NormalizeName("   "))
}
