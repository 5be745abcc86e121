package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FlashCookieName holds a one-shot message shown on the next rendered page.
const FlashCookieName = "clinic_flash"

// CallServerError reports err and responds with a generic 500.
func CallServerError(c *gin.Context, err error) {
	ReportError(err, "request failed: "+c.Request.Method+" "+c.Request.URL.Path)
	c.String(http.StatusInternalServerError, "Server error")
	c.Abort()
}

// CallErrorNotFound responds 404 with msg as plain text.
func CallErrorNotFound(c *gin.Context, msg string) {
	c.String(http.StatusNotFound, msg)
	c.Abort()
}

// CallUserError responds 400 with msg as plain text.
func CallUserError(c *gin.Context, msg string) {
	c.String(http.StatusBadRequest, msg)
	c.Abort()
}

// CallUserNotAuthorized responds 403 with msg as plain text.
func CallUserNotAuthorized(c *gin.Context, msg string) {
	c.String(http.StatusForbidden, msg)
	c.Abort()
}

// SetFlash stores msg for the next request.
func SetFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookieName, msg, 60, "/", "", false, true)
}

// RedirectWithFlash sets a flash message and redirects with 302.
func RedirectWithFlash(c *gin.Context, location, msg string) {
	if msg != "" {
		SetFlash(c, msg)
	}
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// PopFlash returns the pending flash message and clears it.
func PopFlash(c *gin.Context) string {
	msg, err := c.Cookie(FlashCookieName)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(FlashCookieName, "", -1, "/", "", false, true)
	return msg
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName normalizes a name by trimming leading/trailing whitespace
// and collapsing multiple internal spaces into single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
