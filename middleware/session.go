package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	userKey      = "user"
	sessionIDKey = "session_id"
	flashKey     = "flash"
)

// LoadIdentity resolves the session cookie to a user on every request. Any
// failure leaves the request unauthenticated.
func LoadIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(util.SessionCookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}
		sid, err := util.ParseSessionToken(raw)
		if err != nil {
			c.Next()
			return
		}
		sessions, ok := GetSessionStore(c)
		if !ok {
			c.Next()
			return
		}
		userHex, err := sessions.Lookup(c.Request.Context(), sid)
		if err != nil {
			if !errors.Is(err, util.ErrSessionNotFound) {
				log.Warn().Err(err).Msg("session lookup failed")
			}
			c.Next()
			return
		}
		c.Set(sessionIDKey, sid)

		userID, err := primitive.ObjectIDFromHex(userHex)
		if err != nil {
			c.Next()
			return
		}
		st, ok := GetStore(c)
		if !ok {
			c.Next()
			return
		}
		user, err := st.FindUserByID(c.Request.Context(), userID)
		if err == nil {
			c.Set(userKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by LoadIdentity.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}

// SessionID returns the current session id, if any.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// SetSessionCookie writes the signed session cookie.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(util.SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(util.SessionCookieName, "", -1, "/", "", false, true)
}

// LoadFlash moves the pending flash message into the request context.
func LoadFlash() gin.HandlerFunc {
	return func(c *gin.Context) {
		if msg := util.PopFlash(c); msg != "" {
			c.Set(flashKey, msg)
		}
		c.Next()
	}
}

// Flash returns the flash message loaded for this request.
func Flash(c *gin.Context) string {
	return c.GetString(flashKey)
}
