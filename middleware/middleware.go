package middleware

import (
	"time"

	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	storeKey        = "store"
	sessionStoreKey = "session_store"
	requestIDKey    = "request_id"
)

// CORSMiddleware allows the configured origins with credentials. An empty
// list falls back to allowing every origin without credentials.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// StoreMiddleware makes the document store available to handlers.
func StoreMiddleware(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(storeKey, s)
		c.Next()
	}
}

// GetStore returns the store set by StoreMiddleware.
func GetStore(c *gin.Context) (store.Store, bool) {
	v, ok := c.Get(storeKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(store.Store)
	return s, ok
}

// SessionStoreMiddleware makes the session store available to handlers.
func SessionStoreMiddleware(s util.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionStoreKey, s)
		c.Next()
	}
}

// GetSessionStore returns the store set by SessionStoreMiddleware.
func GetSessionStore(c *gin.Context) (util.SessionStore, bool) {
	v, ok := c.Get(sessionStoreKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(util.SessionStore)
	return s, ok
}

// RequestID tags each request with an id, reusing X-Request-ID when sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}
