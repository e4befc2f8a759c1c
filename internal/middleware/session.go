package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys.
const (
	SessionUserIDKey   = "user_id"
	SessionEmailKey    = "email"
	SessionRememberKey = "remember"
)

// ContextUserIDKey is the gin context key holding the logged-in user id.
const ContextUserIDKey = "user_id"

// SlidingSession re-issues a valid session cookie on every request so its
// expiry moves forward with activity. Sessions started with "remember me"
// keep rememberMaxAge.
func SlidingSession(store sessions.Store, name string, rememberMaxAge time.Duration, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := store.Get(c.Request, name)
		if err != nil {
			// tampered or stale cookie; the handler starts a fresh session
			log.Debugw("[session] decode failed", "err", err)
			c.Next()
			return
		}
		if id, ok := s.Values[SessionUserIDKey].(string); ok && id != "" && !s.IsNew {
			if remember, _ := s.Values[SessionRememberKey].(bool); remember && s.Options != nil {
				s.Options.MaxAge = int(rememberMaxAge / time.Second)
			}
			if err := s.Save(c.Request, c.Writer); err != nil {
				log.Warnw("[session] refresh failed", "err", err)
			}
			c.Set(ContextUserIDKey, id)
		}
		c.Next()
	}
}
