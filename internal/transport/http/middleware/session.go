package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/app"
	"isu-photo-board/internal/model"
	"isu-photo-board/internal/pkg/sessiontoken"
	"isu-photo-board/internal/session"
)

const (
	ContextSessionKey = "board_session"
	ContextUserKey    = "board_user"
)

// ResolveSession turns the session cookie into the current user. Any
// failure along the chain (no cookie, bad signature, expired session,
// unknown user) resolves to anonymous, never to an error response.
func ResolveSession(cookieName, secret string, sessions *session.Store, auth *app.AuthService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		sid, err := sessiontoken.Parse(secret, raw)
		if err != nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		sess, err := sessions.Get(ctx, sid)
		if err != nil {
			log.WithError(err).Warn("session lookup failed, treating as anonymous")
			c.Next()
			return
		}
		if sess == nil {
			c.Next()
			return
		}

		user, err := auth.SessionUser(ctx, sess.UserID)
		if err != nil {
			log.WithError(err).Warn("session user lookup failed, treating as anonymous")
			c.Next()
			return
		}
		if user == nil {
			c.Next()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the logged-in user, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}

// CurrentSession returns the resolved session, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	sess, ok := v.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
