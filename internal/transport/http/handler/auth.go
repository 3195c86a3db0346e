package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/app"
	"isu-photo-board/internal/config"
	"isu-photo-board/internal/pkg/sessiontoken"
	"isu-photo-board/internal/session"
	"isu-photo-board/internal/transport/http/middleware"
)

type AuthHandler struct {
	auth     *app.AuthService
	sessions *session.Store
	cfg      config.SessionConfig
	log      *logrus.Logger
}

func NewAuthHandler(auth *app.AuthService, sessions *session.Store, cfg config.SessionConfig, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

func (h *AuthHandler) GetLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Me":    nil,
		"Flash": popFlash(c),
	})
}

func (h *AuthHandler) PostLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), c.PostForm("account_name"), c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, app.ErrInvalidCredential) {
			h.log.WithError(err).Error("login failed")
		}
		setFlash(c, app.ErrInvalidCredential.Error())
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if err := h.openSession(c, user.ID); err != nil {
		h.log.WithError(err).Error("open session failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) GetRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", gin.H{
		"Me":    nil,
		"Flash": popFlash(c),
	})
}

func (h *AuthHandler) PostRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), c.PostForm("account_name"), c.PostForm("password"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrAccountTaken):
			setFlash(c, err.Error())
			c.Redirect(http.StatusFound, "/register")
		default:
			h.log.WithError(err).Error("register failed")
			c.String(http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if err := h.openSession(c, user.ID); err != nil {
		h.log.WithError(err).Error("open session failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) GetLogout(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		if err := h.sessions.Destroy(c.Request.Context(), sess.ID); err != nil {
			h.log.WithError(err).Warn("destroy session failed")
		}
	}
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.SecureCookies, true)
	c.Redirect(http.StatusFound, "/")
}

// openSession creates a fresh session record and sets the signed cookie.
func (h *AuthHandler) openSession(c *gin.Context, userID int) error {
	sess, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		return err
	}

	ttl := time.Duration(h.cfg.TTLHours) * time.Hour
	token, err := sessiontoken.Sign(h.cfg.Secret, sess.ID, ttl)
	if err != nil {
		return err
	}
	c.SetCookie(h.cfg.CookieName, token, int(ttl.Seconds()), "/", "", h.cfg.SecureCookies, true)
	return nil
}
