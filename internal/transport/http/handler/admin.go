package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/app"
	"isu-photo-board/internal/model"
	"isu-photo-board/internal/transport/http/middleware"
)

type AdminHandler struct {
	admin *app.AdminService
	log   *logrus.Logger
}

func NewAdminHandler(admin *app.AdminService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, log: log}
}

func (h *AdminHandler) GetBanned(c *gin.Context) {
	me, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	users, err := h.admin.ListBannable(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("list bannable users failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	sess := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, "banned.html", gin.H{
		"Me":        me,
		"Users":     users,
		"CSRFToken": sess.CSRFToken,
		"Flash":     popFlash(c),
	})
}

func (h *AdminHandler) PostBanned(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}
	if !csrfOK(c) {
		return
	}

	var ids []int
	for _, raw := range c.PostFormArray("uid") {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	if err := h.admin.BanUsers(c.Request.Context(), ids); err != nil {
		h.log.WithError(err).Error("ban users failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.Redirect(http.StatusFound, "/admin/banned")
}

func (h *AdminHandler) requireAdmin(c *gin.Context) (*model.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return nil, false
	}
	if !user.Admin() {
		c.AbortWithStatus(http.StatusForbidden)
		return nil, false
	}
	return user, true
}
