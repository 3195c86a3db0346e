package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/app"
	"isu-photo-board/internal/transport/http/middleware"
)

type CommentHandler struct {
	posts *app.PostService
	log   *logrus.Logger
}

func NewCommentHandler(posts *app.PostService, log *logrus.Logger) *CommentHandler {
	return &CommentHandler{posts: posts, log: log}
}

func (h *CommentHandler) PostComment(c *gin.Context) {
	me := middleware.CurrentUser(c)
	if me == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if !csrfOK(c) {
		return
	}

	postID, err := strconv.Atoi(c.PostForm("post_id"))
	if err != nil {
		c.String(http.StatusBadRequest, "post_id must be an integer")
		return
	}

	err = h.posts.CreateComment(c.Request.Context(), me.ID, postID, c.PostForm("comment"))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			c.String(http.StatusNotFound, "404 not found")
			return
		}
		h.log.WithError(err).Error("create comment failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.Redirect(http.StatusFound, "/posts/"+strconv.Itoa(postID))
}
