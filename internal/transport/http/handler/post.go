package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/app"
	"isu-photo-board/internal/model"
	"isu-photo-board/internal/transport/http/middleware"
)

type PostHandler struct {
	posts     *app.PostService
	uploadMax int64
	log       *logrus.Logger
}

func NewPostHandler(posts *app.PostService, uploadMax int64, log *logrus.Logger) *PostHandler {
	return &PostHandler{
		posts:     posts,
		uploadMax: uploadMax,
		log:       log,
	}
}

func (h *PostHandler) GetIndex(c *gin.Context) {
	views, err := h.posts.Index(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("load index failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	sess := middleware.CurrentSession(c)
	csrfToken := ""
	if sess != nil {
		csrfToken = sess.CSRFToken
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Me":        middleware.CurrentUser(c),
		"Posts":     views,
		"CSRFToken": csrfToken,
		"Flash":     popFlash(c),
	})
}

// PostIndex handles the multipart upload form.
func (h *PostHandler) PostIndex(c *gin.Context) {
	me := middleware.CurrentUser(c)
	if me == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if !csrfOK(c) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		setFlash(c, app.ErrMissingImage.Error())
		c.Redirect(http.StatusFound, "/")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.WithError(err).Error("open upload failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	defer file.Close()

	// Read one byte past the cap so an oversized upload is detected without
	// buffering the whole thing.
	imgdata, err := io.ReadAll(io.LimitReader(file, h.uploadMax+1))
	if err != nil {
		h.log.WithError(err).Error("read upload failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	mime := fileHeader.Header.Get("Content-Type")
	post, err := h.posts.CreatePost(c.Request.Context(), me, mime, c.PostForm("body"), imgdata)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingImage), errors.Is(err, app.ErrInvalidMime), errors.Is(err, app.ErrImageTooLarge):
			setFlash(c, err.Error())
			c.Redirect(http.StatusFound, "/")
		default:
			h.log.WithError(err).Error("create post failed")
			c.String(http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.Redirect(http.StatusFound, "/posts/"+strconv.Itoa(post.ID))
}

// GetPosts is the cursor feed: ?max_created_at=ISO8601 scrolls back in
// time. It renders the bare posts fragment.
func (h *PostHandler) GetPosts(c *gin.Context) {
	ctx := c.Request.Context()

	var views []model.PostView
	var err error
	if raw := c.Query("max_created_at"); raw != "" {
		max, parseErr := parseISO8601(raw)
		if parseErr != nil {
			c.String(http.StatusBadRequest, "invalid max_created_at")
			return
		}
		views, err = h.posts.Feed(ctx, max)
	} else {
		views, err = h.posts.Index(ctx)
	}
	if err != nil {
		h.log.WithError(err).Error("load posts feed failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	sess := middleware.CurrentSession(c)
	csrfToken := ""
	if sess != nil {
		csrfToken = sess.CSRFToken
	}
	c.HTML(http.StatusOK, "posts.html", gin.H{
		"Posts":     views,
		"CSRFToken": csrfToken,
	})
}

func (h *PostHandler) GetPostByID(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "404 not found")
		return
	}

	view, err := h.posts.Detail(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			c.String(http.StatusNotFound, "404 not found")
			return
		}
		h.log.WithError(err).Error("load post failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	sess := middleware.CurrentSession(c)
	csrfToken := ""
	if sess != nil {
		csrfToken = sess.CSRFToken
	}
	c.HTML(http.StatusOK, "post.html", gin.H{
		"Me":        middleware.CurrentUser(c),
		"Post":      view,
		"CSRFToken": csrfToken,
		"Flash":     popFlash(c),
	})
}

// GetUserPage renders /@{account_name}. Routed through NoRoute because the
// literal @ shares a segment with the parameter.
func (h *PostHandler) GetUserPage(c *gin.Context, accountName string) {
	bundle, err := h.posts.UserPage(c.Request.Context(), accountName)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			c.String(http.StatusNotFound, "404 not found")
			return
		}
		h.log.WithError(err).Error("load user page failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.HTML(http.StatusOK, "user.html", gin.H{
		"Me":             middleware.CurrentUser(c),
		"User":           bundle.User,
		"Posts":          bundle.Posts,
		"PostCount":      bundle.PostCount,
		"CommentCount":   bundle.CommentCount,
		"CommentedCount": bundle.CommentedCount,
		"Flash":          popFlash(c),
	})
}

// parseISO8601 accepts the first 19 characters (YYYY-MM-DDTHH:MM:SS) and
// ignores any timezone suffix.
func parseISO8601(raw string) (time.Time, error) {
	trimmed := raw
	if len(trimmed) > 19 {
		trimmed = trimmed[:19]
	}
	return time.ParseInLocation("2006-01-02T15:04:05", strings.TrimSpace(trimmed), time.Local)
}

// csrfOK enforces the per-session token on state-changing posts. A
// mismatch is 422 with no mutation performed.
func csrfOK(c *gin.Context) bool {
	sess := middleware.CurrentSession(c)
	if sess == nil || c.PostForm("csrf_token") != sess.CSRFToken {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return false
	}
	return true
}
