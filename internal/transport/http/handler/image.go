package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/app"
)

type ImageHandler struct {
	posts *app.PostService
	log   *logrus.Logger
}

func NewImageHandler(posts *app.PostService, log *logrus.Logger) *ImageHandler {
	return &ImageHandler{posts: posts, log: log}
}

// GetImage serves /image/:filename where filename is "{id}.{ext}". The
// extension must agree with the stored mime type or the image is a 404.
func (h *ImageHandler) GetImage(c *gin.Context) {
	filename := c.Param("filename")
	dot := strings.LastIndexByte(filename, '.')
	if dot <= 0 || dot == len(filename)-1 {
		c.String(http.StatusNotFound, "404 not found")
		return
	}

	postID, err := strconv.Atoi(filename[:dot])
	if err != nil || postID <= 0 {
		c.String(http.StatusNotFound, "404 not found")
		return
	}
	ext := filename[dot+1:]

	img, err := h.posts.Image(c.Request.Context(), postID, ext)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			c.String(http.StatusNotFound, "404 not found")
			return
		}
		h.log.WithError(err).Error("load image failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.Data(http.StatusOK, img.Mime, img.Imgdata)
}
