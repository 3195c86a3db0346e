package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"isu-photo-board/internal/repository"
)

type InitializeHandler struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewInitializeHandler(db *gorm.DB, log *logrus.Logger) *InitializeHandler {
	return &InitializeHandler{db: db, log: log}
}

// GetInitialize resets the store to the benchmark fixture. Destructive by
// design; only the test harness calls it.
func (h *InitializeHandler) GetInitialize(c *gin.Context) {
	if err := repository.Initialize(h.db); err != nil {
		h.log.WithError(err).Error("initialize failed")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.String(http.StatusOK, "")
}
