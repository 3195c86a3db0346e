package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "board_notice"

// setFlash stores a one-shot notice for the page after a redirect.
func setFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookieName, url.QueryEscape(message), 60, "/", "", false, true)
}

// popFlash reads and clears the pending notice.
func popFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}
