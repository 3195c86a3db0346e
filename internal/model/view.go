package model

import (
	"strconv"
	"time"
)

// Author is the slice of a user row that listings need. Passhash never
// travels into a view or a cache entry.
type Author struct {
	ID          int    `json:"id"`
	AccountName string `json:"account_name"`
	DelFlg      int    `json:"del_flg"`
}

type CommentView struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	Comment   string    `json:"comment"`
	User      Author    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView is a fully hydrated post ready for rendering: the post row plus
// its author, total comment count and attached comment window.
type PostView struct {
	ID           int           `json:"id"`
	UserID       int           `json:"user_id"`
	Body         string        `json:"body"`
	Mime         string        `json:"mime"`
	CreatedAt    time.Time     `json:"created_at"`
	User         Author        `json:"user"`
	CommentCount int           `json:"comment_count"`
	Comments     []CommentView `json:"comments"`
}

// ImageURL renders the canonical image path for this post.
func (p PostView) ImageURL() string {
	ext := ExtForMime(p.Mime)
	if ext == "" {
		return ""
	}
	return "/image/" + strconv.Itoa(p.ID) + "." + ext
}
