// Package cache is the look-aside layer in front of MySQL. Entries are
// disposable JSON projections with a TTL, never authoritative. Any Redis
// failure degrades to a miss (reads) or a no-op (writes); the store stays
// the source of truth and the user never sees a cache error.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/model"
)

// Key namespaces. Writers invalidate the exact keys they can name; derived
// keys they cannot name simply age out.
func LoginKey(accountName string) string { return "login:" + accountName }
func UserKey(id int) string              { return fmt.Sprintf("user:%d", id) }
func PostsKey(cursor string) string      { return "posts:" + cursor }
func UserListKey(accountName string) string {
	return "user_list:" + accountName
}
func ImageKey(id int) string { return fmt.Sprintf("image:%d", id) }

// PostsCursorLatest keys the uncursored index feed.
const PostsCursorLatest = "latest"

// CachedImage is the image:{id} payload. Immutable once written, hence the
// long TTL.
type CachedImage struct {
	Mime    string `json:"mime"`
	Imgdata []byte `json:"imgdata"`
}

// UserPageBundle is the user_list:{account_name} payload.
type UserPageBundle struct {
	User           model.User       `json:"user"`
	Posts          []model.PostView `json:"posts"`
	PostCount      int              `json:"post_count"`
	CommentCount   int              `json:"comment_count"`
	CommentedCount int              `json:"commented_count"`
}

// LoginRecord is the login:{account_name} payload. model.User keeps its
// passhash out of every JSON projection, so the record carries the hash
// beside the row; a login cache hit has to replay the credential check.
type LoginRecord struct {
	User     model.User `json:"user"`
	Passhash string     `json:"passhash"`
}

func NewLoginRecord(user *model.User) LoginRecord {
	return LoginRecord{User: *user, Passhash: user.Passhash}
}

// Resolve rebuilds the user row with the hash restored.
func (r LoginRecord) Resolve() *model.User {
	user := r.User
	user.Passhash = r.Passhash
	return &user
}

type BoardCache struct {
	client    *redisv9.Client
	log       *logrus.Logger
	shortTTL  time.Duration
	mediumTTL time.Duration
	imageTTL  time.Duration
}

func NewBoardCache(client *redisv9.Client, log *logrus.Logger, shortTTL, mediumTTL, imageTTL time.Duration) *BoardCache {
	if shortTTL <= 0 {
		shortTTL = 60 * time.Second
	}
	if mediumTTL <= 0 {
		mediumTTL = 5 * time.Minute
	}
	if imageTTL <= 0 {
		imageTTL = 24 * time.Hour
	}
	return &BoardCache{
		client:    client,
		log:       log,
		shortTTL:  shortTTL,
		mediumTTL: mediumTTL,
		imageTTL:  imageTTL,
	}
}

func (c *BoardCache) GetUser(ctx context.Context, id int) (*model.User, bool) {
	var user model.User
	if !c.get(ctx, UserKey(id), &user) {
		return nil, false
	}
	return &user, true
}

func (c *BoardCache) SetUser(ctx context.Context, user *model.User) {
	c.set(ctx, UserKey(user.ID), user, c.shortTTL)
}

func (c *BoardCache) GetLogin(ctx context.Context, accountName string) (*model.User, bool) {
	var rec LoginRecord
	if !c.get(ctx, LoginKey(accountName), &rec) {
		return nil, false
	}
	if rec.Passhash == "" {
		// An entry without a hash can never satisfy a credential check.
		return nil, false
	}
	return rec.Resolve(), true
}

func (c *BoardCache) SetLogin(ctx context.Context, user *model.User) {
	c.set(ctx, LoginKey(user.AccountName), NewLoginRecord(user), c.shortTTL)
}

func (c *BoardCache) GetPosts(ctx context.Context, cursor string) ([]model.PostView, bool) {
	var posts []model.PostView
	if !c.get(ctx, PostsKey(cursor), &posts) {
		return nil, false
	}
	return posts, true
}

func (c *BoardCache) SetPosts(ctx context.Context, cursor string, posts []model.PostView) {
	c.set(ctx, PostsKey(cursor), posts, c.shortTTL)
}

func (c *BoardCache) GetUserPage(ctx context.Context, accountName string) (*UserPageBundle, bool) {
	var bundle UserPageBundle
	if !c.get(ctx, UserListKey(accountName), &bundle) {
		return nil, false
	}
	return &bundle, true
}

func (c *BoardCache) SetUserPage(ctx context.Context, accountName string, bundle *UserPageBundle) {
	c.set(ctx, UserListKey(accountName), bundle, c.mediumTTL)
}

func (c *BoardCache) GetImage(ctx context.Context, postID int) (*CachedImage, bool) {
	var img CachedImage
	if !c.get(ctx, ImageKey(postID), &img) {
		return nil, false
	}
	return &img, true
}

func (c *BoardCache) SetImage(ctx context.Context, postID int, img *CachedImage) {
	c.set(ctx, ImageKey(postID), img, c.imageTTL)
}

// Delete drops the named keys, best-effort.
func (c *BoardCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.WithError(err).WithField("keys", keys).Warn("cache delete failed")
	}
}

func (c *BoardCache) get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache get failed, treating as miss")
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache entry corrupt, treating as miss")
		return false
	}
	return true
}

func (c *BoardCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}
