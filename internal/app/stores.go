package app

import (
	"context"
	"time"

	"isu-photo-board/internal/cache"
	"isu-photo-board/internal/model"
)

// Store interfaces cover exactly what the services call. The gorm
// repositories satisfy them; tests substitute in-memory fakes.

type UserStore interface {
	Create(user *model.User) error
	GetByID(id int) (*model.User, error)
	GetActiveByAccountName(accountName string) (*model.User, error)
	ExistsByAccountName(accountName string) (bool, error)
	AuthorsByIDs(ids []int) (map[int]model.Author, error)
	ListActiveNormal() ([]model.User, error)
	Ban(id int) error
}

type PostStore interface {
	Create(post *model.Post) error
	GetByID(id int) (*model.Post, error)
	ListDesc() ([]model.Post, error)
	ListBeforeDesc(max time.Time) ([]model.Post, error)
	ListByUserDesc(userID int) ([]model.Post, error)
	CountByUser(userID int) (int, error)
}

type CommentStore interface {
	Create(comment *model.Comment) error
	CountsByPostIDs(postIDs []int) (map[int]int, error)
	ListByPostIDsDesc(postIDs []int) ([]model.CommentView, error)
	CountByUser(userID int) (int, error)
	CountOnUserPosts(userID int) (int, error)
}

// Cache is the slice of the board cache the services touch. All methods are
// best-effort; implementations must degrade silently.
type Cache interface {
	GetUser(ctx context.Context, id int) (*model.User, bool)
	SetUser(ctx context.Context, user *model.User)
	GetLogin(ctx context.Context, accountName string) (*model.User, bool)
	SetLogin(ctx context.Context, user *model.User)
	GetPosts(ctx context.Context, cursor string) ([]model.PostView, bool)
	SetPosts(ctx context.Context, cursor string, posts []model.PostView)
	GetUserPage(ctx context.Context, accountName string) (*cache.UserPageBundle, bool)
	SetUserPage(ctx context.Context, accountName string, bundle *cache.UserPageBundle)
	GetImage(ctx context.Context, postID int) (*cache.CachedImage, bool)
	SetImage(ctx context.Context, postID int, img *cache.CachedImage)
	Delete(ctx context.Context, keys ...string)
}
