package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"isu-photo-board/internal/app"
	"isu-photo-board/internal/cache"
	"isu-photo-board/internal/model"
	"isu-photo-board/internal/session"
	"isu-photo-board/internal/transport/http/middleware"
)

// Inert store stubs behind the comment handler. Only the methods the
// comment path touches do anything.

type stubUserStore struct{}

func (stubUserStore) Create(*model.User) error                           { return nil }
func (stubUserStore) GetByID(int) (*model.User, error)                   { return nil, nil }
func (stubUserStore) GetActiveByAccountName(string) (*model.User, error) { return nil, nil }
func (stubUserStore) ExistsByAccountName(string) (bool, error)           { return false, nil }
func (stubUserStore) AuthorsByIDs([]int) (map[int]model.Author, error)   { return nil, nil }
func (stubUserStore) ListActiveNormal() ([]model.User, error)            { return nil, nil }
func (stubUserStore) Ban(int) error                                      { return nil }

type stubPostStore struct{ post model.Post }

func (s *stubPostStore) Create(*model.Post) error { return nil }
func (s *stubPostStore) GetByID(id int) (*model.Post, error) {
	if id == s.post.ID {
		copied := s.post
		return &copied, nil
	}
	return nil, nil
}
func (s *stubPostStore) ListDesc() ([]model.Post, error)                { return nil, nil }
func (s *stubPostStore) ListBeforeDesc(time.Time) ([]model.Post, error) { return nil, nil }
func (s *stubPostStore) ListByUserDesc(int) ([]model.Post, error)       { return nil, nil }
func (s *stubPostStore) CountByUser(int) (int, error)                   { return 0, nil }

type countingCommentStore struct{ created int }

func (s *countingCommentStore) Create(*model.Comment) error { s.created++; return nil }
func (s *countingCommentStore) CountsByPostIDs([]int) (map[int]int, error) {
	return nil, nil
}
func (s *countingCommentStore) ListByPostIDsDesc([]int) ([]model.CommentView, error) {
	return nil, nil
}
func (s *countingCommentStore) CountByUser(int) (int, error)      { return 0, nil }
func (s *countingCommentStore) CountOnUserPosts(int) (int, error) { return 0, nil }

type nopCache struct{}

func (nopCache) GetUser(context.Context, int) (*model.User, bool)     { return nil, false }
func (nopCache) SetUser(context.Context, *model.User)                 {}
func (nopCache) GetLogin(context.Context, string) (*model.User, bool) { return nil, false }
func (nopCache) SetLogin(context.Context, *model.User)                {}
func (nopCache) GetPosts(context.Context, string) ([]model.PostView, bool) {
	return nil, false
}
func (nopCache) SetPosts(context.Context, string, []model.PostView) {}
func (nopCache) GetUserPage(context.Context, string) (*cache.UserPageBundle, bool) {
	return nil, false
}
func (nopCache) SetUserPage(context.Context, string, *cache.UserPageBundle) {}
func (nopCache) GetImage(context.Context, int) (*cache.CachedImage, bool) {
	return nil, false
}
func (nopCache) SetImage(context.Context, int, *cache.CachedImage) {}
func (nopCache) Delete(context.Context, ...string)                 {}

const testCSRFToken = "csrf-token-for-tests"

// newCommentRouter wires POST /comment behind a middleware that resolves a
// fixed logged-in session, the way ResolveSession would.
func newCommentRouter(comments *countingCommentStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	posts := &stubPostStore{post: model.Post{ID: 1, UserID: 1, Mime: model.MimeJPEG}}
	svc := app.NewPostService(posts, comments, stubUserStore{}, nopCache{}, app.NewInvalidator(nil, nopCache{}, log), log, 10*1024*1024)
	h := NewCommentHandler(svc, log)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSessionKey, &session.Session{ID: "sid", UserID: 1, CSRFToken: testCSRFToken})
		c.Set(middleware.ContextUserKey, &model.User{ID: 1, AccountName: "alice"})
	})
	router.POST("/comment", h.PostComment)
	return router
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPostComment_CSRFMismatchRejectsWithoutMutation(t *testing.T) {
	t.Parallel()
	comments := &countingCommentStore{}
	router := newCommentRouter(comments)

	rec := postForm(router, "/comment", url.Values{
		"post_id":    {"1"},
		"comment":    {"hello"},
		"csrf_token": {"not-the-session-token"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, comments.created, "a rejected request must not create a comment")
}

func TestPostComment_MissingTokenRejected(t *testing.T) {
	t.Parallel()
	comments := &countingCommentStore{}
	router := newCommentRouter(comments)

	rec := postForm(router, "/comment", url.Values{
		"post_id": {"1"},
		"comment": {"hello"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, comments.created)
}

func TestPostComment_MatchingTokenCreates(t *testing.T) {
	t.Parallel()
	comments := &countingCommentStore{}
	router := newCommentRouter(comments)

	rec := postForm(router, "/comment", url.Values{
		"post_id":    {"1"},
		"comment":    {"hello"},
		"csrf_token": {testCSRFToken},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/1", rec.Header().Get("Location"))
	assert.Equal(t, 1, comments.created)
}
