package app

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/cache"
	"isu-photo-board/internal/model"
)

// fixture is the shared in-memory store behind the fake repositories.
type fixture struct {
	users    map[int]model.User
	posts    []model.Post
	comments []model.Comment

	nextUserID    int
	nextPostID    int
	nextCommentID int

	queryCount int
}

func newFixture() *fixture {
	return &fixture{
		users:         make(map[int]model.User),
		nextUserID:    1,
		nextPostID:    1,
		nextCommentID: 1,
	}
}

func (f *fixture) addUser(accountName string, authority, delFlg int) model.User {
	u := model.User{
		ID:          f.nextUserID,
		AccountName: accountName,
		Authority:   authority,
		DelFlg:      delFlg,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.nextUserID) * time.Minute),
	}
	f.nextUserID++
	f.users[u.ID] = u
	return u
}

func (f *fixture) addPost(userID int, body string, createdAt time.Time) model.Post {
	p := model.Post{
		ID:        f.nextPostID,
		UserID:    userID,
		Body:      body,
		Mime:      model.MimeJPEG,
		Imgdata:   []byte{0xff, 0xd8},
		CreatedAt: createdAt,
	}
	f.nextPostID++
	f.posts = append(f.posts, p)
	return p
}

func (f *fixture) addComment(postID, userID int, text string, createdAt time.Time) model.Comment {
	c := model.Comment{
		ID:        f.nextCommentID,
		PostID:    postID,
		UserID:    userID,
		Comment:   text,
		CreatedAt: createdAt,
	}
	f.nextCommentID++
	f.comments = append(f.comments, c)
	return c
}

type fakeUserStore struct{ fx *fixture }

func (s *fakeUserStore) Create(user *model.User) error {
	s.fx.queryCount++
	user.ID = s.fx.nextUserID
	s.fx.nextUserID++
	user.CreatedAt = time.Now()
	s.fx.users[user.ID] = *user
	return nil
}

func (s *fakeUserStore) GetByID(id int) (*model.User, error) {
	s.fx.queryCount++
	u, ok := s.fx.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *fakeUserStore) GetActiveByAccountName(accountName string) (*model.User, error) {
	s.fx.queryCount++
	for _, u := range s.fx.users {
		if u.AccountName == accountName && u.DelFlg == model.DelFlgActive {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) ExistsByAccountName(accountName string) (bool, error) {
	s.fx.queryCount++
	for _, u := range s.fx.users {
		if u.AccountName == accountName {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) AuthorsByIDs(ids []int) (map[int]model.Author, error) {
	s.fx.queryCount++
	authors := make(map[int]model.Author, len(ids))
	for _, id := range ids {
		if u, ok := s.fx.users[id]; ok {
			authors[id] = model.Author{ID: u.ID, AccountName: u.AccountName, DelFlg: u.DelFlg}
		}
	}
	return authors, nil
}

func (s *fakeUserStore) ListActiveNormal() ([]model.User, error) {
	s.fx.queryCount++
	var users []model.User
	for _, u := range s.fx.users {
		if u.Authority == model.AuthorityNormal && u.DelFlg == model.DelFlgActive {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *fakeUserStore) Ban(id int) error {
	s.fx.queryCount++
	u, ok := s.fx.users[id]
	if !ok {
		return nil
	}
	u.DelFlg = model.DelFlgBanned
	s.fx.users[id] = u
	return nil
}

type fakePostStore struct{ fx *fixture }

func (s *fakePostStore) Create(post *model.Post) error {
	s.fx.queryCount++
	post.ID = s.fx.nextPostID
	s.fx.nextPostID++
	post.CreatedAt = time.Now()
	s.fx.posts = append(s.fx.posts, *post)
	return nil
}

func (s *fakePostStore) GetByID(id int) (*model.Post, error) {
	s.fx.queryCount++
	for _, p := range s.fx.posts {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakePostStore) ListDesc() ([]model.Post, error) {
	s.fx.queryCount++
	out := make([]model.Post, len(s.fx.posts))
	copy(out, s.fx.posts)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakePostStore) ListBeforeDesc(max time.Time) ([]model.Post, error) {
	all, err := s.ListDesc()
	if err != nil {
		return nil, err
	}
	var out []model.Post
	for _, p := range all {
		if !p.CreatedAt.After(max) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePostStore) ListByUserDesc(userID int) ([]model.Post, error) {
	all, err := s.ListDesc()
	if err != nil {
		return nil, err
	}
	var out []model.Post
	for _, p := range all {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePostStore) CountByUser(userID int) (int, error) {
	s.fx.queryCount++
	n := 0
	for _, p := range s.fx.posts {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeCommentStore struct{ fx *fixture }

func (s *fakeCommentStore) Create(comment *model.Comment) error {
	s.fx.queryCount++
	comment.ID = s.fx.nextCommentID
	s.fx.nextCommentID++
	comment.CreatedAt = time.Now()
	s.fx.comments = append(s.fx.comments, *comment)
	return nil
}

func (s *fakeCommentStore) CountsByPostIDs(postIDs []int) (map[int]int, error) {
	s.fx.queryCount++
	want := make(map[int]bool, len(postIDs))
	for _, id := range postIDs {
		want[id] = true
	}
	counts := make(map[int]int)
	for _, c := range s.fx.comments {
		if want[c.PostID] {
			counts[c.PostID]++
		}
	}
	return counts, nil
}

func (s *fakeCommentStore) ListByPostIDsDesc(postIDs []int) ([]model.CommentView, error) {
	s.fx.queryCount++
	want := make(map[int]bool, len(postIDs))
	for _, id := range postIDs {
		want[id] = true
	}
	var rows []model.Comment
	for _, c := range s.fx.comments {
		if want[c.PostID] {
			rows = append(rows, c)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	views := make([]model.CommentView, 0, len(rows))
	for _, c := range rows {
		u := s.fx.users[c.UserID]
		views = append(views, model.CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			Comment:   c.Comment,
			CreatedAt: c.CreatedAt,
			User:      model.Author{ID: u.ID, AccountName: u.AccountName, DelFlg: u.DelFlg},
		})
	}
	return views, nil
}

func (s *fakeCommentStore) CountByUser(userID int) (int, error) {
	s.fx.queryCount++
	n := 0
	for _, c := range s.fx.comments {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *fakeCommentStore) CountOnUserPosts(userID int) (int, error) {
	s.fx.queryCount++
	owned := make(map[int]bool)
	for _, p := range s.fx.posts {
		if p.UserID == userID {
			owned[p.ID] = true
		}
	}
	n := 0
	for _, c := range s.fx.comments {
		if owned[c.PostID] {
			n++
		}
	}
	return n, nil
}

// fakeCache is a TTL-less in-memory stand-in for the Redis cache. Login
// entries round-trip through the same JSON payload the real cache writes,
// so a hit decodes exactly what Redis would hand back. Deleted keys are
// recorded so tests can assert invalidations.
type fakeCache struct {
	users   map[int]*model.User
	logins  map[string][]byte
	posts   map[string][]model.PostView
	pages   map[string]*cache.UserPageBundle
	images  map[int]*cache.CachedImage
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		users:  make(map[int]*model.User),
		logins: make(map[string][]byte),
		posts:  make(map[string][]model.PostView),
		pages:  make(map[string]*cache.UserPageBundle),
		images: make(map[int]*cache.CachedImage),
	}
}

func (c *fakeCache) GetUser(_ context.Context, id int) (*model.User, bool) {
	u, ok := c.users[id]
	return u, ok
}
func (c *fakeCache) SetUser(_ context.Context, user *model.User) {
	copied := *user
	c.users[user.ID] = &copied
}
func (c *fakeCache) GetLogin(_ context.Context, accountName string) (*model.User, bool) {
	raw, ok := c.logins[accountName]
	if !ok {
		return nil, false
	}
	var rec cache.LoginRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return rec.Resolve(), true
}
func (c *fakeCache) SetLogin(_ context.Context, user *model.User) {
	raw, err := json.Marshal(cache.NewLoginRecord(user))
	if err != nil {
		return
	}
	c.logins[user.AccountName] = raw
}
func (c *fakeCache) GetPosts(_ context.Context, cursor string) ([]model.PostView, bool) {
	v, ok := c.posts[cursor]
	return v, ok
}
func (c *fakeCache) SetPosts(_ context.Context, cursor string, views []model.PostView) {
	c.posts[cursor] = views
}
func (c *fakeCache) GetUserPage(_ context.Context, accountName string) (*cache.UserPageBundle, bool) {
	b, ok := c.pages[accountName]
	return b, ok
}
func (c *fakeCache) SetUserPage(_ context.Context, accountName string, bundle *cache.UserPageBundle) {
	c.pages[accountName] = bundle
}
func (c *fakeCache) GetImage(_ context.Context, postID int) (*cache.CachedImage, bool) {
	img, ok := c.images[postID]
	return img, ok
}
func (c *fakeCache) SetImage(_ context.Context, postID int, img *cache.CachedImage) {
	c.images[postID] = img
}
func (c *fakeCache) Delete(_ context.Context, keys ...string) {
	c.deleted = append(c.deleted, keys...)
	for _, key := range keys {
		if strings.HasPrefix(key, "posts:") {
			delete(c.posts, strings.TrimPrefix(key, "posts:"))
		}
		for name := range c.pages {
			if key == cache.UserListKey(name) {
				delete(c.pages, name)
			}
		}
		for id := range c.users {
			if key == cache.UserKey(id) {
				delete(c.users, id)
			}
		}
		for name := range c.logins {
			if key == cache.LoginKey(name) {
				delete(c.logins, name)
			}
		}
	}
}

type testEnv struct {
	fx       *fixture
	users    *fakeUserStore
	posts    *fakePostStore
	comments *fakeCommentStore
	cache    *fakeCache
	auth     *AuthService
	board    *PostService
	admin    *AdminService
}

func newTestEnv() *testEnv {
	fx := newFixture()
	users := &fakeUserStore{fx: fx}
	posts := &fakePostStore{fx: fx}
	comments := &fakeCommentStore{fx: fx}
	fc := newFakeCache()
	log := logrus.New()
	inv := NewInvalidator(nil, fc, log)
	return &testEnv{
		fx:       fx,
		users:    users,
		posts:    posts,
		comments: comments,
		cache:    fc,
		auth:     NewAuthService(users, fc, log),
		board:    NewPostService(posts, comments, users, fc, inv, log, 10*1024*1024),
		admin:    NewAdminService(users, inv, log),
	}
}
