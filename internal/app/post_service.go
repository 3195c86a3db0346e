package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/cache"
	"isu-photo-board/internal/model"
)

// PostsPerPage caps how many hydrated posts a listing returns. The cap is
// enforced here, not in SQL, so banned-author posts never consume page
// slots.
const PostsPerPage = 20

// recentCommentWindow is how many of the newest comments a listing row
// shows.
const recentCommentWindow = 3

type PostService struct {
	posts       PostStore
	comments    CommentStore
	users       UserStore
	cache       Cache
	invalidator *Invalidator
	log         *logrus.Logger
	uploadMax   int64
}

func NewPostService(posts PostStore, comments CommentStore, users UserStore, cache Cache, invalidator *Invalidator, log *logrus.Logger, uploadMax int64) *PostService {
	if uploadMax <= 0 {
		uploadMax = 10 * 1024 * 1024
	}
	return &PostService{
		posts:       posts,
		comments:    comments,
		users:       users,
		cache:       cache,
		invalidator: invalidator,
		log:         log,
		uploadMax:   uploadMax,
	}
}

// Assemble hydrates raw post rows into renderable views: author attached,
// comment_count totalled, a comment window selected. Posts whose author is
// banned are dropped entirely. Input order is preserved; output iteration
// never follows a map. In list contexts (wantAllComments == false) the
// result is capped at PostsPerPage and remaining input is not processed.
func (s *PostService) Assemble(raw []model.Post, wantAllComments bool) ([]model.PostView, error) {
	if len(raw) == 0 {
		return []model.PostView{}, nil
	}

	postIDs := make([]int, 0, len(raw))
	userIDs := make([]int, 0, len(raw))
	seenUser := make(map[int]bool, len(raw))
	for _, p := range raw {
		postIDs = append(postIDs, p.ID)
		if !seenUser[p.UserID] {
			seenUser[p.UserID] = true
			userIDs = append(userIDs, p.UserID)
		}
	}

	authors, err := s.users.AuthorsByIDs(userIDs)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	counts, err := s.comments.CountsByPostIDs(postIDs)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	commentRows, err := s.comments.ListByPostIDsDesc(postIDs)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	// Group newest-first rows per post. Appending in query order keeps the
	// per-post slices deterministic.
	commentsByPost := make(map[int][]model.CommentView, len(postIDs))
	for _, cm := range commentRows {
		commentsByPost[cm.PostID] = append(commentsByPost[cm.PostID], cm)
	}

	views := make([]model.PostView, 0, len(raw))
	for _, p := range raw {
		author, ok := authors[p.UserID]
		if !ok || author.DelFlg != model.DelFlgActive {
			// Banned or missing author: the post contributes nothing, not
			// even a consumed page slot.
			continue
		}

		all := commentsByPost[p.ID]
		var window []model.CommentView
		if wantAllComments {
			window = append(window, all...)
		} else {
			n := len(all)
			if n > recentCommentWindow {
				n = recentCommentWindow
			}
			// Newest n, flipped to chronological order for display.
			window = make([]model.CommentView, n)
			for i := 0; i < n; i++ {
				window[i] = all[n-1-i]
			}
		}

		views = append(views, model.PostView{
			ID:           p.ID,
			UserID:       p.UserID,
			Body:         p.Body,
			Mime:         p.Mime,
			CreatedAt:    p.CreatedAt,
			User:         author,
			CommentCount: counts[p.ID],
			Comments:     window,
		})

		if !wantAllComments && len(views) >= PostsPerPage {
			break
		}
	}
	return views, nil
}

// Index is the home feed: newest posts, assembled and capped, cached under
// posts:latest.
func (s *PostService) Index(ctx context.Context) ([]model.PostView, error) {
	if views, ok := s.cache.GetPosts(ctx, cache.PostsCursorLatest); ok {
		return views, nil
	}

	raw, err := s.posts.ListDesc()
	if err != nil {
		return nil, err
	}
	views, err := s.Assemble(raw, false)
	if err != nil {
		return nil, err
	}
	s.cache.SetPosts(ctx, cache.PostsCursorLatest, views)
	return views, nil
}

// Feed is the cursor listing behind GET /posts: posts created at or before
// max, assembled and capped.
func (s *PostService) Feed(ctx context.Context, max time.Time) ([]model.PostView, error) {
	cursor := "cursor:" + max.Format(time.RFC3339)
	if views, ok := s.cache.GetPosts(ctx, cursor); ok {
		return views, nil
	}

	raw, err := s.posts.ListBeforeDesc(max)
	if err != nil {
		return nil, err
	}
	views, err := s.Assemble(raw, false)
	if err != nil {
		return nil, err
	}
	s.cache.SetPosts(ctx, cursor, views)
	return views, nil
}

// Detail returns one post with its full comment list. A post whose author
// is banned is indistinguishable from a missing one.
func (s *PostService) Detail(ctx context.Context, postID int) (*model.PostView, error) {
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	views, err := s.Assemble([]model.Post{*post}, true)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

// UserPage builds the profile bundle for an active user: their assembled
// posts plus activity counts, cached under user_list:{account_name}.
func (s *PostService) UserPage(ctx context.Context, accountName string) (*cache.UserPageBundle, error) {
	if bundle, ok := s.cache.GetUserPage(ctx, accountName); ok {
		return bundle, nil
	}

	user, err := s.users.GetActiveByAccountName(accountName)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	raw, err := s.posts.ListByUserDesc(user.ID)
	if err != nil {
		return nil, err
	}
	views, err := s.Assemble(raw, false)
	if err != nil {
		return nil, err
	}

	postCount, err := s.posts.CountByUser(user.ID)
	if err != nil {
		return nil, err
	}
	commentCount, err := s.comments.CountByUser(user.ID)
	if err != nil {
		return nil, err
	}
	commentedCount, err := s.comments.CountOnUserPosts(user.ID)
	if err != nil {
		return nil, err
	}

	bundle := &cache.UserPageBundle{
		User:           *user,
		Posts:          views,
		PostCount:      postCount,
		CommentCount:   commentCount,
		CommentedCount: commentedCount,
	}
	s.cache.SetUserPage(ctx, accountName, bundle)
	return bundle, nil
}

// CreatePost stores an upload after mime and size checks. Nothing is
// written when either check fails.
func (s *PostService) CreatePost(ctx context.Context, author *model.User, mime, body string, imgdata []byte) (*model.Post, error) {
	if len(imgdata) == 0 {
		return nil, ErrMissingImage
	}
	if !model.ValidMime(mime) {
		return nil, ErrInvalidMime
	}
	if int64(len(imgdata)) > s.uploadMax {
		return nil, ErrImageTooLarge
	}

	post := &model.Post{
		UserID:  author.ID,
		Mime:    mime,
		Body:    body,
		Imgdata: imgdata,
	}
	if err := s.posts.Create(post); err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx,
		cache.PostsKey(cache.PostsCursorLatest),
		cache.UserListKey(author.AccountName),
	)
	return post, nil
}

// CreateComment appends a comment to an existing post.
func (s *PostService) CreateComment(ctx context.Context, userID, postID int, text string) error {
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  userID,
		Comment: text,
	}
	if err := s.comments.Create(comment); err != nil {
		return err
	}

	// Point invalidation of the keys this write can name. The author's
	// user_list bundle is left to its TTL.
	s.invalidator.Invalidate(ctx, cache.PostsKey(cache.PostsCursorLatest))
	return nil
}

// Image serves the raw blob for /image/:id.:ext. The extension must match
// the stored mime or the image does not exist, cache hit or not.
func (s *PostService) Image(ctx context.Context, postID int, ext string) (*cache.CachedImage, error) {
	if img, ok := s.cache.GetImage(ctx, postID); ok {
		if model.ExtForMime(img.Mime) != ext {
			return nil, ErrNotFound
		}
		return img, nil
	}

	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	img := &cache.CachedImage{Mime: post.Mime, Imgdata: post.Imgdata}
	// Posts are immutable, so the blob can outlive the short caches.
	s.cache.SetImage(ctx, postID, img)

	if model.ExtForMime(post.Mime) != ext {
		return nil, ErrNotFound
	}
	return img, nil
}
