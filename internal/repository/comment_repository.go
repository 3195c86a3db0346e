package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"isu-photo-board/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return fmt.Errorf("create comment failed: %w", err)
	}
	return nil
}

// CountsByPostIDs returns the total comment count per post in one query.
// Counts include comments by since-banned users.
func (r *CommentRepository) CountsByPostIDs(postIDs []int) (map[int]int, error) {
	counts := make(map[int]int, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	type countRow struct {
		PostID int
		N      int
	}
	var rows []countRow
	err := r.db.Model(&model.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("batch count comments failed: %w", err)
	}
	for _, row := range rows {
		counts[row.PostID] = row.N
	}
	return counts, nil
}

// ListByPostIDsDesc fetches every comment for the given posts in one query,
// joined with its commenter, newest first. The id tie-break keeps equal
// timestamps in insertion order so repeated reads group identically.
func (r *CommentRepository) ListByPostIDsDesc(postIDs []int) ([]model.CommentView, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	type row struct {
		ID              int
		PostID          int
		Comment         string
		CreatedAt       time.Time
		CommenterID     int
		CommenterName   string
		CommenterDelFlg int
	}
	var rows []row
	err := r.db.Raw(`
		SELECT
			c.id           AS id,
			c.post_id      AS post_id,
			c.comment      AS comment,
			c.created_at   AS created_at,
			u.id           AS commenter_id,
			u.account_name AS commenter_name,
			u.del_flg      AS commenter_del_flg
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id IN ?
		ORDER BY c.created_at DESC, c.id DESC`, postIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("batch query comments failed: %w", err)
	}

	views := make([]model.CommentView, 0, len(rows))
	for _, cr := range rows {
		views = append(views, model.CommentView{
			ID:        cr.ID,
			PostID:    cr.PostID,
			Comment:   cr.Comment,
			CreatedAt: cr.CreatedAt,
			User: model.Author{
				ID:          cr.CommenterID,
				AccountName: cr.CommenterName,
				DelFlg:      cr.CommenterDelFlg,
			},
		})
	}
	return views, nil
}

func (r *CommentRepository) CountByUser(userID int) (int, error) {
	var count int64
	if err := r.db.Model(&model.Comment{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count comments by user failed: %w", err)
	}
	return int(count), nil
}

// CountOnUserPosts counts comments received across all of a user's posts.
func (r *CommentRepository) CountOnUserPosts(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("post_id IN (?)", r.db.Model(&model.Post{}).Select("id").Where("user_id = ?", userID)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count comments on user posts failed: %w", err)
	}
	return int(count), nil
}
