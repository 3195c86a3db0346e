package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"isu-photo-board/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(post *model.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(id int) (*model.Post, error) {
	var post model.Post
	if err := r.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query post by id failed: %w", err)
	}
	return &post, nil
}

// ListDesc returns post stubs (no image payload) newest first. Reads are
// unbounded here; the page cap is assembly's job.
func (r *PostRepository) ListDesc() ([]model.Post, error) {
	var posts []model.Post
	err := r.db.
		Select("id", "user_id", "body", "mime", "created_at").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts failed: %w", err)
	}
	return posts, nil
}

// ListBeforeDesc returns post stubs with created_at <= max, newest first.
func (r *PostRepository) ListBeforeDesc(max time.Time) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.
		Select("id", "user_id", "body", "mime", "created_at").
		Where("created_at <= ?", max).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts before cursor failed: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) ListByUserDesc(userID int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.
		Select("id", "user_id", "body", "mime", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts by user failed: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) CountByUser(userID int) (int, error) {
	var count int64
	if err := r.db.Model(&model.Post{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count posts by user failed: %w", err)
	}
	return int(count), nil
}
