package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"isu-photo-board/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id int) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

// GetActiveByAccountName returns the non-banned user with the given account
// name, or nil when absent. Banned users are invisible to login and profile
// lookups alike.
func (r *UserRepository) GetActiveByAccountName(accountName string) (*model.User, error) {
	var user model.User
	err := r.db.Where("account_name = ? AND del_flg = ?", accountName, model.DelFlgActive).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by account name failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByAccountName(accountName string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("account_name = ?", accountName).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users by account name failed: %w", err)
	}
	return count > 0, nil
}

// AuthorsByIDs batch-fetches the author slices for a set of user ids in one
// query, keyed by user id.
func (r *UserRepository) AuthorsByIDs(ids []int) (map[int]model.Author, error) {
	authors := make(map[int]model.Author, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	var users []model.User
	if err := r.db.Select("id", "account_name", "del_flg").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("batch query authors failed: %w", err)
	}
	for _, u := range users {
		authors[u.ID] = model.Author{
			ID:          u.ID,
			AccountName: u.AccountName,
			DelFlg:      u.DelFlg,
		}
	}
	return authors, nil
}

// ListActiveNormal lists non-admin, non-banned users, newest first. This is
// the admin ban page's candidate list.
func (r *UserRepository) ListActiveNormal() ([]model.User, error) {
	var users []model.User
	err := r.db.
		Where("authority = ? AND del_flg = ?", model.AuthorityNormal, model.DelFlgActive).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list bannable users failed: %w", err)
	}
	return users, nil
}

// Ban soft-deletes a user. The row stays; listings hide it from the next
// uncached read onward.
func (r *UserRepository) Ban(id int) error {
	err := r.db.Model(&model.User{}).Where("id = ?", id).Update("del_flg", model.DelFlgBanned).Error
	if err != nil {
		return fmt.Errorf("ban user failed: %w", err)
	}
	return nil
}
