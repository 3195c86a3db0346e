package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/cache"
	"isu-photo-board/internal/model"
)

type AdminService struct {
	users       UserStore
	invalidator *Invalidator
	log         *logrus.Logger
}

func NewAdminService(users UserStore, invalidator *Invalidator, log *logrus.Logger) *AdminService {
	return &AdminService{
		users:       users,
		invalidator: invalidator,
		log:         log,
	}
}

// ListBannable returns the normal, active users shown on the ban page.
func (s *AdminService) ListBannable(ctx context.Context) ([]model.User, error) {
	return s.users.ListActiveNormal()
}

// BanUsers flips del_flg for each id and invalidates every key the ban can
// name. Each UPDATE is its own atomic statement; a ban list is not a
// transaction.
func (s *AdminService) BanUsers(ctx context.Context, ids []int) error {
	keys := []string{cache.PostsKey(cache.PostsCursorLatest)}
	// A later id can fail mid-loop; bans already applied still get their
	// point invalidation instead of lingering for the full TTL.
	defer func() { s.invalidator.Invalidate(ctx, keys...) }()
	for _, id := range ids {
		user, err := s.users.GetByID(id)
		if err != nil {
			return err
		}
		if user == nil {
			continue
		}
		if err := s.users.Ban(id); err != nil {
			return err
		}
		keys = append(keys,
			cache.UserKey(id),
			cache.LoginKey(user.AccountName),
			cache.UserListKey(user.AccountName),
		)
	}
	return nil
}
