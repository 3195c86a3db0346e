package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/model"
	"isu-photo-board/internal/pkg/passhash"
)

type AuthService struct {
	users UserStore
	cache Cache
	log   *logrus.Logger
}

func NewAuthService(users UserStore, cache Cache, log *logrus.Logger) *AuthService {
	return &AuthService{
		users: users,
		cache: cache,
		log:   log,
	}
}

// Register validates the credentials before any store access, rejects taken
// account names, and creates the user.
func (s *AuthService) Register(ctx context.Context, accountName, password string) (*model.User, error) {
	if !passhash.ValidAccountName(accountName) || !passhash.ValidPassword(password) {
		return nil, ErrInvalidInput
	}

	taken, err := s.users.ExistsByAccountName(accountName)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrAccountTaken
	}

	user := &model.User{
		AccountName: accountName,
		Passhash:    passhash.Calculate(accountName, password),
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("register user failed: %w", err)
	}
	return user, nil
}

// Authenticate resolves an active user by account name, consulting the
// login cache first, and compares the salted hash. Failure is uniform: the
// caller cannot tell a missing account from a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, accountName, password string) (*model.User, error) {
	user, hit := s.cache.GetLogin(ctx, accountName)
	if !hit {
		stored, err := s.users.GetActiveByAccountName(accountName)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, ErrInvalidCredential
		}
		user = stored
	}

	if passhash.Calculate(user.AccountName, password) != user.Passhash {
		return nil, ErrInvalidCredential
	}

	if !hit {
		s.cache.SetLogin(ctx, user)
	}
	// A login is a fresh derivation; reseed the session-user entry too.
	s.cache.SetUser(ctx, user)
	return user, nil
}

// SessionUser maps a session's user id to the current user row,
// cache-first. Returns nil (anonymous) for an unknown id. The short TTL
// means a concurrent ban can go unseen for up to one cache window; that is
// the documented consistency model, not a defect.
func (s *AuthService) SessionUser(ctx context.Context, userID int) (*model.User, error) {
	if userID <= 0 {
		return nil, nil
	}
	if user, ok := s.cache.GetUser(ctx, userID); ok {
		return user, nil
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	s.cache.SetUser(ctx, user)
	return user, nil
}
