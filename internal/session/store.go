// Package session keeps login sessions in Redis. The browser only ever
// holds an opaque session id (signed into a cookie elsewhere); the record
// behind it carries the user id and the per-session CSRF token.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

type Session struct {
	ID        string `json:"id"`
	UserID    int    `json:"user_id"`
	CSRFToken string `json:"csrf_token"`
}

type Store struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewStore(client *redisv9.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// Create opens a fresh session for the user: new random id, new CSRF token.
// Logins never reuse an existing session record.
func (s *Store) Create(ctx context.Context, userID int) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CSRFToken: uuid.NewString(),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session failed: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session failed: %w", err)
	}
	return sess, nil
}

// Get resolves a session id. A missing or expired session returns nil, not
// an error; the caller treats that as anonymous.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session failed: %w", err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &sess, nil
}

// Destroy ends the session. Logout after this point resolves to anonymous.
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("destroy session failed: %w", err)
	}
	return nil
}

func (s *Store) key(sessionID string) string {
	return "session:" + sessionID
}
