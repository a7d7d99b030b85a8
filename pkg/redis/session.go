package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SessionStore keeps login sessions alive in Redis. A token that names a
// session is only honoured while the session key exists.
type SessionStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *goredis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return sessionPrefix + id.String()
}

// TTL is how long a session lives without being touched.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create opens a session for userID and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	if err := s.rdb.Set(ctx, sessionKey(id), userID.String(), s.ttl).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("redis: create session: %w", err)
	}
	return id, nil
}

// Active reports whether the session exists.
func (s *SessionStore) Active(ctx context.Context, id uuid.UUID) (bool, error) {
	err := s.rdb.Get(ctx, sessionKey(id)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, goredis.Nil):
		return false, nil
	}
	return false, fmt.Errorf("redis: check session: %w", err)
}

func (s *SessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: revoke session: %w", err)
	}
	return nil
}
