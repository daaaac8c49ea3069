package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store keeps session records in Redis: "session:<uuid>" -> user id,
// with a TTL. Logout deletes the record, which revokes the cookie.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create opens a new session for userID and returns its id.
func (s *Store) Create(ctx context.Context, userID uint) (string, error) {
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, key(id), uint64(userID), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return id, nil
}

// Lookup resolves a session id to the user it belongs to.
func (s *Store) Lookup(ctx context.Context, id string) (uint, error) {
	userID, err := s.rdb.Get(ctx, key(id)).Uint64()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("looking up session: %w", err)
	}
	return uint(userID), nil
}

// Destroy removes a session. Destroying an unknown id is not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

// TTL is the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func key(id string) string {
	return "session:" + id
}
