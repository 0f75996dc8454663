package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "claimwise:session:"

var (
	errMissingID   = errors.New("session: missing session_id")
	errIDCollision = errors.New("session: id already in use")
)

// RedisStore keeps one JSON value per session. Keys expire with the
// session, so abandoned sessions need no sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

// encode returns the payload and the remaining lifetime of s.
func encode(s Session) ([]byte, time.Duration, error) {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil, 0, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, 0, fmt.Errorf("session: marshal: %w", err)
	}
	return data, ttl, nil
}

func (r *RedisStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.UserID == "" {
		return errors.New("session: missing session_id or user_id")
	}

	data, ttl, err := encode(s)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return errors.New("session: expires_at must be in the future")
	}

	created, err := r.client.SetNX(ctx, key(s.SessionID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("session: create: %w", err)
	}
	if !created {
		return errIDCollision
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := r.client.Get(ctx, key(sessionID)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("session: get: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &s, nil
}

// Update rewrites a live session. It never recreates a deleted one, and
// an already expired session is removed instead.
func (r *RedisStore) Update(ctx context.Context, s Session) error {
	if s.SessionID == "" {
		return errMissingID
	}

	data, ttl, err := encode(s)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return r.Delete(ctx, s.SessionID)
	}

	if err := r.client.SetXX(ctx, key(s.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("session: update: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
