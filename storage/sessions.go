package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/redis/go-redis/v9"
)

type SessionStorage interface {
	Put(ctx context.Context, session *Session, ttl time.Duration) error
	Get(ctx context.Context, userID string) (*Session, error)
	Delete(ctx context.Context, userID string) error
}

type RedisSessionStorage struct {
	Client *redis.Client
}

func sessionKey(userID string) string {
	return "session:" + userID
}

func (s *RedisSessionStorage) Put(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		logging.Log.Errorf("SESSION: failed to marshal session: %v", err)
		return err
	}
	if err := s.Client.Set(ctx, sessionKey(session.UserID), payload, ttl).Err(); err != nil {
		logging.Log.Errorf("SESSION: failed to store session for %s: %v", session.UserID, err)
		return err
	}
	return nil
}

func (s *RedisSessionStorage) Get(ctx context.Context, userID string) (*Session, error) {
	payload, err := s.Client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		logging.Log.Errorf("SESSION: failed to read session for %s: %v", userID, err)
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		logging.Log.Errorf("SESSION: failed to unmarshal session: %v", err)
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStorage) Delete(ctx context.Context, userID string) error {
	if err := s.Client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		logging.Log.Errorf("SESSION: failed to delete session for %s: %v", userID, err)
		return err
	}
	return nil
}
