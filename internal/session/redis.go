package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists wizard sessions so drafts survive restarts. Keys
// expire after the configured TTL; an expired session simply restarts
// the wizard.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "flow:session:" + id
}

func (s *RedisStore) Save(ctx context.Context, id string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	return s.client.Set(ctx, sessionKey(id), payload, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

var _ Store = (*RedisStore)(nil)
