package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"awareness-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AttemptStore keeps attempts in Redis as JSON under attempt:{key} with a
// TTL, so abandoned attempts expire on their own. Each save refreshes the
// TTL; an attempt only needs to outlive an active recipient.
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: ttl}
}

func (s *AttemptStore) Get(ctx context.Context, key string) (domain.Attempt, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("get attempt: %w", err)
	}
	var attempt domain.Attempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("unmarshal attempt: %w", err)
	}
	if attempt.Answers == nil {
		attempt.Answers = make(map[int]int)
	}
	return attempt, nil
}

func (s *AttemptStore) Save(ctx context.Context, key string, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *AttemptStore) key(key string) string {
	return "attempt:" + key
}
