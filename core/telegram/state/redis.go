package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "conversation:"

// RedisStore keeps conversations in Redis so they survive restarts. Expiry is
// delegated to Redis: every write refreshes the key TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func redisKey(user int64) string {
	return redisKeyPrefix + strconv.FormatInt(user, 10)
}

func (s *RedisStore) Start(ctx context.Context, user int64, step Step, patches ...Patch) error {
	if step == "" {
		return ErrEmptyStep
	}
	return s.put(ctx, user, newConversation(step, s.now(), patches))
}

func (s *RedisStore) Get(ctx context.Context, user int64) (*Conversation, error) {
	data, err := s.client.Get(ctx, redisKey(user)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoConversation
	}
	if err != nil {
		return nil, fmt.Errorf("state: redis get: %w", err)
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("state: decode conversation: %w", err)
	}
	return &conv, nil
}

// Advance reads, patches and writes back the record. Updates of one user are
// serialised by the busy guard, so no optimistic locking is done here.
func (s *RedisStore) Advance(ctx context.Context, user int64, step Step, patches ...Patch) error {
	conv, err := s.Get(ctx, user)
	if err != nil {
		return err
	}
	apply(conv, patches)
	if step != "" {
		conv.Step = step
	}
	conv.UpdatedAt = s.now()
	return s.put(ctx, user, conv)
}

func (s *RedisStore) End(ctx context.Context, user int64) error {
	if err := s.client.Del(ctx, redisKey(user)).Err(); err != nil {
		return fmt.Errorf("state: redis del: %w", err)
	}
	return nil
}

// Active counts live conversation keys.
func (s *RedisStore) Active(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("state: redis scan: %w", err)
	}
	return n, nil
}

func (s *RedisStore) put(ctx context.Context, user int64, conv *Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("state: encode conversation: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(user), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("state: redis set: %w", err)
	}
	return nil
}
