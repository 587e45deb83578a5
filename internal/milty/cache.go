package milty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const draftKeyPrefix = "milty:draft:"

// RedisCache keeps recently generated drafts in redis for fast reads
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "milty_cache"),
	}
}

func draftKey(id string) string {
	return draftKeyPrefix + id
}

// Get returns nil, nil on a cache miss
func (c *RedisCache) Get(ctx context.Context, id string) (*Draft, error) {
	data, err := c.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.Debug("Draft cache miss", "draft_id", id)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read draft %s from cache: %w", id, err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode cached draft %s: %w", id, err)
	}
	c.logger.Debug("Draft cache hit", "draft_id", id)
	return &draft, nil
}

func (c *RedisCache) Set(ctx context.Context, draft *Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := c.client.Set(ctx, draftKey(draft.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache draft %s: %w", draft.ID, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to evict draft %s: %w", id, err)
	}
	return nil
}
