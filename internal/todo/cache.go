package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultListTTL = 5 * time.Minute

// ListCache caches an owner's todo list. Get reports the generation it read
// at; Set must be given that generation so a list read before a concurrent
// write is stored under a generation nobody reads any more.
type ListCache interface {
	Get(ctx context.Context, ownerID uuid.UUID) (todos []Todo, generation int64, hit bool, err error)
	Set(ctx context.Context, ownerID uuid.UUID, generation int64, todos []Todo) error
	Invalidate(ctx context.Context, ownerID uuid.UUID) error
}

// NopListCache never hits. Used when Redis is not configured.
type NopListCache struct{}

func (NopListCache) Get(context.Context, uuid.UUID) ([]Todo, int64, bool, error) {
	return nil, 0, false, nil
}

func (NopListCache) Set(context.Context, uuid.UUID, int64, []Todo) error { return nil }

func (NopListCache) Invalidate(context.Context, uuid.UUID) error { return nil }

// RedisListCache stores lists under todos:<owner>:list:<gen> with a TTL and
// bumps todos:<owner>:gen on every write.
type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListCache(client *redis.Client, ttl time.Duration) *RedisListCache {
	if ttl <= 0 {
		ttl = defaultListTTL
	}
	return &RedisListCache{client: client, ttl: ttl}
}

// getGenerationKey generates the Redis key holding the owner's list generation
func getGenerationKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("todos:%s:gen", ownerID.String())
}

// getListKey generates the Redis key for one generation of the owner's list
func getListKey(ownerID uuid.UUID, generation int64) string {
	return fmt.Sprintf("todos:%s:list:%d", ownerID.String(), generation)
}

func (c *RedisListCache) Get(ctx context.Context, ownerID uuid.UUID) ([]Todo, int64, bool, error) {
	generation, err := c.client.Get(ctx, getGenerationKey(ownerID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("failed to read list generation: %w", err)
	}

	data, err := c.client.Get(ctx, getListKey(ownerID, generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, generation, false, fmt.Errorf("failed to read cached list: %w", err)
	}

	var todos []Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, generation, false, fmt.Errorf("failed to decode cached list: %w", err)
	}
	if todos == nil {
		todos = []Todo{}
	}

	return todos, generation, true, nil
}

func (c *RedisListCache) Set(ctx context.Context, ownerID uuid.UUID, generation int64, todos []Todo) error {
	data, err := json.Marshal(todos)
	if err != nil {
		return fmt.Errorf("failed to encode list: %w", err)
	}

	if err := c.client.Set(ctx, getListKey(ownerID, generation), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache list: %w", err)
	}
	return nil
}

// Invalidate moves the owner to a new generation and drops the list cached
// under the previous one.
func (c *RedisListCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	generation, err := c.client.Incr(ctx, getGenerationKey(ownerID)).Result()
	if err != nil {
		return fmt.Errorf("failed to bump list generation: %w", err)
	}

	// superseded entries would expire anyway; this just frees them early
	if err := c.client.Del(ctx, getListKey(ownerID, generation-1)).Err(); err != nil {
		return fmt.Errorf("failed to drop superseded list: %w", err)
	}

	return nil
}
