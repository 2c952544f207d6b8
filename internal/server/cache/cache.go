// Package cache keeps each owner's task list in Redis for the CRUD list
// path. Entries are invalidated on every write for that owner.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// TaskListCache stores task lists by owner. Get reports a miss as
// (nil, false, nil).
type TaskListCache interface {
	Get(ctx context.Context, ownerID string) ([]models.Task, bool, error)
	Set(ctx context.Context, ownerID string, tasks []models.Task) error
	Invalidate(ctx context.Context, ownerID string) error
}

const keyPrefix = "todos:list:"

func listKey(ownerID string) string {
	return keyPrefix + ownerID
}

// RedisTaskListCache is a TaskListCache backed by go-redis.
type RedisTaskListCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisTaskListCache(rdb redis.Cmdable, ttl time.Duration) *RedisTaskListCache {
	return &RedisTaskListCache{rdb: rdb, ttl: ttl}
}

func (c *RedisTaskListCache) Get(ctx context.Context, ownerID string) ([]models.Task, bool, error) {
	data, err := c.rdb.Get(ctx, listKey(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return tasks, true, nil
}

func (c *RedisTaskListCache) Set(ctx context.Context, ownerID string, tasks []models.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, listKey(ownerID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisTaskListCache) Invalidate(ctx context.Context, ownerID string) error {
	if err := c.rdb.Del(ctx, listKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// NopCache never stores anything; every Get is a miss.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]models.Task, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, string, []models.Task) error         { return nil }
func (NopCache) Invalidate(context.Context, string) error                 { return nil }
