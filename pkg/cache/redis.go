package cache

import (
	"context"
	"encoding/json"
	"time"

	"cbt-portal/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	codeTTL  = 10 * time.Minute
	statsTTL = 30 * time.Second
	lockTTL  = 30 * time.Second
)

type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

// SetCodeMetadata caches the validation metadata for an active test code.
func (c *RedisCache) SetCodeMetadata(meta *models.CodeMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, "code:"+meta.Code, data, codeTTL).Err()
}

// GetCodeMetadata returns cached metadata, or an error on miss.
func (c *RedisCache) GetCodeMetadata(code string) (*models.CodeMetadata, error) {
	data, err := c.client.Get(c.ctx, "code:"+code).Bytes()
	if err != nil {
		return nil, err
	}

	var meta models.CodeMetadata
	err = json.Unmarshal(data, &meta)
	return &meta, err
}

// InvalidateCode drops the cached metadata after any state change on the
// code or its batch.
func (c *RedisCache) InvalidateCode(code string) error {
	return c.client.Del(c.ctx, "code:"+code).Err()
}

// AcquireSubmitLock claims the per-code submission lock. A false return
// means another submission for the same code is in flight.
func (c *RedisCache) AcquireSubmitLock(code string) (bool, error) {
	return c.client.SetNX(c.ctx, "lock:submit:"+code, 1, lockTTL).Result()
}

// ReleaseSubmitLock frees the submission lock.
func (c *RedisCache) ReleaseSubmitLock(code string) error {
	return c.client.Del(c.ctx, "lock:submit:"+code).Err()
}

// SetStats caches a stats payload under the given key for a short window.
func (c *RedisCache) SetStats(key string, stats interface{}) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, "stats:"+key, data, statsTTL).Err()
}

// GetStats unmarshals a cached stats payload into out.
func (c *RedisCache) GetStats(key string, out interface{}) error {
	data, err := c.client.Get(c.ctx, "stats:"+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
