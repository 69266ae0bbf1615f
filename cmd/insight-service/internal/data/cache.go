package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheKeyNotFound 缓存键不存在错误
var ErrCacheKeyNotFound = errors.New("cache key not found")

// RedisCache Redis 缓存实现
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(addr, password string, db int, prefix string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client, prefix: prefix}
}

// makeKey 生成带前缀的键
func (c *RedisCache) makeKey(key string) string {
	if c.prefix != "" {
		return fmt.Sprintf("%s:%s", c.prefix, key)
	}
	return key
}

// GetBytes 获取字节数组
func (c *RedisCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.client.Get(ctx, c.makeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheKeyNotFound
	}
	return raw, err
}

// SetBytes 设置字节数组
func (c *RedisCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.makeKey(key), value, ttl).Err()
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

type memoryItem struct {
	value      []byte
	expiration time.Time
}

// MemoryCache 内存缓存实现，redis 未配置时的回退
type MemoryCache struct {
	items sync.Map
	done  chan struct{}
	once  sync.Once
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{done: make(chan struct{})}

	// 启动清理 goroutine
	go cache.cleanupExpired()

	return cache
}

// GetBytes 获取缓存值
func (c *MemoryCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	value, ok := c.items.Load(key)
	if !ok {
		return nil, ErrCacheKeyNotFound
	}
	item := value.(*memoryItem)
	if time.Now().After(item.expiration) {
		c.items.Delete(key)
		return nil, ErrCacheKeyNotFound
	}
	return item.value, nil
}

// SetBytes 设置缓存值
func (c *MemoryCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.items.Store(key, &memoryItem{
		value:      value,
		expiration: time.Now().Add(ttl),
	})
	return nil
}

// Close 停止清理 goroutine，可重复调用
func (c *MemoryCache) Close() error {
	c.once.Do(func() {
		close(c.done)
	})
	return nil
}

// cleanupExpired 清理过期项，Close 后退出
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.items.Range(func(key, value interface{}) bool {
				if now.After(value.(*memoryItem).expiration) {
					c.items.Delete(key)
				}
				return true
			})
		}
	}
}
