package core

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/quka-ai/moodjournal/pkg/types"
)

type Plugins interface {
	Name() string
	Install(*Core) error
	DefaultAppid() string
	TryLock(ctx context.Context, key string) (bool, error)
	UseLimiter(c *gin.Context, key string, method string, opts ...LimitOption) Limiter
	FileStorage() FileStorage
}

type LimitConfig struct {
	Limit int
	Every time.Duration
}

type LimitOption func(l *LimitConfig)

func WithLimit(limit int) LimitOption {
	return func(l *LimitConfig) {
		l.Limit = limit
	}
}

func WithRange(r time.Duration) LimitOption {
	return func(l *LimitConfig) {
		l.Every = r
	}
}

type UploadFileMeta struct {
	UploadEndpoint string `json:"endpoint"`
	FullPath       string `json:"full_path"`
	Domain         string `json:"domain"`
	Status         string `json:"status"`
}

// FileStorage interface defines methods for file operations.
type FileStorage interface {
	GetStaticDomain() string
	GenUploadFileMeta(fullPath string, contentLength int64) (UploadFileMeta, error)
	SaveFile(ctx context.Context, fullPath string, content []byte) error
	DeleteFile(ctx context.Context, fullFilePath string) error
	GenGetObjectPreSignURL(url string) (string, error)
}

type Limiter interface {
	Allow() bool
}

type SetupFunc func() Plugins

func (c *Core) InstallPlugins(p Plugins) {
	if err := p.Install(c); err != nil {
		panic(err)
	}
	c.Plugins = p
}

// Cache redis 实现的 types.Cache, key 统一加上配置的前缀
type Cache struct {
	redis  redis.UniversalClient
	prefix string
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.redis.Expire(ctx, c.key(key), expiration).Err()
}

func (c *Cache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.redis.SetEx(ctx, c.key(key), value, expiresAt).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	res, err := c.redis.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", types.ErrCacheMiss
	}
	return res, err
}

func (c *Cache) Del(ctx context.Context, key string) error {
	return c.redis.Del(ctx, c.key(key)).Err()
}

// EmptyCache 空的 cache 实现，用作 fallback
type EmptyCache struct{}

func (c *EmptyCache) Get(ctx context.Context, key string) (string, error) {
	return "", types.ErrCacheMiss
}

func (c *EmptyCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return nil
}

func (c *EmptyCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (c *EmptyCache) Del(ctx context.Context, key string) error {
	return nil
}
