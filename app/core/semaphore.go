package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/redis/go-redis/v9"
)

// Semaphore 限制同一资源的并发占用数
type Semaphore interface {
	TryAcquire(ctx context.Context) bool
	Release(ctx context.Context)
}

// DistributedSemaphore 分布式信号量，基于 Redis 实现
type DistributedSemaphore struct {
	redis      redis.UniversalClient
	key        string
	maxPermits int
	timeout    time.Duration
}

// NewDistributedSemaphore 创建分布式信号量
func NewDistributedSemaphore(redis redis.UniversalClient, key string, maxPermits int, timeout time.Duration) *DistributedSemaphore {
	return &DistributedSemaphore{
		redis:      redis,
		key:        key,
		maxPermits: maxPermits,
		timeout:    timeout,
	}
}

// TryAcquire 尝试获取信号量许可
func (s *DistributedSemaphore) TryAcquire(ctx context.Context) bool {
	// 使用 Lua 脚本保证原子性
	script := `
		local key = KEYS[1]
		local max_permits = tonumber(ARGV[1])
		local timeout = tonumber(ARGV[2])

		local current = tonumber(redis.call('GET', key) or '0')

		if current < max_permits then
			redis.call('INCR', key)
			redis.call('EXPIRE', key, timeout)
			return 1
		else
			return 0
		end
	`

	result, err := s.redis.Eval(ctx, script, []string{s.key}, s.maxPermits, int(s.timeout.Seconds())).Int()
	if err != nil {
		return false
	}

	return result == 1
}

// Release 释放信号量许可
func (s *DistributedSemaphore) Release(ctx context.Context) {
	// 避免减到负数
	script := `
		local key = KEYS[1]
		local current = tonumber(redis.call('GET', key) or '0')

		if current > 0 then
			redis.call('DECR', key)
			return 1
		else
			return 0
		end
	`

	s.redis.Eval(ctx, script, []string{s.key})
}

// GetCurrent 获取当前已使用的许可数
func (s *DistributedSemaphore) GetCurrent(ctx context.Context) int {
	result, err := s.redis.Get(ctx, s.key).Int()
	if err != nil {
		return 0
	}
	return result
}

// LocalSemaphore 未配置 redis 时使用的进程内信号量
type LocalSemaphore struct {
	mu         sync.Mutex
	current    int
	maxPermits int
}

func NewLocalSemaphore(maxPermits int) *LocalSemaphore {
	return &LocalSemaphore{maxPermits: maxPermits}
}

func (s *LocalSemaphore) TryAcquire(_ context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= s.maxPermits {
		return false
	}
	s.current++
	return true
}

func (s *LocalSemaphore) Release(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
}

func GenRecordingSemaphoreKey(userID string) string {
	return fmt.Sprintf("moodjournal:semaphore:recording:%s", userID)
}

// RecordingPermitTTL 录音许可在 redis 中的过期时间.
// 超时会话由 sweeper 每 maxAge/2 回收一次, 会话最长存活 maxAge*3/2, 许可需覆盖这段时间.
func RecordingPermitTTL(maxAge time.Duration) time.Duration {
	return maxAge * 3 / 2
}

// SemaphoreManager 信号量管理器，统一管理所有信号量
type SemaphoreManager struct {
	core      *Core
	recording cmap.ConcurrentMap[string, Semaphore]
}

// NewSemaphoreManager 创建信号量管理器
func NewSemaphoreManager(core *Core) *SemaphoreManager {
	return &SemaphoreManager{
		core:      core,
		recording: cmap.New[Semaphore](),
	}
}

// Recording 每个用户同一时间只能占用一个录音设备.
// 录音缓冲保存在进程内, 多实例部署时同一用户的录音请求需要路由到同一实例.
func (m *SemaphoreManager) Recording(userID string) Semaphore {
	return m.recording.Upsert(userID, nil, func(exist bool, s Semaphore, _ Semaphore) Semaphore {
		if exist {
			return s
		}
		if m.core.Redis() != nil {
			return NewDistributedSemaphore(m.core.Redis(), GenRecordingSemaphoreKey(userID), 1, RecordingPermitTTL(m.core.RecordingMaxDuration()))
		}
		return NewLocalSemaphore(1)
	})
}
