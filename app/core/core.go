package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/quka-ai/moodjournal/app/core/srv"
	"github.com/quka-ai/moodjournal/app/store/sqlstore"
	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/journal"
	"github.com/quka-ai/moodjournal/pkg/safe"
	"github.com/quka-ai/moodjournal/pkg/types"
)

const DEFAULT_RECORDING_MAX_DURATION = time.Minute * 10

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     func() *sqlstore.Provider
	httpEngine *gin.Engine
	redis      redis.UniversalClient

	metrics    *Metrics
	semaphores *SemaphoreManager
	boards     *journal.Registry
	recorders  *ai.RecorderRegistry

	Plugins
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28,   //days
				Compress:   true, // disabled by default
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("moodjournal", "core"),
		httpEngine: gin.New(),
		boards:     journal.NewRegistry(),
		recorders:  ai.NewRecorderRegistry(),
	}
	core.semaphores = NewSemaphoreManager(core)

	// setup store
	setupSqlStore(core)
	setupRedis(core)

	core.srv = srv.SetupSrvs(srv.ApplyAI(cfg.AI, core.metrics))

	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	// 执行数据库表初始化
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
	fmt.Println("setupSqlStore done")
}

func setupRedis(core *Core) {
	cfg := core.cfg.Redis
	if !cfg.Enabled() {
		slog.Warn("redis is not configured, fallback to local cache and semaphore")
		return
	}

	opts := &redis.UniversalOptions{
		Addrs:        []string{cfg.Addr},
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
	if cfg.Cluster {
		opts.Addrs = cfg.ClusterAddrs
		opts.Password = cfg.ClusterPasswd
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Errorf("failed to connect redis: %w", err))
	}
	core.redis = client
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

// Redis 未配置时返回 nil
func (s *Core) Redis() redis.UniversalClient {
	return s.redis
}

func (s *Core) Cache() types.Cache {
	if s.redis == nil {
		return &EmptyCache{}
	}
	return &Cache{redis: s.redis, prefix: s.cfg.Redis.KeyPrefix}
}

func (s *Core) Semaphore() *SemaphoreManager {
	return s.semaphores
}

func (s *Core) Boards() *journal.Registry {
	return s.boards
}

func (s *Core) Recorders() *ai.RecorderRegistry {
	return s.recorders
}

func (s *Core) RecordingMaxDuration() time.Duration {
	if s.cfg.Recording.MaxDuration > 0 {
		return time.Duration(s.cfg.Recording.MaxDuration) * time.Second
	}
	return DEFAULT_RECORDING_MAX_DURATION
}

// GetAIStatus 获取AI系统状态
func (s *Core) GetAIStatus() map[string]bool {
	return s.srv.GetAIStatus()
}

// RunSweeper 定期丢弃超时未结束的录音会话以及长时间未访问的日记列表
func (s *Core) RunSweeper(ctx context.Context) {
	interval := min(s.RecordingMaxDuration(), journal.DEFAULT_BOARD_IDLE_TTL) / 2
	ticker := time.NewTicker(interval)
	safe.Go("sweeper", func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				safe.Run("sweeper", s.sweep)
			}
		}
	})
}

func (s *Core) sweep() {
	if n := s.recorders.Sweep(s.RecordingMaxDuration()); n > 0 {
		slog.Info("recording sessions expired", slog.Int("count", n))
	}
	if n := s.boards.Sweep(journal.DEFAULT_BOARD_IDLE_TTL); n > 0 {
		slog.Debug("idle journal boards dropped", slog.Int("count", n), slog.Int("remaining", s.boards.Len()))
	}
}
