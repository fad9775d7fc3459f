package plugins

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/quka-ai/moodjournal/app/core"
	v1 "github.com/quka-ai/moodjournal/app/logic/v1"
	"github.com/quka-ai/moodjournal/pkg/safe"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

func init() {
	RegisterProvider("selfhost", newSelfHostMode())
}

func NewSingleLock() *SingleLock {
	return &SingleLock{
		locks: make(map[string]bool),
	}
}

// SelfHostCustomConfig 首次启动时创建的账户, 为空则跳过
type SelfHostCustomConfig struct {
	InitUser struct {
		Email    string `toml:"email"`
		Password string `toml:"password"`
		Name     string `toml:"name"`
	} `toml:"init_user"`
}

type SingleLock struct {
	mu    sync.Mutex
	locks map[string]bool
}

// TryLock 锁在 ctx 结束时释放
func (s *SingleLock) TryLock(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[key] {
		return false, nil
	}
	s.locks[key] = true
	safe.Go("single_lock", func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locks, key)
	})
	return true, nil
}

var _ core.Plugins = (*SelfHostPlugin)(nil)

func newSelfHostMode() *SelfHostPlugin {
	return &SelfHostPlugin{
		Appid:      types.DEFAULT_APPID,
		singleLock: NewSingleLock(),
		limiters:   make(map[string]*rate.Limiter),
	}
}

type SelfHostPlugin struct {
	core       *core.Core
	Appid      string
	singleLock *SingleLock

	storageOnce sync.Once
	storage     core.FileStorage

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter

	customConfig SelfHostCustomConfig
}

func (s *SelfHostPlugin) Name() string {
	return "selfhost"
}

func (s *SelfHostPlugin) DefaultAppid() string {
	return s.Appid
}

func (s *SelfHostPlugin) Install(c *core.Core) error {
	s.core = c
	fmt.Println("Start initialize.")
	utils.SetupIDWorker(1)

	customConfig := core.NewCustomConfigPayload[SelfHostCustomConfig]()
	if err := s.core.Cfg().LoadCustomConfig(&customConfig); err != nil {
		return fmt.Errorf("Failed to install custom config, %w", err)
	}
	s.customConfig = customConfig.CustomConfig

	initUser := s.customConfig.InitUser
	if initUser.Email == "" || initUser.Password == "" {
		return nil
	}

	var userCount int
	if err := s.core.Store().GetMaster().Get(&userCount, "SELECT COUNT(*) FROM "+types.TABLE_USER.Name()); err != nil {
		return fmt.Errorf("Initialize sql error: %w", err)
	}
	if userCount > 0 {
		fmt.Println("System is already initialized. Skip.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	userID, err := v1.NewUserLogic(ctx, s.core).Register(s.Appid, initUser.Email, initUser.Password, initUser.Name, "")
	if err != nil {
		return err
	}

	fmt.Println("Appid:", s.Appid)
	fmt.Println("User id:", userID)
	return nil
}

func (s *SelfHostPlugin) TryLock(ctx context.Context, key string) (bool, error) {
	return s.singleLock.TryLock(ctx, key)
}

// UseLimiter 按 key 复用令牌桶, 默认使用配置中每分钟的 AI 调用次数
func (s *SelfHostPlugin) UseLimiter(c *gin.Context, key string, method string, opts ...core.LimitOption) core.Limiter {
	cfg := &core.LimitConfig{
		Limit: s.defaultLimit(),
		Every: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}

	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()

	id := method + ":" + key
	l, exist := s.limiters[id]
	if !exist {
		l = rate.NewLimiter(rate.Every(cfg.Every/time.Duration(cfg.Limit)), cfg.Limit)
		s.limiters[id] = l
	}
	return l
}

func (s *SelfHostPlugin) defaultLimit() int {
	if s.core == nil || s.core.Cfg().Limit.AIPerMinute <= 0 {
		return 60
	}
	return s.core.Cfg().Limit.AIPerMinute
}

func (s *SelfHostPlugin) FileStorage() core.FileStorage {
	s.storageOnce.Do(func() {
		s.storage = SetupObjectStorage(s.core.Cfg().ObjectStorage)
	})
	return s.storage
}
