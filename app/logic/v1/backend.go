package v1

import (
	"context"
	"time"

	"github.com/quka-ai/moodjournal/app/core"
	"github.com/quka-ai/moodjournal/app/core/srv"
	"github.com/quka-ai/moodjournal/app/store"
	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/journal"
	"github.com/quka-ai/moodjournal/pkg/types"
)

// backend 逻辑层依赖的存储与服务, 由 *core.Core 提供
type backend struct {
	journals  store.JournalStore
	users     store.UserStore
	tokens    store.AccessTokenStore
	ai        srv.AIGateway
	boards    *journal.Registry
	recorders *ai.RecorderRegistry
	semaphore func(userID string) core.Semaphore
	storage   func() core.FileStorage
	cache     types.Cache
	metrics   *core.Metrics
	cfg       core.CoreConfig
	tx        func(ctx context.Context, fn func(ctx context.Context) error) error
	now       func() time.Time
}

func newBackend(c *core.Core) *backend {
	return &backend{
		journals:  c.Store().JournalStore(),
		users:     c.Store().UserStore(),
		tokens:    c.Store().AccessTokenStore(),
		ai:        c.Srv().AI(),
		boards:    c.Boards(),
		recorders: c.Recorders(),
		semaphore: c.Semaphore().Recording,
		// plugins 安装期间 c.Plugins 仍为 nil, 需延迟取值
		storage: func() core.FileStorage {
			return c.FileStorage()
		},
		cache:   c.Cache(),
		metrics: c.Metrics(),
		cfg:     c.Cfg(),
		tx:      c.Store().Transaction,
		now:     time.Now,
	}
}

func (b *backend) transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if b.tx == nil {
		return fn(ctx)
	}
	return b.tx(ctx, fn)
}
