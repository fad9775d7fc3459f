package journal

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

const DEFAULT_BOARD_IDLE_TTL = time.Minute * 30

// Registry 每个用户一个 Board, 长时间未访问的 Board 由 Sweep 回收
type Registry struct {
	boards cmap.ConcurrentMap[string, *Board]
	now    func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		boards: cmap.New[*Board](),
		now:    time.Now,
	}
}

// Get returns the user's board, creating it on first use, and marks it as used.
func (r *Registry) Get(userID string) *Board {
	now := r.now()
	return r.boards.Upsert(userID, nil, func(exist bool, b *Board, _ *Board) *Board {
		if !exist {
			b = NewBoard()
		}
		b.touch(now)
		return b
	})
}

// Sweep drops boards not used within maxIdle, returns how many were dropped.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	deadline := r.now().Add(-maxIdle)
	dropped := 0
	for item := range r.boards.IterBuffered() {
		// 在分片锁内再次判断, 避免回收刚被 Get 的 Board
		removed := r.boards.RemoveCb(item.Key, func(_ string, b *Board, exists bool) bool {
			return exists && b.idleSince(deadline)
		})
		if removed {
			dropped++
		}
	}
	return dropped
}

func (r *Registry) Len() int {
	return r.boards.Count()
}
