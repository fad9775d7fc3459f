package journal

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/quka-ai/moodjournal/pkg/types"
)

// View is what the journal page renders: the filtered entries and the filter choices.
type View struct {
	Entries  []*types.JournalEntry `json:"list"`
	Emotions []string              `json:"emotions"`
	Emotion  string                `json:"emotion"`
	Sort     SortDirection         `json:"sort"`
	Editing  string                `json:"editing"`
}

// Board 持有用户已加载的日记列表以及正在编辑的日记.
// 列表中的日记不保存图片内容, 只保留 HasImage 标记.
type Board struct {
	mu      sync.RWMutex
	loaded  bool
	entries []*types.JournalEntry
	editing string

	lastUsed atomic.Int64
}

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) touch(now time.Time) {
	b.lastUsed.Store(now.UnixNano())
}

func (b *Board) idleSince(deadline time.Time) bool {
	return b.lastUsed.Load() < deadline.UnixNano()
}

func listCopy(e *types.JournalEntry) *types.JournalEntry {
	c := e.Clone()
	if c.Image != "" {
		c.HasImage = true
		c.Image = ""
	}
	return c
}

// Load replaces the list, entries are expected in date-desc order.
func (b *Board) Load(entries []*types.JournalEntry) {
	list := make([]*types.JournalEntry, 0, len(entries))
	for _, v := range entries {
		list = append(list, listCopy(v))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = list
	b.loaded = true
	if b.editing != "" && b.indexOf(b.editing) == -1 {
		b.editing = ""
	}
}

func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

func (b *Board) Entries() []*types.JournalEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	list := make([]*types.JournalEntry, 0, len(b.entries))
	for _, v := range b.entries {
		list = append(list, v.Clone())
	}
	return list
}

func (b *Board) Find(id string) (*types.JournalEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := b.indexOf(id)
	if idx == -1 {
		return nil, false
	}
	return b.entries[idx].Clone(), true
}

func (b *Board) indexOf(id string) int {
	for i, v := range b.entries {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// Insert 按日期倒序插入新日记
func (b *Board) Insert(entry *types.JournalEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if idx := b.indexOf(entry.ID); idx != -1 {
		b.entries[idx] = listCopy(entry)
		return
	}

	pos := len(b.entries)
	for i, v := range b.entries {
		if v.Date < entry.Date {
			pos = i
			break
		}
	}
	b.entries = append(b.entries, nil)
	copy(b.entries[pos+1:], b.entries[pos:])
	b.entries[pos] = listCopy(entry)
}

// Replace swaps the entry with the same id in place, reports whether it was found.
func (b *Board) Replace(entry *types.JournalEntry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(entry.ID)
	if idx == -1 {
		return false
	}
	b.entries[idx] = listCopy(entry)
	return true
}

func (b *Board) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx == -1 {
		return
	}
	b.entries = append(b.entries[:idx], b.entries[idx+1:]...)
	if b.editing == id {
		b.editing = ""
	}
}

func (b *Board) BeginEdit(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.editing = id
}

func (b *Board) CancelEdit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.editing = ""
}

// Editing returns the id of the entry being edited, empty when none.
func (b *Board) Editing() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.editing
}

// ApplyUpdate runs persist and, only when it succeeds, replaces the entry in place with
// merged and clears the edit marker. On failure the list and the marker are left untouched.
func (b *Board) ApplyUpdate(merged *types.JournalEntry, persist func() error) error {
	if err := persist(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if idx := b.indexOf(merged.ID); idx != -1 {
		b.entries[idx] = listCopy(merged)
	}
	if b.editing == merged.ID {
		b.editing = ""
	}
	return nil
}

func (b *Board) View(emotion string, direction SortDirection) View {
	if emotion == "" {
		emotion = types.EMOTION_ALL
	}
	entries := b.Entries()
	return View{
		Entries:  FilterAndSortEntries(entries, emotion, direction),
		Emotions: AvailableEmotions(entries),
		Emotion:  emotion,
		Sort:     direction,
		Editing:  b.Editing(),
	}
}
