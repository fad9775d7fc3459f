package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const JOURNAL_DATE_LAYOUT = "2006-01-02"

// JournalEntry 用户的一篇日记，每个用户每天最多一篇
type JournalEntry struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	Title      string     `json:"title" db:"title"`
	Content    string     `json:"content" db:"content"`
	Date       string     `json:"date" db:"date"`
	Summary    string     `json:"summary" db:"summary"`
	Keywords   RawJSON    `json:"keywords" db:"keywords"`
	MoodScores MoodScores `json:"moodscores" db:"moodscores"`
	Image      string     `json:"image" db:"image"`
	// HasImage 列表中省略了 image 内容时为 true
	HasImage   bool       `json:"has_image,omitempty" db:"-"`
	CreatedAt  int64      `json:"created_at" db:"created_at"`
	UpdatedAt  int64      `json:"updated_at" db:"updated_at"`
}

// Clone returns a copy that shares no mutable state with e.
func (e *JournalEntry) Clone() *JournalEntry {
	if e == nil {
		return nil
	}
	c := *e
	if e.Keywords != nil {
		c.Keywords = append(RawJSON(nil), e.Keywords...)
	}
	c.MoodScores = e.MoodScores.Clone()
	return &c
}

// JournalEntryPatch 编辑时提交的字段，nil 表示未修改
type JournalEntryPatch struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Date     *string  `json:"date" binding:"omitempty,journaldate"`
	Summary  *string  `json:"summary"`
	Keywords *RawJSON `json:"keywords"`
}

// Apply returns a copy of e with every non-nil patch field applied.
func (p JournalEntryPatch) Apply(e *JournalEntry) *JournalEntry {
	merged := e.Clone()
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Content != nil {
		merged.Content = *p.Content
	}
	if p.Date != nil {
		merged.Date = *p.Date
	}
	if p.Summary != nil {
		merged.Summary = *p.Summary
	}
	if p.Keywords != nil {
		merged.Keywords = *p.Keywords
	}
	return merged
}

// 允许通过编辑接口写回存储的字段
var JOURNAL_MUTABLE_FIELDS = []string{"title", "content", "date", "summary", "keywords", "moodscores"}

type ListJournalOptions struct {
	UserID    string
	StartDate string
	EndDate   string
}

func TodayDate() string {
	return time.Now().Format(JOURNAL_DATE_LAYOUT)
}

func IsJournalDate(s string) bool {
	_, err := time.Parse(JOURNAL_DATE_LAYOUT, s)
	return err == nil
}

// RawJSON 存储在 jsonb 列中的任意 json 内容
type RawJSON []byte

func (m RawJSON) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

func (m *RawJSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = nil
		return nil
	}
	*m = append((*m)[:0], data...)
	return nil
}

func (m RawJSON) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return []byte(m), nil
}

func (m *RawJSON) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		*m = append(RawJSON(nil), src...)
	case string:
		*m = RawJSON(src)
	case nil:
		*m = nil
	default:
		return fmt.Errorf("pq: cannot convert %T to RawJSON", src)
	}
	return nil
}
