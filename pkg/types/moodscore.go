package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// EMOTION_ALL 表示不按情绪过滤
const EMOTION_ALL = "all"

// 展示卡片上低于该分值的情绪不显示
const MOOD_DISPLAY_THRESHOLD = 0.01

type MoodScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// MoodScores keeps the classifier's nested shape, only the first inner list is meaningful.
type MoodScores [][]MoodScore

func WrapMoodScores(scores []MoodScore) MoodScores {
	if scores == nil {
		scores = []MoodScore{}
	}
	return MoodScores{scores}
}

// Labels returns moodscores[0], or nil when the entry was never classified.
func (m MoodScores) Labels() []MoodScore {
	if len(m) == 0 {
		return nil
	}
	return m[0]
}

// Score returns the score of label and whether the label is present.
func (m MoodScores) Score(label string) (float64, bool) {
	for _, v := range m.Labels() {
		if v.Label == label {
			return v.Score, true
		}
	}
	return 0, false
}

func (m MoodScores) Clone() MoodScores {
	if m == nil {
		return nil
	}
	out := make(MoodScores, len(m))
	for i, inner := range m {
		out[i] = append([]MoodScore(nil), inner...)
	}
	return out
}

// Display 用于卡片展示: 去掉极小分值并按分值降序
func (m MoodScores) Display() []MoodScore {
	list := lo.Filter(m.Labels(), func(item MoodScore, _ int) bool {
		return item.Score >= MOOD_DISPLAY_THRESHOLD
	})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
	return list
}

func (m MoodScores) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

func (m *MoodScores) Scan(src interface{}) error {
	var raw []byte
	switch src := src.(type) {
	case []byte:
		raw = src
	case string:
		raw = []byte(src)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("pq: cannot convert %T to MoodScores", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}
