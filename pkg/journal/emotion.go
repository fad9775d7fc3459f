package journal

import (
	"sort"
	"strings"

	"github.com/quka-ai/moodjournal/pkg/types"
)

type SortDirection string

const (
	SORT_ASC  SortDirection = "asc"
	SORT_DESC SortDirection = "desc"
)

// ParseSortDirection 除 asc 外一律按降序
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(SORT_ASC)) {
		return SORT_ASC
	}
	return SORT_DESC
}

// AvailableEmotions returns the distinct labels found in moodscores[0] of every entry,
// in first-seen order.
func AvailableEmotions(entries []*types.JournalEntry) []string {
	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		for _, score := range entry.MoodScores.Labels() {
			if _, ok := seen[score.Label]; ok {
				continue
			}
			seen[score.Label] = struct{}{}
			labels = append(labels, score.Label)
		}
	}
	return labels
}

// FilterAndSortEntries keeps the entries whose moodscores[0] carries emotion with a positive
// score and orders them by that score. EMOTION_ALL keeps every entry. The input is not modified.
func FilterAndSortEntries(entries []*types.JournalEntry, emotion string, direction SortDirection) []*types.JournalEntry {
	result := make([]*types.JournalEntry, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if emotion != types.EMOTION_ALL {
			score, ok := entry.MoodScores.Score(emotion)
			if !ok || score <= 0 {
				continue
			}
		}
		result = append(result, entry)
	}

	// 缺少该情绪时按 0 分排序
	key := func(e *types.JournalEntry) float64 {
		score, _ := e.MoodScores.Score(emotion)
		return score
	}
	sort.SliceStable(result, func(i, j int) bool {
		if direction == SORT_ASC {
			return key(result[i]) < key(result[j])
		}
		return key(result[i]) > key(result[j])
	})
	return result
}
