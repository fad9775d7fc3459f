package journal

import (
	"github.com/samber/lo"

	"github.com/quka-ai/moodjournal/pkg/types"
)

// NeedsReclassification reports whether the edited entry must be classified again.
func NeedsReclassification(prev *types.JournalEntry, edited types.JournalEntryPatch, force bool) bool {
	if force {
		return true
	}
	if prev == nil {
		return true
	}
	return edited.Content != nil && *edited.Content != prev.Content
}

// BuildUpdatePatch 生成写入存储的字段集合, 只包含 types.JOURNAL_MUTABLE_FIELDS 中的列
func BuildUpdatePatch(edited types.JournalEntryPatch, moodscores types.MoodScores) map[string]any {
	patch := make(map[string]any)
	if edited.Title != nil {
		patch["title"] = *edited.Title
	}
	if edited.Content != nil {
		patch["content"] = *edited.Content
	}
	if edited.Date != nil {
		patch["date"] = *edited.Date
	}
	if edited.Summary != nil {
		patch["summary"] = *edited.Summary
	}
	if edited.Keywords != nil {
		patch["keywords"] = *edited.Keywords
	}
	if moodscores != nil {
		patch["moodscores"] = moodscores
	}

	return lo.PickByKeys(patch, types.JOURNAL_MUTABLE_FIELDS)
}

// MergeEntry applies the edited fields and new moodscores on a copy of prev.
func MergeEntry(prev *types.JournalEntry, edited types.JournalEntryPatch, moodscores types.MoodScores) *types.JournalEntry {
	merged := edited.Apply(prev)
	if moodscores != nil {
		merged.MoodScores = moodscores.Clone()
	}
	return merged
}
