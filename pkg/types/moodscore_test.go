package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoodScoresLabels(t *testing.T) {
	var empty MoodScores
	assert.Nil(t, empty.Labels())

	m := WrapMoodScores([]MoodScore{{Label: "joy", Score: 0.7}, {Label: "fear", Score: 0.001}, {Label: "anger", Score: 0.2}})
	assert.Len(t, m.Labels(), 3)

	s, ok := m.Score("anger")
	assert.True(t, ok)
	assert.Equal(t, 0.2, s)

	_, ok = m.Score("sadness")
	assert.False(t, ok)
}

func TestMoodScoresDisplay(t *testing.T) {
	m := WrapMoodScores([]MoodScore{{Label: "fear", Score: 0.005}, {Label: "anger", Score: 0.2}, {Label: "joy", Score: 0.7}})
	assert.Equal(t, []MoodScore{{Label: "joy", Score: 0.7}, {Label: "anger", Score: 0.2}}, m.Display())
}

func TestMoodScoresScanValue(t *testing.T) {
	m := WrapMoodScores([]MoodScore{{Label: "joy", Score: 0.5}})
	v, err := m.Value()
	assert.NoError(t, err)

	var scanned MoodScores
	assert.NoError(t, scanned.Scan(v))
	assert.Equal(t, m, scanned)

	assert.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)
}

func TestJournalEntryPatchApply(t *testing.T) {
	entry := &JournalEntry{ID: "1", Title: "a", Content: "b", Date: "2024-05-01", MoodScores: WrapMoodScores([]MoodScore{{Label: "joy", Score: 1}})}
	title := "new"
	merged := JournalEntryPatch{Title: &title}.Apply(entry)

	assert.Equal(t, "new", merged.Title)
	assert.Equal(t, "a", entry.Title)
	merged.MoodScores[0][0].Score = 0
	assert.Equal(t, float64(1), entry.MoodScores[0][0].Score)
}
