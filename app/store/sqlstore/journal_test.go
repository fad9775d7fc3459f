package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/moodjournal/pkg/testutils"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m PGConfig) FormatDSN() string {
	return m.DSN
}

func setupProvider(t *testing.T) *Provider {
	cfg := PGConfig{DSN: testutils.RequireEnv(t, "TEST_MOODJOURNAL_POSTGRESQL_DSN")}
	p := MustSetup(cfg)()
	require.NoError(t, p.Install())
	return p
}

func TestJournalUpdateRejectsImmutableColumns(t *testing.T) {
	s := NewJournalStore(nil)
	err := s.Update(context.Background(), "u1", "1", map[string]any{"image": "data:image/png;base64,AAAA"})
	assert.ErrorContains(t, err, "image")
}

func TestListJournalOptions(t *testing.T) {
	query := applyListJournalOptions(types.ListJournalOptions{UserID: "u1", StartDate: "2024-01-01"}, sq.Select("id").From("mj_journal_entry"))
	sqlStr, args, err := query.ToSql()
	assert.NoError(t, err)
	assert.Equal(t, "SELECT id FROM mj_journal_entry WHERE user_id = $1 AND date >= $2", sqlStr)
	assert.Equal(t, []any{"u1", "2024-01-01"}, args)
}

func TestJournalStore(t *testing.T) {
	p := setupProvider(t)
	utils.SetupIDWorker(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	userID := utils.GenUniqIDStr()
	entry := types.JournalEntry{
		ID:         utils.GenUniqIDStr(),
		UserID:     userID,
		Title:      "A day at the beach",
		Content:    "Swam and read a book",
		Date:       "2024-05-01",
		MoodScores: types.WrapMoodScores([]types.MoodScore{{Label: "joy", Score: 0.8}}),
	}
	s := p.JournalStore()
	require.NoError(t, s.Create(ctx, entry))
	defer s.Delete(ctx, userID, entry.ID)

	// one entry per day
	dup := entry
	dup.ID = utils.GenUniqIDStr()
	assert.Error(t, s.Create(ctx, dup))

	got, err := s.Get(ctx, userID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.MoodScores, got.MoodScores)

	// other users cannot see the entry
	_, err = s.Get(ctx, "someone-else", entry.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, s.Update(ctx, userID, entry.ID, map[string]any{
		"title":      "Beach day",
		"moodscores": types.WrapMoodScores([]types.MoodScore{{Label: "sadness", Score: 0.6}}),
	}))
	got, err = s.GetByDate(ctx, userID, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "Beach day", got.Title)
	assert.Equal(t, "Swam and read a book", got.Content)
	score, _ := got.MoodScores.Score("sadness")
	assert.Equal(t, 0.6, score)

	list, err := s.ListByUser(ctx, types.ListJournalOptions{UserID: userID}, types.NO_PAGINATION, types.NO_PAGINATION)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	total, err := s.Total(ctx, types.ListJournalOptions{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
