package sqlstore

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/quka-ai/moodjournal/pkg/register"
	"github.com/quka-ai/moodjournal/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.JournalStore = NewJournalStore(provider)
	})
}

type JournalStore struct {
	CommonFields
}

func NewJournalStore(provider SqlProviderAchieve) *JournalStore {
	repo := &JournalStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_JOURNAL_ENTRY)
	repo.SetAllColumns("id", "user_id", "title", "content", "date", "summary", "keywords", "moodscores", "image", "updated_at", "created_at")
	return repo
}

func (s *JournalStore) Create(ctx context.Context, data types.JournalEntry) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UserID, data.Title, data.Content, data.Date, data.Summary, data.Keywords, data.MoodScores, data.Image, data.UpdatedAt, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *JournalStore) get(ctx context.Context, where sq.Eq) (*types.JournalEntry, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(where)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.JournalEntry
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *JournalStore) Get(ctx context.Context, userID, id string) (*types.JournalEntry, error) {
	return s.get(ctx, sq.Eq{"user_id": userID, "id": id})
}

func (s *JournalStore) GetByDate(ctx context.Context, userID, date string) (*types.JournalEntry, error) {
	return s.get(ctx, sq.Eq{"user_id": userID, "date": date})
}

// Update 只接受 types.JOURNAL_MUTABLE_FIELDS 中的列
func (s *JournalStore) Update(ctx context.Context, userID, id string, patch map[string]any) error {
	data := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		if !lo.Contains(types.JOURNAL_MUTABLE_FIELDS, k) {
			return fmt.Errorf("column %s is not updatable", k)
		}
		data[k] = v
	}
	data["updated_at"] = time.Now().Unix()

	return s.update(ctx, userID, id, data)
}

func (s *JournalStore) SetSummary(ctx context.Context, userID, id, summary string) error {
	return s.update(ctx, userID, id, map[string]any{
		"summary":    summary,
		"updated_at": time.Now().Unix(),
	})
}

func (s *JournalStore) SetImage(ctx context.Context, userID, id, image string) error {
	return s.update(ctx, userID, id, map[string]any{
		"image":      image,
		"updated_at": time.Now().Unix(),
	})
}

func (s *JournalStore) update(ctx context.Context, userID, id string, data map[string]any) error {
	return s.exec(ctx, sq.Update(s.GetTable()).SetMap(data).Where(sq.Eq{"user_id": userID, "id": id}))
}

func (s *JournalStore) Delete(ctx context.Context, userID, id string) error {
	return s.exec(ctx, sq.Delete(s.GetTable()).Where(sq.Eq{"user_id": userID, "id": id}))
}

func applyListJournalOptions(opts types.ListJournalOptions, query sq.SelectBuilder) sq.SelectBuilder {
	query = query.Where(sq.Eq{"user_id": opts.UserID})
	if opts.StartDate != "" {
		query = query.Where(sq.GtOrEq{"date": opts.StartDate})
	}
	if opts.EndDate != "" {
		query = query.Where(sq.LtOrEq{"date": opts.EndDate})
	}
	return query
}

func (s *JournalStore) ListByUser(ctx context.Context, opts types.ListJournalOptions, page, pageSize uint64) ([]*types.JournalEntry, error) {
	query := applyListJournalOptions(opts, sq.Select(s.GetAllColumns()...).From(s.GetTable())).OrderBy("date DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []*types.JournalEntry
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *JournalStore) Total(ctx context.Context, opts types.ListJournalOptions) (int64, error) {
	query := applyListJournalOptions(opts, sq.Select("COUNT(*)").From(s.GetTable()))

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var res int64
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return 0, err
	}
	return res, nil
}
