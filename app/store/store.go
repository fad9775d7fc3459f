package store

import (
	"context"

	"github.com/quka-ai/moodjournal/pkg/types"
)

// JournalStore 日记存储, 所有查询都限定在 userID 范围内
type JournalStore interface {
	Create(ctx context.Context, data types.JournalEntry) error
	Get(ctx context.Context, userID, id string) (*types.JournalEntry, error)
	GetByDate(ctx context.Context, userID, date string) (*types.JournalEntry, error)
	// Update 仅写入 patch 中的字段
	Update(ctx context.Context, userID, id string, patch map[string]any) error
	SetSummary(ctx context.Context, userID, id, summary string) error
	SetImage(ctx context.Context, userID, id, image string) error
	Delete(ctx context.Context, userID, id string) error
	// ListByUser 按日期倒序
	ListByUser(ctx context.Context, opts types.ListJournalOptions, page, pageSize uint64) ([]*types.JournalEntry, error)
	Total(ctx context.Context, opts types.ListJournalOptions) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, appid, id string) (*types.User, error)
	GetByEmail(ctx context.Context, appid, email string) (*types.User, error)
	UpdateUserProfile(ctx context.Context, appid, id string, data types.UpdateUserProfile) error
	UpdateLastSignedIn(ctx context.Context, appid, id string, at int64) error
	Delete(ctx context.Context, appid, id string) error
}

type AccessTokenStore interface {
	Create(ctx context.Context, data types.AccessToken) error
	GetAccessToken(ctx context.Context, appid, token string) (*types.AccessToken, error)
	Delete(ctx context.Context, appid, userID string, id int64) error
	DeleteByToken(ctx context.Context, appid, token string) error
	ClearUserTokens(ctx context.Context, appid, userID string) error
}
