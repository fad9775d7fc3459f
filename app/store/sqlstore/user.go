package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/quka-ai/moodjournal/pkg/register"
	"github.com/quka-ai/moodjournal/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.UserStore = NewUserStore(provider)
	})
}

// UserStore 处理用户表的操作
type UserStore struct {
	CommonFields
}

func NewUserStore(provider SqlProviderAchieve) *UserStore {
	repo := &UserStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_USER)
	repo.SetAllColumns("id", "appid", "email", "first_name", "last_name", "avatar", "password", "salt", "email_verified", "last_signed_in_at", "updated_at", "created_at")
	return repo
}

// Create 创建新的用户
func (s *UserStore) Create(ctx context.Context, data types.User) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.Appid, data.Email, data.FirstName, data.LastName, data.Avatar, data.Password, data.Salt, data.EmailVerified, data.LastSignedInAt, data.UpdatedAt, data.CreatedAt)

	return s.exec(ctx, query)
}

func (s *UserStore) get(ctx context.Context, where sq.Eq) (*types.User, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(where)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.User
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetUser 根据ID获取用户
func (s *UserStore) GetUser(ctx context.Context, appid, id string) (*types.User, error) {
	return s.get(ctx, sq.Eq{"appid": appid, "id": id})
}

func (s *UserStore) GetByEmail(ctx context.Context, appid, email string) (*types.User, error) {
	return s.get(ctx, sq.Eq{"appid": appid, "email": email})
}

// UpdateUserProfile 只更新非 nil 字段
func (s *UserStore) UpdateUserProfile(ctx context.Context, appid, id string, data types.UpdateUserProfile) error {
	query := sq.Update(s.GetTable()).Set("updated_at", time.Now().Unix()).Where(sq.Eq{"appid": appid, "id": id})
	if data.FirstName != nil {
		query = query.Set("first_name", *data.FirstName)
	}
	if data.LastName != nil {
		query = query.Set("last_name", *data.LastName)
	}
	if data.Avatar != nil {
		query = query.Set("avatar", *data.Avatar)
	}

	return s.exec(ctx, query)
}

func (s *UserStore) UpdateLastSignedIn(ctx context.Context, appid, id string, at int64) error {
	query := sq.Update(s.GetTable()).Set("last_signed_in_at", at).Where(sq.Eq{"appid": appid, "id": id})

	return s.exec(ctx, query)
}

// Delete 删除用户
func (s *UserStore) Delete(ctx context.Context, appid, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"appid": appid, "id": id})

	return s.exec(ctx, query)
}
