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
		provider.stores.AccessTokenStore = NewAccessTokenStore(provider)
	})
}

// AccessTokenStore 登录凭证, 一次登录对应一行
type AccessTokenStore struct {
	CommonFields
}

func NewAccessTokenStore(provider SqlProviderAchieve) *AccessTokenStore {
	repo := &AccessTokenStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_ACCESS_TOKEN)
	repo.SetAllColumns("id", "appid", "user_id", "token", "version", "created_at", "expires_at", "info")
	return repo
}

func (s *AccessTokenStore) Create(ctx context.Context, data types.AccessToken) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	// id 由数据库自增
	return s.exec(ctx, sq.Insert(s.GetTable()).
		SetMap(map[string]any{
			"appid":      data.Appid,
			"user_id":    data.UserID,
			"token":      data.Token,
			"version":    data.Version,
			"created_at": data.CreatedAt,
			"expires_at": data.ExpiresAt,
			"info":       data.Info,
		}))
}

// GetAccessToken 不过滤过期记录, 是否过期由 AccessToken.Expired 判断
func (s *AccessTokenStore) GetAccessToken(ctx context.Context, appid, token string) (*types.AccessToken, error) {
	queryString, args, err := sq.Select(s.GetAllColumns()...).
		From(s.GetTable()).
		Where(sq.Eq{"appid": appid, "token": token}).
		ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	res := new(types.AccessToken)
	if err = s.GetReplica(ctx).Get(res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AccessTokenStore) Delete(ctx context.Context, appid, userID string, id int64) error {
	return s.remove(ctx, sq.Eq{"appid": appid, "user_id": userID, "id": id})
}

// DeleteByToken 仅注销当前设备
func (s *AccessTokenStore) DeleteByToken(ctx context.Context, appid, token string) error {
	return s.remove(ctx, sq.Eq{"appid": appid, "token": token})
}

// ClearUserTokens 注销该用户的全部设备
func (s *AccessTokenStore) ClearUserTokens(ctx context.Context, appid, userID string) error {
	return s.remove(ctx, sq.Eq{"appid": appid, "user_id": userID})
}

func (s *AccessTokenStore) remove(ctx context.Context, where sq.Eq) error {
	return s.exec(ctx, sq.Delete(s.GetTable()).Where(where))
}
