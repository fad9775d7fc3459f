package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

const TOKEN_CACHE_TTL = time.Hour * 24 * 7

// UserTokenMeta 缓存中保存的 access token 信息
type UserTokenMeta struct {
	Appid    string `json:"appid"`
	UserID   string `json:"user_id"`
	ExpireAt int64  `json:"expire_at"`
}

func TokenCacheKey(tokenValue string) string {
	return fmt.Sprintf("user:token:%s", utils.MD5(tokenValue))
}

// ValidateTokenFromCache 从缓存中验证 auth token, 以 now 判断是否过期, 未命中时返回 types.ErrCacheMiss
func ValidateTokenFromCache(ctx context.Context, tokenValue string, cache types.Cache, now time.Time) (*UserTokenMeta, error) {
	if tokenValue == "" {
		return nil, errors.New("auth.ValidateTokenFromCache.empty_token", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	tokenMetaStr, err := cache.Get(ctx, TokenCacheKey(tokenValue))
	if err != nil {
		if errors.Is(err, types.ErrCacheMiss) {
			return nil, types.ErrCacheMiss
		}
		return nil, errors.New("auth.ValidateTokenFromCache.cache_get", i18n.ERROR_INTERNAL, err)
	}

	var meta UserTokenMeta
	if err := json.Unmarshal([]byte(tokenMetaStr), &meta); err != nil {
		return nil, errors.New("auth.ValidateTokenFromCache.unmarshal", i18n.ERROR_INTERNAL, err).Code(http.StatusUnauthorized)
	}

	if meta.ExpireAt != 0 && meta.ExpireAt < now.Unix() {
		return nil, errors.New("auth.ValidateTokenFromCache.expired", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	return &meta, nil
}

func CacheToken(ctx context.Context, tokenValue string, meta UserTokenMeta, cache types.Cache) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return cache.SetEx(ctx, TokenCacheKey(tokenValue), string(raw), TOKEN_CACHE_TTL)
}

func ForgetToken(ctx context.Context, tokenValue string, cache types.Cache) error {
	return cache.Del(ctx, TokenCacheKey(tokenValue))
}
