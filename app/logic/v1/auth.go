package v1

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/quka-ai/moodjournal/app/core"
	"github.com/quka-ai/moodjournal/pkg/auth"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/security"
	"github.com/quka-ai/moodjournal/pkg/types"
)

type AuthLogic struct {
	ctx context.Context
	*backend
}

func NewAuthLogic(ctx context.Context, core *core.Core) *AuthLogic {
	return &AuthLogic{
		ctx:     ctx,
		backend: newBackend(core),
	}
}

func (l *AuthLogic) GetAccessTokenDetail(appid, token string) (*types.AccessToken, error) {
	data, err := l.tokens.GetAccessToken(l.ctx, appid, token)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AuthLogic.GetAccessTokenDetail.AccessTokenStore.GetAccessToken", i18n.ERROR_INTERNAL, err)
	}

	return data, nil
}

// ValidateAccessToken 先查缓存, 未命中时回源数据库并写回缓存
func (l *AuthLogic) ValidateAccessToken(appid, tokenValue string) (security.TokenClaims, error) {
	meta, err := auth.ValidateTokenFromCache(l.ctx, tokenValue, l.cache, l.now())
	if err == nil {
		return security.NewTokenClaims(meta.Appid, types.DEFAULT_APPID, meta.UserID, meta.ExpireAt), nil
	}
	if !errors.Is(err, types.ErrCacheMiss) {
		return security.TokenClaims{}, errors.Trace("AuthLogic.ValidateAccessToken", err)
	}

	token, err := l.GetAccessTokenDetail(appid, tokenValue)
	if err != nil {
		return security.TokenClaims{}, errors.Trace("AuthLogic.ValidateAccessToken", err)
	}
	if token == nil {
		return security.TokenClaims{}, errors.New("AuthLogic.ValidateAccessToken.check", i18n.ERROR_UNAUTHORIZED, fmt.Errorf("token not found")).Code(http.StatusUnauthorized)
	}
	if token.Expired(l.now()) {
		return security.TokenClaims{}, errors.New("AuthLogic.ValidateAccessToken.check", i18n.ERROR_UNAUTHORIZED, fmt.Errorf("token expired")).Code(http.StatusUnauthorized)
	}

	claims, err := token.TokenClaims()
	if err != nil {
		return security.TokenClaims{}, errors.New("AuthLogic.ValidateAccessToken.TokenClaims", i18n.ERROR_INVALID_TOKEN, err).Code(http.StatusUnauthorized)
	}

	if err = auth.CacheToken(l.ctx, tokenValue, auth.UserTokenMeta{
		Appid:    token.Appid,
		UserID:   token.UserID,
		ExpireAt: token.ExpiresAt,
	}, l.cache); err != nil {
		slog.Warn("failed to cache access token", slog.String("error", err.Error()))
	}

	return claims, nil
}
