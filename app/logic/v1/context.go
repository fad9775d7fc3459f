package v1

import (
	"context"
	"log/slog"

	"github.com/quka-ai/moodjournal/pkg/security"
)

// 中间件写入 gin.Context 的 key
const (
	TOKEN_CONTEXT_KEY = "__moodjournal.access_token"
	LANGUAGE_KEY      = "__moodjournal.accept_language"
	APPID_KEY         = "__moodjournal.appid"
)

func InjectAppid(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(APPID_KEY).(string)
	return val, ok
}

func InjectTokenClaim(ctx context.Context) (security.TokenClaims, bool) {
	val, ok := ctx.Value(TOKEN_CONTEXT_KEY).(security.TokenClaims)
	return val, ok
}

func InjectLanguage(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(LANGUAGE_KEY).(string)
	return val, ok
}

// UserInfo 已登录接口的 logic 通过它拿到当前用户
type UserInfo interface {
	GetUserInfo() security.TokenClaims
}

type claimsHolder security.TokenClaims

func (c claimsHolder) GetUserInfo() security.TokenClaims {
	return security.TokenClaims(c)
}

// SetupUserInfo 未登录时返回空 claims, 此时 User 为空字符串
func SetupUserInfo(ctx context.Context) UserInfo {
	claims, ok := InjectTokenClaim(ctx)
	if !ok {
		slog.Error("token claims not found in context", slog.String("component", "logic.v1.SetupUserInfo"))
	}
	return claimsHolder(claims)
}
