package types

import (
	"fmt"
	"time"

	"github.com/quka-ai/moodjournal/pkg/security"
)

const DEFAULT_ACCESS_TOKEN_VERSION = "v1"

// AccessToken 登录后下发的不透明 token, ExpiresAt 为 0 表示永不过期
type AccessToken struct {
	ID        int64  `json:"id" db:"id"`
	Appid     string `json:"appid" db:"appid"`
	UserID    string `json:"user_id" db:"user_id"`
	Token     string `json:"token" db:"token"`
	Version   string `json:"version" db:"version"`
	Info      string `json:"info" db:"info"` // 登录设备
	CreatedAt int64  `json:"created_at" db:"created_at"`
	ExpiresAt int64  `json:"expires_at" db:"expires_at"`
}

func (s *AccessToken) Expired(now time.Time) bool {
	return s.ExpiresAt != 0 && s.ExpiresAt < now.Unix()
}

func (s *AccessToken) TokenClaims() (security.TokenClaims, error) {
	if s.Version != "" && s.Version != DEFAULT_ACCESS_TOKEN_VERSION {
		return security.TokenClaims{}, fmt.Errorf("unknown access token version %q", s.Version)
	}
	return security.NewTokenClaims(s.Appid, DEFAULT_APPID, s.UserID, s.ExpiresAt), nil
}
