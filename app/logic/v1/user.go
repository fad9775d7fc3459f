package v1

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quka-ai/moodjournal/app/core"
	"github.com/quka-ai/moodjournal/pkg/auth"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/sqlstore"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

// logic for unlogin
type UserLogic struct {
	ctx context.Context
	*backend
}

func NewUserLogic(ctx context.Context, core *core.Core) *UserLogic {
	return &UserLogic{
		ctx:     ctx,
		backend: newBackend(core),
	}
}

func (l *UserLogic) Register(appid, email, password, firstName, lastName string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	exist, err := l.users.GetByEmail(l.ctx, appid, email)
	if err != nil && err != sql.ErrNoRows {
		return "", errors.New("UserLogic.Register.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return "", errors.New("UserLogic.Register.UserStore.GetByEmail.exist", i18n.ERROR_EMAIL_ALREADY_REGISTED, nil).Code(http.StatusConflict)
	}

	salt := utils.RandomStr(10)
	userID := utils.GenUniqIDStr()
	now := l.now().Unix()
	err = l.users.Create(l.ctx, types.User{
		ID:        userID,
		Appid:     appid,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Avatar:    l.cfg.Site.DefaultAvatar,
		Salt:      salt,
		Password:  utils.GenUserPassword(salt, password),
		UpdatedAt: now,
		CreatedAt: now,
	})
	if err != nil {
		if sqlstore.IsUniqueViolation(err) {
			return "", errors.New("UserLogic.Register.UserStore.Create.exist", i18n.ERROR_EMAIL_ALREADY_REGISTED, err).Code(http.StatusConflict)
		}
		return "", errors.New("UserLogic.Register.UserStore.Create", i18n.ERROR_INTERNAL, err)
	}

	return userID, nil
}

type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	UserID    string `json:"user_id"`
}

func (l *UserLogic) Login(appid, email, password string) (*LoginResult, error) {
	user, err := l.users.GetByEmail(l.ctx, appid, strings.ToLower(strings.TrimSpace(email)))
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UserLogic.Login.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}

	if user == nil || user.Password != utils.GenUserPassword(user.Salt, password) {
		return nil, errors.New("UserLogic.Login.Password.check", i18n.ERROR_LOGIN_ACCOUNT_INCORRECT, err).Code(http.StatusBadRequest)
	}

	now := l.now()
	accessToken := utils.RandomStr(64)
	expiresAt := now.AddDate(0, 0, l.cfg.Security.TokenExpireDaysOrDefault()).Unix()
	err = l.transaction(l.ctx, func(ctx context.Context) error {
		err := l.tokens.Create(ctx, types.AccessToken{
			Appid:     appid,
			UserID:    user.ID,
			Token:     accessToken,
			Version:   types.DEFAULT_ACCESS_TOKEN_VERSION,
			Info:      "login",
			CreatedAt: now.Unix(),
			ExpiresAt: expiresAt,
		})
		if err != nil {
			return errors.New("UserLogic.Login.AccessTokenStore.Create", i18n.ERROR_INTERNAL, err)
		}

		if err = l.users.UpdateLastSignedIn(ctx, appid, user.ID, now.Unix()); err != nil {
			return errors.New("UserLogic.Login.UserStore.UpdateLastSignedIn", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err = auth.CacheToken(l.ctx, accessToken, auth.UserTokenMeta{
		Appid:    appid,
		UserID:   user.ID,
		ExpireAt: expiresAt,
	}, l.cache); err != nil {
		slog.Warn("failed to cache access token", slog.String("error", err.Error()))
	}

	return &LoginResult{
		Token:     accessToken,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
	}, nil
}

type UserBaseInfo struct {
	ID             string `json:"id"`
	Appid          string `json:"appid"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Name           string `json:"name"`
	Avatar         string `json:"avatar"`
	EmailVerified  bool   `json:"email_verified"`
	LastSignedInAt int64  `json:"last_signed_in_at"`
	UpdatedAt      int64  `json:"updated_at"`
	CreatedAt      int64  `json:"created_at"`
}

type AuthedUserLogic struct {
	UserInfo
	ctx context.Context
	*backend
}

func NewAuthedUserLogic(ctx context.Context, core *core.Core) *AuthedUserLogic {
	return &AuthedUserLogic{
		ctx:      ctx,
		UserInfo: SetupUserInfo(ctx),
		backend:  newBackend(core),
	}
}

func (l *AuthedUserLogic) GetUser() (*UserBaseInfo, error) {
	claims := l.GetUserInfo()
	user, err := l.users.GetUser(l.ctx, claims.Appid, claims.User)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AuthedUserLogic.GetUser.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}

	if user == nil {
		return nil, errors.New("AuthedUserLogic.GetUser.UserStore.GetUser.nil", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	// 处理存储URL，如果是本地存储的文件则生成预签名URL
	if l.storage != nil {
		fs := l.storage()
		if user.Avatar, err = utils.ProcessStorageURL(user.Avatar, fs.GetStaticDomain(), fs.GenGetObjectPreSignURL); err != nil {
			return nil, errors.New("AuthedUserLogic.GetUser.FileStorage.GenGetObjectPreSignURL", i18n.ERROR_INTERNAL, err)
		}
	}

	return &UserBaseInfo{
		ID:             user.ID,
		Appid:          user.Appid,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Name:           user.DisplayName(),
		Avatar:         user.Avatar,
		EmailVerified:  user.EmailVerified,
		LastSignedInAt: user.LastSignedInAt,
		UpdatedAt:      user.UpdatedAt,
		CreatedAt:      user.CreatedAt,
	}, nil
}

func (l *AuthedUserLogic) UpdateUserProfile(profile types.UpdateUserProfile) error {
	// 检测avatar的host是否为对象存储的静态host，如果是则去除host只保留路径
	if profile.Avatar != nil && *profile.Avatar != "" && l.storage != nil {
		avatar := *profile.Avatar
		staticDomain := l.storage().GetStaticDomain()
		if staticDomain != "" && strings.HasPrefix(avatar, staticDomain) {
			avatar = strings.TrimPrefix(avatar, staticDomain)
			if !strings.HasPrefix(avatar, "/") {
				avatar = "/" + avatar
			}
		}
		profile.Avatar = &avatar
	}

	claims := l.GetUserInfo()
	var prevAvatar string
	if profile.Avatar != nil && l.storage != nil {
		user, err := l.users.GetUser(l.ctx, claims.Appid, claims.User)
		if err != nil && err != sql.ErrNoRows {
			return errors.New("AuthedUserLogic.UpdateUserProfile.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
		}
		if user != nil && user.Avatar != *profile.Avatar {
			prevAvatar = user.Avatar
		}
	}

	if err := l.users.UpdateUserProfile(l.ctx, claims.Appid, claims.User, profile); err != nil {
		return errors.New("AuthedUserLogic.UpdateUserProfile.UserStore.UpdateUserProfile", i18n.ERROR_INTERNAL, err)
	}

	// 只清理本服务上传的旧头像
	if strings.HasPrefix(prevAvatar, types.FIXED_S3_UPLOAD_PATH_PREFIX) {
		if err := l.storage().DeleteFile(l.ctx, prevAvatar); err != nil {
			slog.Warn("failed to delete previous avatar", slog.String("path", prevAvatar), slog.String("error", err.Error()))
		}
	}
	return nil
}

// UploadAvatar 本地存储模式下由服务端接收头像文件
func (l *AuthedUserLogic) UploadAvatar(fileName string, content []byte) (string, error) {
	if len(content) == 0 || len(content) > MAX_AVATAR_SIZE {
		return "", errors.New("AuthedUserLogic.UploadAvatar.size", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if !utils.IsValidImageType(http.DetectContentType(content)) {
		return "", errors.New("AuthedUserLogic.UploadAvatar.IsValidImageType", i18n.ERROR_IMAGE_READ_FAIL, nil).Code(http.StatusBadRequest)
	}

	fullPath := types.GenS3FilePath(l.GetUserInfo().User, "avatar", uuid.NewString()+path.Ext(fileName))
	if err := l.storage().SaveFile(l.ctx, fullPath, content); err != nil {
		return "", errors.New("AuthedUserLogic.UploadAvatar.FileStorage.SaveFile", i18n.ERROR_INTERNAL, err)
	}

	if err := l.UpdateUserProfile(types.UpdateUserProfile{Avatar: &fullPath}); err != nil {
		return "", errors.Trace("AuthedUserLogic.UploadAvatar", err)
	}
	return fullPath, nil
}

type UploadKey struct {
	Key          string `json:"key"`
	FullPath     string `json:"full_path"`
	StaticDomain string `json:"static_domain"`
	Status       string `json:"status"`
}

const MAX_AVATAR_SIZE = 1024 * 1024 * 5

// GenAvatarUploadKey 生成头像直传对象存储的预签名地址
func (l *AuthedUserLogic) GenAvatarUploadKey(fileName string, size int64) (UploadKey, error) {
	if size <= 0 || size > MAX_AVATAR_SIZE {
		return UploadKey{}, errors.New("AuthedUserLogic.GenAvatarUploadKey.size", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	fullPath := types.GenS3FilePath(l.GetUserInfo().User, "avatar", uuid.NewString()+path.Ext(fileName))
	fs := l.storage()
	meta, err := fs.GenUploadFileMeta(fullPath, size)
	if err != nil {
		return UploadKey{}, errors.New("AuthedUserLogic.GenAvatarUploadKey.FileStorage.GenUploadFileMeta", i18n.ERROR_INTERNAL, err)
	}

	return UploadKey{
		Key:          meta.UploadEndpoint,
		FullPath:     meta.FullPath,
		StaticDomain: fs.GetStaticDomain(),
		Status:       meta.Status,
	}, nil
}

func (l *AuthedUserLogic) Logout(tokenValue string) error {
	claims := l.GetUserInfo()
	if err := l.tokens.DeleteByToken(l.ctx, claims.Appid, tokenValue); err != nil {
		return errors.New("AuthedUserLogic.Logout.AccessTokenStore.DeleteByToken", i18n.ERROR_INTERNAL, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	if err := auth.ForgetToken(ctx, tokenValue, l.cache); err != nil {
		slog.Error("failed to remove token cache", slog.String("error", err.Error()), slog.String("user_id", claims.User))
		return errors.New("AuthedUserLogic.Logout.ForgetToken", i18n.ERROR_INTERNAL, fmt.Errorf("forget token: %w", err))
	}
	// 用户的其他会话可能仍在编辑, Board 交由空闲回收处理
	return nil
}
