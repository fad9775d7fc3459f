package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/moodjournal/app/logic/v1"
	"github.com/quka-ai/moodjournal/app/response"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=64"`
	FirstName string `json:"first_name" binding:"required,max=32"`
	LastName  string `json:"last_name" binding:"max=32"`
}

func (s *HttpSrv) Register(c *gin.Context) {
	var (
		err error
		req RegisterRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	appid, _ := v1.InjectAppid(c)
	userID, err := v1.NewUserLogic(c, s.Core).Register(appid, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"user_id": userID})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *HttpSrv) Login(c *gin.Context) {
	var (
		err error
		req LoginRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	appid, _ := v1.InjectAppid(c)
	res, err := v1.NewUserLogic(c, s.Core).Login(appid, req.Email, req.Password)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

type GetUserResponse struct {
	*v1.UserBaseInfo
	ServiceMode string `json:"service_mode"`
}

func (s *HttpSrv) GetUser(c *gin.Context) {
	user, err := v1.NewAuthedUserLogic(c, s.Core).GetUser()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, GetUserResponse{
		UserBaseInfo: user,
		ServiceMode:  s.Core.Plugins.Name(),
	})
}

type UpdateUserProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=32"`
	LastName  *string `json:"last_name" binding:"omitempty,max=32"`
	Avatar    *string `json:"avatar"`
}

func (s *HttpSrv) UpdateUserProfile(c *gin.Context) {
	var (
		err error
		req UpdateUserProfileRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	err = v1.NewAuthedUserLogic(c, s.Core).UpdateUserProfile(types.UpdateUserProfile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type GenAvatarUploadKeyRequest struct {
	FileName string `json:"file_name" binding:"required"`
	Size     int64  `json:"size" binding:"required"`
}

func (s *HttpSrv) GenAvatarUploadKey(c *gin.Context) {
	var (
		err error
		req GenAvatarUploadKeyRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := v1.NewAuthedUserLogic(c, s.Core).GenAvatarUploadKey(req.FileName, req.Size)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}

// UploadAvatar multipart 字段名为 file
func (s *HttpSrv) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.APIError(c, errors.New("api.UploadAvatar.FormFile", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest))
		return
	}
	if file.Size > v1.MAX_AVATAR_SIZE {
		response.APIError(c, errors.New("api.UploadAvatar.Size", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest))
		return
	}

	f, err := file.Open()
	if err != nil {
		response.APIError(c, errors.New("api.UploadAvatar.Open", i18n.ERROR_IMAGE_READ_FAIL, err).Code(http.StatusBadRequest))
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		response.APIError(c, errors.New("api.UploadAvatar.ReadAll", i18n.ERROR_IMAGE_READ_FAIL, err).Code(http.StatusBadRequest))
		return
	}

	fullPath, err := v1.NewAuthedUserLogic(c, s.Core).UploadAvatar(file.Filename, content)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"avatar": fullPath})
}

func (s *HttpSrv) Logout(c *gin.Context) {
	token := c.GetHeader("X-Access-Token")
	if token == "" {
		response.APISuccess(c, nil)
		return
	}

	if err := v1.NewAuthedUserLogic(c, s.Core).Logout(token); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}
