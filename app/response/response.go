package response

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

const (
	localizerKey = "i18n"
	RequestIDKey = "request_id"
	ResponseKey  = "response_key"
	UserIDKey    = "response_user_id"
)

func ProvideResponseLocalizer(l i18n.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(localizerKey, l)
	}
}

func InjectResponseLocalizer(c *gin.Context) i18n.Localizer {
	return c.MustGet(localizerKey).(i18n.Localizer)
}

// Response 所有接口统一的返回结构
type Response struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type Meta struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// NewResponse 为每个请求准备 Response 并回写 X-Request-Id
func NewResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = utils.GenRandomID()
		}
		c.Set(RequestIDKey, requestID)
		c.Set(ResponseKey, &Response{Meta: Meta{RequestID: requestID}})
		c.Header("X-Request-Id", requestID)
	}
}

// GetLangFromRequestOrDefault zh-* 统一为 zh-CN, en-* 统一为 en
func GetLangFromRequestOrDefault(c *gin.Context) string {
	for _, item := range utils.ParseAcceptLanguage(c.GetHeader("Accept-Language")) {
		lang := item.Tag
		if strings.HasPrefix(lang, "zh") {
			lang = "zh-CN"
		} else if strings.HasPrefix(lang, "en") {
			lang = "en"
		}
		if i18n.ALLOW_LANG[lang] {
			return lang
		}
	}
	return i18n.DEFAULT_LANG
}

func current(c *gin.Context) *Response {
	return c.MustGet(ResponseKey).(*Response)
}

// APIError 非 CustomizedError 按 500 返回原始错误信息
func APIError(c *gin.Context, err error) {
	c.Abort()
	res := current(c)

	var cerr *errors.CustomizedError
	if errors.As(err, &cerr) {
		res.Meta.Code = cerr.GetCode()
		res.Meta.Message = InjectResponseLocalizer(c).Get(GetLangFromRequestOrDefault(c), cerr.Message())
		if data := cerr.Data(); data != nil {
			res.Data = data
		}
	} else {
		res.Meta.Code = http.StatusInternalServerError
		res.Meta.Message = err.Error()
	}

	c.JSON(res.Meta.Code, res)
	slog.Error("response error", requestAttrs(c, slog.Int("code", res.Meta.Code), slog.String("error", err.Error()))...)
}

func APISuccess(c *gin.Context, data any) {
	c.Abort()
	res := current(c)
	if data != nil {
		res.Data = data
	}

	c.JSON(http.StatusOK, res)
	// body 可能包含日记正文和音频, 只记录 query
	slog.Info("request success", requestAttrs(c, slog.String("params", c.Request.URL.Query().Encode()))...)
}

func requestAttrs(c *gin.Context, extra ...any) []any {
	attrs := []any{
		slog.String("request_id", c.GetString(RequestIDKey)),
		slog.String("method", c.Request.Method),
		slog.String("request_uri", c.Request.URL.Path),
		slog.String("platform", c.GetHeader("Platform")),
		slog.String("version", c.GetHeader("Version")),
	}
	if uid := c.GetString(UserIDKey); uid != "" {
		attrs = append(attrs, slog.String("uid", uid))
	}
	return append(attrs, extra...)
}
