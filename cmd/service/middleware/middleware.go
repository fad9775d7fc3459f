package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/quka-ai/moodjournal/app/core"
	v1 "github.com/quka-ai/moodjournal/app/logic/v1"
	"github.com/quka-ai/moodjournal/app/response"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/security"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// AcceptLanguage 目前服务端支持 en: English, zh-CN: 简体中文
func AcceptLanguage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := utils.ParseAcceptLanguage(ctx.Request.Header.Get("Accept-Language"))
		if len(res) == 0 {
			ctx.Set(v1.LANGUAGE_KEY, types.LANGUAGE_EN_KEY)
			return
		}

		ctx.Set(v1.LANGUAGE_KEY, lo.If(strings.Contains(res[0].Tag, "zh"), types.LANGUAGE_CN_KEY).Else(types.LANGUAGE_EN_KEY))
	}
}

const (
	ACCESS_TOKEN_HEADER_KEY = "X-Access-Token"
	AUTH_TOKEN_HEADER_KEY   = "X-Authorization"
	APPID_HEADER            = "X-Appid"
)

// AccessTokenValidator 校验 X-Access-Token
type AccessTokenValidator func(c *gin.Context, appid, token string) (security.TokenClaims, error)

func Authorization(core *core.Core) gin.HandlerFunc {
	return NewAuthorization(func(c *gin.Context, appid, token string) (security.TokenClaims, error) {
		return v1.NewAuthLogic(c, core).ValidateAccessToken(appid, token)
	}, []byte(core.Cfg().Security.JWTPublicKey), core.DefaultAppid())
}

// NewAuthorization 先校验 access token, 未携带时再尝试 RS256 JWT, 未配置公钥时不接受 JWT
func NewAuthorization(validate AccessTokenValidator, publicKey []byte, defaultAppid string) gin.HandlerFunc {
	tracePrefix := "middleware.Authorization"
	return func(c *gin.Context) {
		appid, exist := v1.InjectAppid(c)
		if !exist {
			appid = defaultAppid
		}

		var (
			claims security.TokenClaims
			err    error
		)
		switch {
		case c.GetHeader(ACCESS_TOKEN_HEADER_KEY) != "":
			claims, err = validate(c, appid, c.GetHeader(ACCESS_TOKEN_HEADER_KEY))
		case c.GetHeader(AUTH_TOKEN_HEADER_KEY) != "" && len(publicKey) > 0:
			claims, err = parseAuthToken(c.GetHeader(AUTH_TOKEN_HEADER_KEY), publicKey)
		default:
			err = errors.New(tracePrefix, i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
		}
		if err != nil {
			response.APIError(c, errors.Trace(tracePrefix, err))
			return
		}

		c.Set(v1.TOKEN_CONTEXT_KEY, claims)
		c.Set(response.UserIDKey, claims.User)
	}
}

func parseAuthToken(tokenValue string, publicKey []byte) (security.TokenClaims, error) {
	claims, err := security.VerifyToken(strings.TrimPrefix(tokenValue, "Bearer "), publicKey)
	if err != nil {
		return security.TokenClaims{}, errors.New("middleware.parseAuthToken.VerifyToken", i18n.ERROR_INVALID_TOKEN, err).Code(http.StatusUnauthorized)
	}
	if claims.User == "" {
		return security.TokenClaims{}, errors.New("middleware.parseAuthToken.User", i18n.ERROR_INVALID_TOKEN, nil).Code(http.StatusUnauthorized)
	}
	return *claims, nil
}

func SetAppid(core *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// 目前只有一个应用, 忽略 X-Appid
		ctx.Set(v1.APPID_KEY, core.DefaultAppid())
	}
}

func Cors(allowOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "X-Requested-With", ACCESS_TOKEN_HEADER_KEY, AUTH_TOKEN_HEADER_KEY, APPID_HEADER},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowOrigins) == 0 || lo.Contains(allowOrigins, "*") {
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		cfg.AllowOrigins = allowOrigins
	}
	return cors.New(cfg)
}

type LimiterFunc func(key string, opts ...core.LimitOption) gin.HandlerFunc

func UseLimit(appCore *core.Core, operation string, genKeyFunc func(c *gin.Context) string, opts ...core.LimitOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.UseLimiter(c, genKeyFunc(c), operation, opts...).Allow() {
			response.APIError(c, errors.New("middleware.limiter", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}

// Metrics 记录接口耗时, 非 2xx 响应计入错误数
func Metrics(m *core.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		api := c.FullPath()
		if api == "" {
			api = "unknown"
		}
		timer := m.ApiResponseTimer(api)
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			m.ApiErrorInc(c.Request.Method, api, status)
		}
	}
}
