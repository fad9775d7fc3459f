package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/quka-ai/moodjournal/app/core"
	v1 "github.com/quka-ai/moodjournal/app/logic/v1"
	"github.com/quka-ai/moodjournal/app/response"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/security"
	"github.com/quka-ai/moodjournal/pkg/types"
)

func newEngine(mws ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(I18n(), response.NewResponse())
	e.Use(mws...)
	e.GET("/whoami", func(c *gin.Context) {
		claims, _ := v1.InjectTokenClaim(c)
		lang, _ := v1.InjectLanguage(c)
		response.APISuccess(c, gin.H{"user": claims.User, "lang": lang})
	})
	return e
}

func serve(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func genKeyPair(t *testing.T) ([]byte, []byte) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	priv := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return priv, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
}

func TestAuthorization(t *testing.T) {
	priv, pub := genKeyPair(t)
	validate := func(c *gin.Context, appid, token string) (security.TokenClaims, error) {
		if token != "good" {
			return security.TokenClaims{}, errors.New("test", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
		}
		return security.NewTokenClaims(appid, types.DEFAULT_APPID, "u1", 0), nil
	}
	e := newEngine(NewAuthorization(validate, pub, types.DEFAULT_APPID))

	t.Run("access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(ACCESS_TOKEN_HEADER_KEY, "good")
		w := serve(e, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":"u1"`)
	})

	t.Run("bad access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(ACCESS_TOKEN_HEADER_KEY, "bad")
		assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
	})

	t.Run("jwt", func(t *testing.T) {
		token, err := security.GenerateJWT(security.NewTokenClaims(types.DEFAULT_APPID, types.DEFAULT_APPID, "u2", time.Now().Add(time.Hour).Unix()), priv)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(AUTH_TOKEN_HEADER_KEY, "Bearer "+token)
		w := serve(e, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":"u2"`)

		req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(AUTH_TOKEN_HEADER_KEY, token+"x")
		assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
	})

	t.Run("no credentials", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(e, httptest.NewRequest(http.MethodGet, "/whoami", nil)).Code)
	})

	t.Run("jwt disabled without public key", func(t *testing.T) {
		token, err := security.GenerateJWT(security.NewTokenClaims(types.DEFAULT_APPID, types.DEFAULT_APPID, "u2", 0), priv)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(AUTH_TOKEN_HEADER_KEY, token)
		assert.Equal(t, http.StatusUnauthorized, serve(newEngine(NewAuthorization(validate, nil, types.DEFAULT_APPID)), req).Code)
	})
}

func TestAcceptLanguage(t *testing.T) {
	e := newEngine(AcceptLanguage())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	assert.Contains(t, serve(e, req).Body.String(), `"lang":"zh-CN"`)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	assert.Contains(t, serve(e, req).Body.String(), `"lang":"en"`)
}

func TestCors(t *testing.T) {
	e := newEngine(Cors([]string{"https://app.example.com"}))

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := serve(e, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Origin", "https://any.example.com")
	w = serve(newEngine(Cors(nil)), req)
	assert.Equal(t, "https://any.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

type limitPlugins struct {
	core.Plugins
	limiter *rate.Limiter
}

func (p *limitPlugins) UseLimiter(c *gin.Context, key string, method string, opts ...core.LimitOption) core.Limiter {
	return p.limiter
}

func TestUseLimit(t *testing.T) {
	appCore := &core.Core{Plugins: &limitPlugins{limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}}
	e := newEngine(UseLimit(appCore, "ai", func(c *gin.Context) string { return "k" }))

	assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/whoami", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, httptest.NewRequest(http.MethodGet, "/whoami", nil)).Code)
}
