package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
)

func newEngine(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(ProvideResponseLocalizer(i18n.NewLocalizer("en", "zh-CN")), NewResponse())
	e.GET("/", h)
	return e
}

func do(t *testing.T, e *gin.Engine, lang string) (*httptest.ResponseRecorder, Response) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	var res Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

func TestAPIError(t *testing.T) {
	e := newEngine(func(c *gin.Context) {
		err := errors.New("test", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
		APIError(c, errors.Trace("outer", err))
	})

	w, res := do(t, e, "zh-CN,zh;q=0.9")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, res.Meta.Code)
	assert.NotEqual(t, i18n.ERROR_UNAUTHORIZED, res.Meta.Message)
	assert.NotEmpty(t, res.Meta.RequestID)
	assert.Equal(t, res.Meta.RequestID, w.Header().Get("X-Request-Id"))

	_, en := do(t, e, "en-US")
	assert.NotEqual(t, res.Meta.Message, en.Meta.Message)
}

func TestAPIError_Plain(t *testing.T) {
	e := newEngine(func(c *gin.Context) {
		APIError(c, assert.AnError)
	})

	w, res := do(t, e, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, assert.AnError.Error(), res.Meta.Message)
}

func TestAPISuccess(t *testing.T) {
	e := newEngine(func(c *gin.Context) {
		APISuccess(c, map[string]string{"hello": "world"})
	})

	w, res := do(t, e, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"hello": "world"}, res.Data)
}

func TestGetLangFromRequestOrDefault(t *testing.T) {
	cases := map[string]string{
		"":                  i18n.DEFAULT_LANG,
		"zh":                "zh-CN",
		"fr-FR,zh-TW;q=0.8": "zh-CN",
		"de;q=0.9,en;q=0.8": "en",
		"ja":                i18n.DEFAULT_LANG,
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Accept-Language", header)
		assert.Equal(t, want, GetLangFromRequestOrDefault(c), header)
	}
}
