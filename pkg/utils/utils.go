package utils

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/holdno/snowFlakeByGo"

	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
)

var (
	// IdWorker 全局唯一id生成器实例
	idWorker *snowFlakeByGo.Worker
)

func SetupIDWorker(clusterID int64) {
	idWorker, _ = snowFlakeByGo.NewWorker(clusterID)
}

func GenUniqID() int64 {
	return idWorker.GetId()
}

func GenUniqIDStr() string {
	return strconv.FormatInt(GenUniqID(), 10)
}

func GenRandomID() string {
	return RandomStr(32)
}

const randomSeed = "1234567890qwertyuiopasdfghjklzxcvbnmQWERTYUIOPASDFGHJKLZXCVBNM"

// randomByteLimit 为 len(randomSeed) 的最大整数倍, 超出的字节丢弃以保证均匀分布
const randomByteLimit = 256 - 256%len(randomSeed)

// RandomStr 随机字符串, 用于 access token 等场景, 使用 crypto/rand
func RandomStr(l int) string {
	out := make([]byte, 0, l)
	buf := make([]byte, l+l/4+1)
	for len(out) < l {
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Errorf("crypto/rand unavailable: %w", err))
		}
		for _, b := range buf {
			if int(b) >= randomByteLimit {
				continue
			}
			out = append(out, randomSeed[int(b)%len(randomSeed)])
			if len(out) == l {
				break
			}
		}
	}
	return string(out)
}

func MD5(s string) string {
	md5Ctx := md5.New()
	md5Ctx.Write([]byte(s))
	return hex.EncodeToString(md5Ctx.Sum(nil))
}

func BindArgsWithGin(c *gin.Context, req interface{}) error {
	err := c.ShouldBindWith(req, binding.Default(c.Request.Method, c.ContentType()))
	if err != nil {
		return errors.New(fmt.Sprintf("Gin.ShouldBindWith.%s.%s", c.Request.Method, c.Request.URL.Path), i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
	}
	return nil
}

func GenUserPassword(salt string, pwd string) string {
	return MD5(MD5(salt) + salt + MD5(pwd))
}

// Language represents a language and its weight (priority)
type Language struct {
	Tag    string  // Language tag, e.g., "en-US"
	Weight float64 // Weight (priority), default is 1.0
}

var acceptLanguageRe = regexp.MustCompile(`([a-zA-Z\-]+)(?:;q=([0-9\.]+))?`)

// ParseAcceptLanguage parses the Accept-Language header and returns a sorted list of languages by weight.
func ParseAcceptLanguage(header string) []Language {
	if header == "" {
		return []Language{}
	}

	var languages []Language
	for _, match := range acceptLanguageRe.FindAllStringSubmatch(header, -1) {
		weight := 1.0
		if len(match) > 2 && match[2] != "" {
			if parsed, err := strconv.ParseFloat(match[2], 64); err == nil {
				weight = parsed
			}
		}
		languages = append(languages, Language{Tag: match[1], Weight: weight})
	}

	sort.SliceStable(languages, func(i, j int) bool {
		return languages[i].Weight > languages[j].Weight
	})

	return languages
}

// DataURI 拆分后的 data:[mime];base64,[payload]
type DataURI struct {
	MimeType string
	Payload  string
}

// ParseDataURI accepts either a full data URI or a bare base64 payload.
func ParseDataURI(s string) DataURI {
	if !strings.HasPrefix(s, "data:") {
		return DataURI{Payload: s}
	}
	header, payload, found := strings.Cut(s, ",")
	if !found {
		return DataURI{Payload: s}
	}
	mimeType := strings.TrimPrefix(header, "data:")
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return DataURI{MimeType: mimeType, Payload: payload}
}

// DecodeBase64 tolerates padded and unpadded payloads.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasSuffix(payload, "=") {
		return base64.StdEncoding.DecodeString(payload)
	}
	return base64.RawStdEncoding.DecodeString(payload)
}

// ImageBytesToBase64 将图片字节数据转换为 data url
func ImageBytesToBase64(imageData []byte, contentType string) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("image data is empty")
	}
	if contentType == "" {
		contentType = http.DetectContentType(imageData)
	}
	if !IsValidImageType(contentType) {
		return "", fmt.Errorf("unsupported image type: %s", contentType)
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(imageData)), nil
}

// IsValidImageType 检查是否为支持的图片类型
func IsValidImageType(contentType string) bool {
	contentType, _, _ = strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "image/bmp", "image/gif":
		return true
	}
	return false
}
