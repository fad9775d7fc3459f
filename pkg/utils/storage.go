package utils

import (
	"net/url"
	"strings"
)

// ProcessStorageURL 如果 url 指向自有的对象存储域名，则替换为预签名地址，否则原样返回
func ProcessStorageURL(urlStr string, staticDomain string, preSignFunc func(path string) (string, error)) (string, error) {
	if urlStr == "" || staticDomain == "" || preSignFunc == nil {
		return urlStr, nil
	}

	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		// 仅保存了对象路径
		if strings.HasPrefix(urlStr, "/") {
			return preSignFunc(urlStr)
		}
		return urlStr, nil
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr, nil
	}

	staticParsed, err := url.Parse(staticDomain)
	if err != nil || parsedURL.Host != staticParsed.Host || parsedURL.Path == "" {
		return urlStr, nil
	}

	return preSignFunc(parsedURL.Path)
}
