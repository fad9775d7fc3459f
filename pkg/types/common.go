package types

import (
	"path"
	"time"
)

const NO_PAGINATION = 0

const (
	LANGUAGE_EN_KEY = "en"
	LANGUAGE_CN_KEY = "zh-CN"
)

const (
	DEFAULT_APPID               = "moodjournal"
	FIXED_S3_UPLOAD_PATH_PREFIX = "/assets/s3/"
)

// GenS3FilePath 生成对象存储路径: /assets/s3/{user}/{type}/{yyyymmdd}/{file}
func GenS3FilePath(userID, _type, fileName string) string {
	return path.Join(FIXED_S3_UPLOAD_PATH_PREFIX, userID, _type, time.Now().Format("20060102"), fileName)
}
