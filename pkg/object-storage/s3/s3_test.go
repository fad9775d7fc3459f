package s3_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quka-ai/moodjournal/pkg/object-storage/s3"
	"github.com/quka-ai/moodjournal/pkg/types"
)

func newClient(t *testing.T) *s3.S3 {
	if os.Getenv("TEST_MOODJOURNAL_S3_BUCKET") == "" {
		return s3.NewS3Client("http://127.0.0.1:9000", "us-east-1", "moodjournal", "ak", "sk", s3.WithPathStyle(true))
	}
	return s3.NewS3Client(
		os.Getenv("TEST_MOODJOURNAL_S3_ENDPOINT"),
		os.Getenv("TEST_MOODJOURNAL_S3_REGION"),
		os.Getenv("TEST_MOODJOURNAL_S3_BUCKET"),
		os.Getenv("TEST_MOODJOURNAL_S3_ACCESS_KEY"),
		os.Getenv("TEST_MOODJOURNAL_S3_SECRET_KEY"),
		s3.WithPathStyle(os.Getenv("TEST_MOODJOURNAL_S3_PATH_STYLE") == "true"),
	)
}

// presigning is a local computation, no object storage is required
func Test_UploadKey(t *testing.T) {
	cli := newClient(t)

	resp, err := cli.GenClientUploadKey(types.GenS3FilePath("10001", "avatar", "a.png"), 1)
	assert.NoError(t, err)
	assert.Contains(t, resp, "X-Amz-Signature")
	assert.Contains(t, resp, "/avatar/")
}

func Test_GenGetPreSignKey(t *testing.T) {
	cli := newClient(t)

	resp, err := cli.GenGetObjectPreSignURL("/assets/s3/10001/avatar/20240501/a.png")
	assert.NoError(t, err)
	assert.True(t, strings.Contains(resp, "assets/s3/10001/avatar/20240501/a.png"))
}
