package core

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupConfigFromEnv(t *testing.T) {
	addr := "localhost:11111"
	t.Setenv("MOODJOURNAL_API_SERVICE_ADDRESS", addr)
	t.Setenv("MOODJOURNAL_REDIS_DB", "3")
	t.Setenv("MOODJOURNAL_CORS_ALLOW_ORIGINS", "http://a.test,http://b.test")

	cfg := LoadBaseConfigFromENV()

	assert.Equal(t, addr, cfg.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Len(t, cfg.Cors.AllowOrigins, 2)
	assert.False(t, cfg.Redis.Enabled())
	assert.Nil(t, cfg.ObjectStorage.S3)
}

func TestObjectStorageFromEnv(t *testing.T) {
	t.Setenv("MOODJOURNAL_OBJECT_STORAGE_DRIVER", "s3")
	t.Setenv("MOODJOURNAL_S3_BUCKET", "journal")
	t.Setenv("MOODJOURNAL_S3_USE_PATH_STYLE", "true")
	t.Setenv("MOODJOURNAL_RECORDING_MAX_DURATION", "90")

	cfg := LoadBaseConfigFromENV()
	assert.Equal(t, "s3", cfg.ObjectStorage.Driver)
	require.NotNil(t, cfg.ObjectStorage.S3)
	assert.Equal(t, "journal", cfg.ObjectStorage.S3.Bucket)
	assert.True(t, cfg.ObjectStorage.S3.UsePathStyle)
	assert.Equal(t, 90, cfg.Recording.MaxDuration)
}

func TestMustLoadBaseConfig(t *testing.T) {
	raw := `
addr = ":33033"

[log]
level = "info"

[postgres]
dsn = "postgres://mj:mj@localhost:5432/mj?sslmode=disable"

[ai.huggingface]
token = "hf_xxx"

[ai.openai]
token = "gsk_xxx"
chat_model = "llama-3.1-8b-instant"

[ai.usage]
summary = "gemini"

[recording]
max_duration = 120

[custom_config]
name = "selfhost"
`
	path := filepath.Join(t.TempDir(), "service.toml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg := MustLoadBaseConfig(path)
	assert.Equal(t, ":33033", cfg.Addr)
	assert.Equal(t, "hf_xxx", cfg.AI.HuggingFace.Token)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.AI.OpenAI.ChatModel)
	assert.Equal(t, "gemini", cfg.AI.Usage.Summary)
	assert.Equal(t, 120, cfg.Recording.MaxDuration)
	assert.Equal(t, 30, cfg.Security.TokenExpireDaysOrDefault())

	custom := NewCustomConfigPayload[struct {
		Name string `toml:"name"`
	}]()
	require.NoError(t, cfg.LoadCustomConfig(&custom))
	assert.Equal(t, "selfhost", custom.CustomConfig.Name)
}

func TestRedisFromEnv(t *testing.T) {
	t.Setenv("MOODJOURNAL_REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("MOODJOURNAL_REDIS_KEY_PREFIX", "mj:")
	t.Setenv("MOODJOURNAL_REDIS_POOL_SIZE", "20")

	cfg := LoadBaseConfigFromENV()
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "mj:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"loud":  slog.LevelDebug,
	}
	for level, want := range cases {
		l := Log{Level: level}
		assert.Equal(t, want, l.SlogLevel(), level)
	}
}
