package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/quka-ai/moodjournal/app/core/srv"
)

// MustLoadBaseConfig path 为空时从 MOODJOURNAL_* 环境变量读取
func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		panic(fmt.Errorf("failed to load config %s, %w", path, err))
	}
	return cfg
}

func loadConfigFile(path string) (CoreConfig, error) {
	var cfg CoreConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	md, err := toml.Decode(string(raw), &cfg)
	if err != nil {
		return cfg, err
	}
	// custom_config 由插件自行解析
	for _, key := range md.Undecoded() {
		if len(key) > 0 && key[0] != "custom_config" {
			slog.Warn("unknown config key", slog.String("key", key.String()))
		}
	}
	cfg.SetConfigBytes(raw)
	return cfg, nil
}

// LoadCustomConfig 将 custom_config 段解析到插件自己的结构中
func (c CoreConfig) LoadCustomConfig(cfg any) error {
	if len(c.bytes) == 0 {
		return nil
	}
	return toml.Unmarshal(c.bytes, cfg)
}

type CustomConfig[T any] struct {
	CustomConfig T `toml:"custom_config"`
}

func NewCustomConfigPayload[T any]() CustomConfig[T] {
	return CustomConfig[T]{}
}

// LoadBaseConfigFromENV 工作目录下存在 .env 时先加载, 已设置的环境变量不会被覆盖
func LoadBaseConfigFromENV() CoreConfig {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", slog.String("error", err.Error()))
	}
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr          string              `toml:"addr"`
	Log           Log                 `toml:"log"`
	Postgres      PGConfig            `toml:"postgres"`
	Redis         RedisConfig         `toml:"redis"`
	Site          Site                `toml:"site"`
	Cors          CorsConfig          `toml:"cors"`
	ObjectStorage ObjectStorageDriver `toml:"object_storage"`

	AI srv.AIConfig `toml:"ai"`

	Security Security `toml:"security"`

	Limit LimitRule `toml:"limit"`

	Recording RecordingConfig `toml:"recording"`

	bytes []byte `toml:"-"`
}

type ObjectStorageDriver struct {
	StaticDomain string    `toml:"static_domain"`
	Driver       string    `toml:"driver"`
	LocalRoot    string    `toml:"local_root"`
	S3           *S3Config `toml:"s3"`
}

type S3Config struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UsePathStyle bool   `toml:"use_path_style"`
}

type Site struct {
	DefaultAvatar string `toml:"default_avatar"`
}

type CorsConfig struct {
	AllowOrigins []string `toml:"allow_origins"`
}

func (c *CoreConfig) SetConfigBytes(raw []byte) {
	c.bytes = raw
}

type Security struct {
	// PEM 格式的 RSA 公钥, 配置后允许使用 X-Authorization JWT 访问
	JWTPublicKey string `toml:"jwt_public_key"`
	// access token 有效期, 单位天, 默认 30
	TokenExpireDays int `toml:"token_expire_days"`
}

func (s Security) TokenExpireDaysOrDefault() int {
	if s.TokenExpireDays > 0 {
		return s.TokenExpireDays
	}
	return 30
}

// LimitRule 每分钟允许的请求数
type LimitRule struct {
	AIPerMinute int `toml:"ai_per_minute"`
}

type RecordingConfig struct {
	// 录音会话最长保留时间(秒), 超时后自动丢弃, 默认 600
	MaxDuration int `toml:"max_duration"`
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("MOODJOURNAL_API_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.AI.FromENV()
	c.Security.JWTPublicKey = os.Getenv("MOODJOURNAL_JWT_PUBLIC_KEY")
	if origins := os.Getenv("MOODJOURNAL_CORS_ALLOW_ORIGINS"); origins != "" {
		c.Cors.AllowOrigins = strings.Split(origins, ",")
	}
	if limit, err := strconv.Atoi(os.Getenv("MOODJOURNAL_AI_PER_MINUTE")); err == nil {
		c.Limit.AIPerMinute = limit
	}
	if days, err := strconv.Atoi(os.Getenv("MOODJOURNAL_TOKEN_EXPIRE_DAYS")); err == nil {
		c.Security.TokenExpireDays = days
	}
	if seconds, err := strconv.Atoi(os.Getenv("MOODJOURNAL_RECORDING_MAX_DURATION")); err == nil {
		c.Recording.MaxDuration = seconds
	}
	c.ObjectStorage.FromENV()
}

func (o *ObjectStorageDriver) FromENV() {
	o.Driver = os.Getenv("MOODJOURNAL_OBJECT_STORAGE_DRIVER")
	o.StaticDomain = os.Getenv("MOODJOURNAL_OBJECT_STORAGE_STATIC_DOMAIN")
	o.LocalRoot = os.Getenv("MOODJOURNAL_OBJECT_STORAGE_LOCAL_ROOT")
	if bucket := os.Getenv("MOODJOURNAL_S3_BUCKET"); bucket != "" {
		o.S3 = &S3Config{
			Bucket:       bucket,
			Region:       os.Getenv("MOODJOURNAL_S3_REGION"),
			Endpoint:     os.Getenv("MOODJOURNAL_S3_ENDPOINT"),
			AccessKey:    os.Getenv("MOODJOURNAL_S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("MOODJOURNAL_S3_SECRET_KEY"),
			UsePathStyle: os.Getenv("MOODJOURNAL_S3_USE_PATH_STYLE") == "true",
		}
	}
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("MOODJOURNAL_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

// RedisConfig Cluster 为 true 时使用 ClusterAddrs, 超时单位均为秒
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	Cluster       bool     `toml:"cluster"`
	ClusterAddrs  []string `toml:"cluster_addrs"`
	ClusterPasswd string   `toml:"cluster_passwd"`

	PoolSize     int `toml:"pool_size"`
	MinIdleConns int `toml:"min_idle_conns"`
	MaxRetries   int `toml:"max_retries"`
	DialTimeout  int `toml:"dial_timeout"`
	ReadTimeout  int `toml:"read_timeout"`
	WriteTimeout int `toml:"write_timeout"`

	// 所有 cache 与信号量 key 的前缀
	KeyPrefix string `toml:"key_prefix"`
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("MOODJOURNAL_REDIS_ADDR")
	r.Password = os.Getenv("MOODJOURNAL_REDIS_PASSWORD")
	r.KeyPrefix = os.Getenv("MOODJOURNAL_REDIS_KEY_PREFIX")
	if db, err := strconv.Atoi(os.Getenv("MOODJOURNAL_REDIS_DB")); err == nil {
		r.DB = db
	}
	if size, err := strconv.Atoi(os.Getenv("MOODJOURNAL_REDIS_POOL_SIZE")); err == nil {
		r.PoolSize = size
	}
}

func (r RedisConfig) Enabled() bool {
	if r.Cluster {
		return len(r.ClusterAddrs) > 0
	}
	return r.Addr != ""
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("MOODJOURNAL_API_LOG_LEVEL")
	l.Path = os.Getenv("MOODJOURNAL_API_LOG_PATH")
}

// SlogLevel 未配置或无法识别时使用 debug
func (l *Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelDebug
	}
	return level
}
