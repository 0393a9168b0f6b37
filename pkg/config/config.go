package config

import (
	"os"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Module = fx.Provide(NewConfig)

const defaultAPIBase = "http://localhost:5000/api"

type IConfig interface {
	Get(key string) interface{}
	GetBool(key string) bool
	GetFloat64(key string) float64
	GetInt(key string) int
	GetInt64(key string) int64
	GetString(key string) string
	GetStringSlice(key string) []string
	GetDuration(key string) time.Duration
	Set(key string, value interface{})
}

type config struct {
	cfg *viper.Viper
}

func NewConfig() IConfig {
	_ = godotenv.Load()

	cfg := viper.New()
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	_ = cfg.BindEnv("server.host", "SERVICE_HOST")
	_ = cfg.BindEnv("server.port", "SERVICE_HTTP_PORT")
	_ = cfg.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")
	_ = cfg.BindEnv("api.base_url", "STICKERSTREET_API_URL", "VITE_API_URL")
	_ = cfg.BindEnv("api.admin_key", "ADMIN_API_KEY", "VITE_ADMIN_API_KEY")
	_ = cfg.BindEnv("api.timeout", "API_TIMEOUT")
	_ = cfg.BindEnv("ton.merchant_address", "TON_MERCHANT_ADDRESS", "VITE_TON_MERCHANT_ADDRESS")
	_ = cfg.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = cfg.BindEnv("storage.dir", "STORAGE_DIR")
	_ = cfg.BindEnv("database.dsn", "DATABASE_DSN")
	_ = cfg.BindEnv("database.migration", "DATABASE_MIGRATION")
	_ = cfg.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = cfg.BindEnv("redis.prefix", "REDIS_PREFIX")
	_ = cfg.BindEnv("aws_access_key_id", "AWS_ACCESS_KEY_ID")
	_ = cfg.BindEnv("aws_secret_access_key", "AWS_SECRET_ACCESS_KEY")
	_ = cfg.BindEnv("aws_region", "AWS_REGION")
	_ = cfg.BindEnv("aws_s3_bucket", "AWS_S3_BUCKET")
	_ = cfg.BindEnv("upload.driver", "UPLOAD_DRIVER")
	_ = cfg.BindEnv("bot.token", "BOT_TOKEN")
	_ = cfg.BindEnv("bot.webapp_url", "WEBAPP_URL")
	_ = cfg.BindEnv("bot.workers", "BOT_WORKERS")
	_ = cfg.BindEnv("log.level", "LOG_LEVEL")

	cfg.SetDefault("server.host", "0.0.0.0")
	cfg.SetDefault("server.port", "8080")
	cfg.SetDefault("api.timeout", 15*time.Second)
	cfg.SetDefault("storage.driver", "file")
	cfg.SetDefault("storage.dir", ".stickerstreet")
	cfg.SetDefault("redis.prefix", "stickerstreet")
	cfg.SetDefault("upload.driver", "api")
	cfg.SetDefault("router.transition_delay", 120*time.Millisecond)
	cfg.SetDefault("chat.poll_interval", 4*time.Second)
	cfg.SetDefault("notify.ttl", 2800*time.Millisecond)
	cfg.SetDefault("admin.validation_timeout", 7*time.Second)
	cfg.SetDefault("session.idle_timeout", 30*time.Minute)
	cfg.SetDefault("bot.workers", 10)
	cfg.SetDefault("log.level", "info")

	if addrs := os.Getenv("REDIS_ADDRS"); addrs != "" {
		cfg.Set("redis.addrs", strings.Split(addrs, ","))
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Set("server.allowed_origins", strings.Split(origins, ","))
	}

	cfg.Set("api.base_url", NormalizeBaseURL(cfg.GetString("api.base_url")))
	cfg.Set("api.admin_key", strings.TrimSpace(cfg.GetString("api.admin_key")))

	return &config{cfg: cfg}
}

// NormalizeBaseURL trims whitespace and trailing slashes, falling back to the
// local API when nothing is configured.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return defaultAPIBase
	}
	return base
}

func (c *config) Get(key string) interface{} {
	return c.cfg.Get(key)
}

func (c *config) GetBool(key string) bool {
	return c.cfg.GetBool(key)
}

func (c *config) GetFloat64(key string) float64 {
	return c.cfg.GetFloat64(key)
}

func (c *config) GetInt(key string) int {
	return c.cfg.GetInt(key)
}

func (c *config) GetInt64(key string) int64 {
	return c.cfg.GetInt64(key)
}

func (c *config) GetString(key string) string {
	return c.cfg.GetString(key)
}

func (c *config) GetStringSlice(key string) []string {
	return c.cfg.GetStringSlice(key)
}

func (c *config) GetDuration(key string) time.Duration {
	return c.cfg.GetDuration(key)
}

func (c *config) Set(key string, value interface{}) {
	c.cfg.Set(key, value)
}
