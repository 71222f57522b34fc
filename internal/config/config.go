package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the client. Everything resolves once
// from the environment at startup.
type Config struct {
	APIBaseURL     string        `mapstructure:"API_BASE_URL"`
	HTTPTimeout    time.Duration `mapstructure:"HTTP_TIMEOUT"`
	RequestsPerSec float64       `mapstructure:"REQUESTS_PER_SEC"`
	RequestBurst   int           `mapstructure:"REQUEST_BURST"`

	CacheTTL     time.Duration `mapstructure:"CACHE_TTL"`
	CacheGCEvery time.Duration `mapstructure:"CACHE_GC_EVERY"`
	RedisAddr    string        `mapstructure:"REDIS_ADDR"`
	RedisTTL     time.Duration `mapstructure:"REDIS_TTL"`

	StorageType string `mapstructure:"STORAGE_TYPE"`
	StoragePath string `mapstructure:"STORAGE_PATH"`

	LogLevel     string `mapstructure:"LOG_LEVEL"`
	SentryDSN    string `mapstructure:"SENTRY_DSN"`
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("API_BASE_URL", "http://localhost:4000")
	viper.SetDefault("HTTP_TIMEOUT", "30s")
	viper.SetDefault("REQUESTS_PER_SEC", 20.0)
	viper.SetDefault("REQUEST_BURST", 10)
	viper.SetDefault("CACHE_TTL", "30s")
	viper.SetDefault("CACHE_GC_EVERY", "1m")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_TTL", "5m")
	viper.SetDefault("STORAGE_TYPE", "sqlite")
	viper.SetDefault("STORAGE_PATH", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("OTLP_ENDPOINT", "")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
