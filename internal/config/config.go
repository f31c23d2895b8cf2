package config

import (
	"os"
	"strconv"

	commoncfg "summitly-data/common/config"
)

// Config summitly-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig
	Redis     commoncfg.RedisConfig
	Log       struct {
		Level  string
		Format string
	}
	Geocode   GeocodeConfig
	Analytics AnalyticsConfig
}

// GeocodeConfig 地理编码服务配置
type GeocodeConfig struct {
	BaseURL string // 地理编码服务地址（Nominatim 兼容）
	APIKey  string // API Key（可选，部分服务需要）
	Email   string // 联系邮箱（Nominatim 要求标识调用方）
}

// AnalyticsConfig 访问统计配置（Redis Streams 消费者）
type AnalyticsConfig struct {
	Enabled       bool   // 是否启用统计消费者（默认 true）
	EventStream   string // 事件流名称
	ConsumerGroup string // 消费者组
	ConsumerName  string // 消费者名称
	BatchSize     int64  // 每次读取的消息数
	PopularTTL    int    // 热门项目快照缓存 TTL（秒）
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable, summitly-data will fall back
	// to the in-memory repositories. This avoids "empty admin pages" when starting with
	// plain `go run`.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "summitly")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 地理编码配置
	cfg.Geocode.BaseURL = getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org")
	cfg.Geocode.APIKey = getEnv("GEOCODE_API_KEY", "")
	cfg.Geocode.Email = getEnv("GEOCODE_EMAIL", "")

	// 访问统计配置
	cfg.Analytics.Enabled = getEnv("ANALYTICS_ENABLED", "true") == "true"
	cfg.Analytics.EventStream = getEnv("ANALYTICS_EVENT_STREAM", "summitly:events:engagement")
	cfg.Analytics.ConsumerGroup = getEnv("ANALYTICS_CONSUMER_GROUP", "engagement-aggregator")
	cfg.Analytics.ConsumerName = getEnv("ANALYTICS_CONSUMER_NAME", "summitly-data-1")
	cfg.Analytics.BatchSize = int64(parseInt(getEnv("ANALYTICS_BATCH_SIZE", "10"), 10))
	cfg.Analytics.PopularTTL = parseInt(getEnv("ANALYTICS_POPULAR_TTL", "600"), 600)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
