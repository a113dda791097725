package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB          DBConfig
	Redis       RedisConfig
	Gateway     GatewayConfig
	Service     ServiceConfig
	Feed        FeedConfig
	Auth        AuthConfig
	Log         LogConfig
	ColumnsFile string

	// DotEnvLoaded is false when no .env file was found.
	DotEnvLoaded bool
}

type DBConfig struct {
	Driver string
	DSN    string
}

type GatewayConfig struct {
	Port           string
	RateLimit      string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type ServiceConfig struct {
	ListenAddr string
	Target     string
}

type FeedConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type LogConfig struct {
	Level string
	Env   string
}

func LoadConfig() Config {
	dotenvErr := godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			DSN:    getEnv("COMMISSION_DSN", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Gateway: GatewayConfig{
			Port:           getEnv("GATEWAY_PORT", "8080"),
			RateLimit:      getEnv("GATEWAY_RATE_LIMIT", "60-M"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "https://*,http://*")),
			RequestTimeout: getDuration("GATEWAY_REQUEST_TIMEOUT", 30*time.Second),
		},
		Service: ServiceConfig{
			ListenAddr: getEnv("COMMISSION_SERVICE_ADDR", ":50052"),
			Target:     getEnv("COMMISSION_SERVICE_TARGET", "localhost:50052"),
		},
		Feed: FeedConfig{
			BaseURL: getEnv("TMB_FEED_URL", ""),
			Token:   getEnv("TMB_FEED_TOKEN", ""),
			Timeout: getDuration("TMB_FEED_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Env:   getEnv("APP_ENV", "production"),
		},
		ColumnsFile:  getEnv("COLUMN_ALIASES_FILE", ""),
		DotEnvLoaded: dotenvErr == nil,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
