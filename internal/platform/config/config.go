package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type HTTPConfig struct {
	Addr string
}

type GRPCConfig struct {
	Addr string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type AppConfig struct {
	ServiceName    string
	AppEnv         string
	LogLevel       string
	HTTP           HTTPConfig
	GRPC           GRPCConfig
	DatabaseURL    string
	NATSURL        string
	RedisDSN       string
	JWTSecret      string
	ThreadMaxDepth int
	RateLimit      RateLimitConfig
}

// IsProduction reports whether in-memory fallbacks must be refused.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		ServiceName: env("SERVICE_NAME"),
		AppEnv:      env("APP_ENV"),
		LogLevel:    env("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Addr: env("HTTP_ADDR"),
		},
		GRPC: GRPCConfig{
			Addr: env("GRPC_ADDR"),
		},
		DatabaseURL:    env("DATABASE_URL"),
		NATSURL:        env("NATS_URL"),
		RedisDSN:       env("REDIS_DSN"),
		JWTSecret:      env("JWT_SECRET"),
		ThreadMaxDepth: envInt("THREAD_MAX_DEPTH", 16),
		RateLimit: RateLimitConfig{
			RPS:   envFloat("RATE_LIMIT_RPS", 20),
			Burst: envInt("RATE_LIMIT_BURST", 40),
		},
	}
	if cfg.ServiceName == "" {
		return AppConfig{}, errors.New("SERVICE_NAME is required")
	}
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET is required in production")
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.GRPC.Addr == "" {
		cfg.GRPC.Addr = ":9090"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(env(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(env(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
