package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Key material. Both are required: the server cannot mint tokens or
	// verify passwords without them.
	AuthTokenKey string `env:"AUTH_TOKEN_KEY, required"`
	PasswordKey  string `env:"PASSWORD_KEY,   required"`

	AuthTokenTTL time.Duration `env:"AUTH_TOKEN_TTL, default=15m"`

	EventWorkers int `env:"EVENT_WORKERS, default=4"`

	Postgres PostgresConfig
	Redis    RedisConfig
	Login    LoginConfig
}

type PostgresConfig struct {
	URI string `env:"DATABASE_URI, default=postgres://localhost:5432/accounts?sslmode=disable"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=10"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=1m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
