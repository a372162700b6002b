package config

import (
	"ctchen222/Battleship/internal/validator"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process settings read from the environment.
type Config struct {
	TCPAddr      string `validate:"required,hostname_port"`
	HTTPAddr     string `validate:"required,hostname_port"`
	RedisURL     string `validate:"omitempty"`
	SQLiteDSN    string `validate:"required"`
	OTLPEndpoint string `validate:"omitempty,hostname_port"`
	TraceStdout  bool
	LogLevel     string        `validate:"oneof=debug info warn error"`
	LogFormat    string        `validate:"oneof=text json"`
	MaxFrame     int           `validate:"min=64,max=99999999"`
	BotDelay     time.Duration `validate:"min=0"`
}

// Load reads an optional .env file from the working directory, then the
// environment, and validates the result. Variables already set in the
// environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	cfg := &Config{
		TCPAddr:      getenv("BATTLESHIP_TCP_ADDR", ":5000"),
		HTTPAddr:     getenv("BATTLESHIP_HTTP_ADDR", ":8080"),
		RedisURL:     os.Getenv("REDIS_CONNSTRING"),
		SQLiteDSN:    getenv("SQLITE_DSN", ":memory:"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFormat:    getenv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.TraceStdout, err = strconv.ParseBool(getenv("OTEL_TRACES_STDOUT", "false")); err != nil {
		return nil, fmt.Errorf("invalid OTEL_TRACES_STDOUT: %w", err)
	}
	if cfg.MaxFrame, err = strconv.Atoi(getenv("BATTLESHIP_MAX_FRAME", "1048576")); err != nil {
		return nil, fmt.Errorf("invalid BATTLESHIP_MAX_FRAME: %w", err)
	}
	if cfg.BotDelay, err = time.ParseDuration(getenv("BATTLESHIP_BOT_DELAY", "500ms")); err != nil {
		return nil, fmt.Errorf("invalid BATTLESHIP_BOT_DELAY: %w", err)
	}

	if err := validator.GetValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
