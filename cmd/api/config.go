package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/playerauction/internal/config"
)

type apiConfig struct {
	Port                uint16        `env:"APP_PORT"`
	LogLevel            slog.Level    `env:"APP_LOG_LEVEL"`
	ShutdownTimeout     time.Duration `env:"APP_SHUTDOWN_TIMEOUT"`
	AudienceMaxCapacity int           `env:"AUDIENCE_MAX_CAPACITY"`
	Postgres            config.PostgresConfig
}
