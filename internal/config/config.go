package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	SyncBackendPostgres = "postgres"
	SyncBackendHTTP     = "http"
)

type Config struct {
	DBPath     string
	ServerPort string

	// SyncBackend selects the remote replica: "postgres", "http", or empty
	// to run without sync. SyncKey, when set, enables sync at startup.
	SyncBackend     string
	SyncDatabaseURL string
	SyncBaseURL     string
	SyncKey         string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "golf.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		SyncBackend:     getEnv("SYNC_BACKEND", ""),
		SyncDatabaseURL: getEnv("SYNC_DATABASE_URL", ""),
		SyncBaseURL:     getEnv("SYNC_BASE_URL", ""),
		SyncKey:         getEnv("SYNC_KEY", ""),
	}

	switch cfg.SyncBackend {
	case "":
		// sync disabled
	case SyncBackendPostgres:
		if cfg.SyncDatabaseURL == "" {
			return nil, fmt.Errorf("SYNC_DATABASE_URL is required when SYNC_BACKEND=postgres")
		}
	case SyncBackendHTTP:
		if cfg.SyncBaseURL == "" {
			return nil, fmt.Errorf("SYNC_BASE_URL is required when SYNC_BACKEND=http")
		}
	default:
		return nil, fmt.Errorf("unknown SYNC_BACKEND %q", cfg.SyncBackend)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("sync_backend", cfg.SyncBackend).
		Bool("sync_key_set", cfg.SyncKey != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
