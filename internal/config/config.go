package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	defaultListenAddr  = ":8077"
	defaultDatabaseURL = "savelog.db"
	defaultLogsDir     = "logs"
	defaultBaseURL     = "http://localhost:8077"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string
	LogsDir     string
	// BaseURL is the prefix of the locator returned by create.
	BaseURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", defaultListenAddr),
		DatabaseURL: getEnv("DATABASE_URL", defaultDatabaseURL),
		LogsDir:     getEnv("LOGS_DIR", defaultLogsDir),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", defaultBaseURL), "/"),
	}

	if cfg.LogsDir == "" {
		return nil, fmt.Errorf("LOGS_DIR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
