package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "http://localhost:8077"

type clientConfig struct {
	BaseURL string `yaml:"base_url"`
}

// loadClientConfig reads ~/.savelog.yaml when present; a missing file just
// means defaults. SAVELOG_URL overrides either.
func loadClientConfig() (*clientConfig, error) {
	cfg := &clientConfig{BaseURL: defaultBaseURL}

	home, err := os.UserHomeDir()
	if err == nil {
		data, err := os.ReadFile(filepath.Join(home, ".savelog.yaml"))
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("SAVELOG_URL")); v != "" {
		cfg.BaseURL = v
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	return cfg, nil
}
