// Package config loads the profile configuration from
// ~/.blast/config.toml, with environment variable overrides for the two
// backend endpoints.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the global blast configuration.
type Config struct {
	DefaultProfile string `toml:"default_profile"`
	APIURL         string `toml:"api_url"`
	SocketURL      string `toml:"socket_url"`
	UserEmail      string `toml:"user_email"`
}

// Load reads config from path and applies BLAST_API_URL / BLAST_SOCKET_URL
// / BLAST_USER_EMAIL overrides. A missing file is not an error; overrides
// still apply to the zero config.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if v := os.Getenv("BLAST_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("BLAST_SOCKET_URL"); v != "" {
		cfg.SocketURL = v
	}
	if v := os.Getenv("BLAST_USER_EMAIL"); v != "" {
		cfg.UserEmail = v
	}
	return &cfg, nil
}

// Save writes config to path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
