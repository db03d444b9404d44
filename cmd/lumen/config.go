package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"lumen/pkg/localstore"
	"lumen/pkg/store"
)

// Config is the lumen configuration file (~/.lumen/config.toml). An empty
// StoreURL selects the local SQLite store at LocalDB.
type Config struct {
	ProjectID      string `toml:"project_id"`
	StoreURL       string `toml:"store_url,omitempty"`
	APIKey         string `toml:"api_key,omitempty"`
	LocalDB        string `toml:"local_db,omitempty"`
	EnoughLabelled int    `toml:"enough_labelled"`
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s (run `lumen init` first): %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("config %s: project_id is required", path)
	}
	return &cfg, nil
}

// SaveConfig writes the config to path, creating parent directories.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// openClient builds the store client selected by the config: HTTP when
// store_url is set, the local SQLite store otherwise. The returned closer is
// a no-op for HTTP clients.
func openClient(cfg *Config) (store.Client, func() error, error) {
	if cfg.StoreURL != "" {
		return store.NewHTTP(cfg.StoreURL, cfg.APIKey), func() error { return nil }, nil
	}
	dbPath := cfg.LocalDB
	if dbPath == "" {
		paths, err := ResolvePaths()
		if err != nil {
			return nil, nil, err
		}
		dbPath = paths.LocalDB
	}
	local, err := localstore.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	local.EnoughLabelled = cfg.EnoughLabelled
	return local, local.Close, nil
}

// loadConfigAndClient is the shared command preamble.
func loadConfigAndClient() (*Config, store.Client, func() error, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := LoadConfig(paths.ConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}
	client, closer, err := openClient(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, client, closer, nil
}
