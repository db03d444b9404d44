package main

import (
	"os"
	"path/filepath"
)

// Paths holds the resolved lumen state file paths.
type Paths struct {
	LumenHome  string // ~/.lumen or LUMEN_HOME
	ConfigPath string // config.toml or LUMEN_CONFIG
	LocalDB    string // lumen.db or LUMEN_DB_PATH
}

// ResolvePaths returns all lumen paths, respecting env var overrides:
//   - LUMEN_HOME: base directory for lumen state (default: ~/.lumen)
//   - LUMEN_CONFIG: config file (default: $LUMEN_HOME/config.toml)
//   - LUMEN_DB_PATH: local store database (default: $LUMEN_HOME/lumen.db)
func ResolvePaths() (*Paths, error) {
	home := os.Getenv("LUMEN_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(userHome, ".lumen")
	}

	return &Paths{
		LumenHome:  home,
		ConfigPath: resolvePathWithEnv("LUMEN_CONFIG", home, "config.toml"),
		LocalDB:    resolvePathWithEnv("LUMEN_DB_PATH", home, "lumen.db"),
	}, nil
}

// resolvePathWithEnv returns the env override if set, else base/name.
func resolvePathWithEnv(envVar, base, name string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return filepath.Join(base, name)
}
