// Package main implements the lumen-dash interactive dashboard: aggregated
// metrics and a filtered task table over a lumen store, with annotation keys.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/pelletier/go-toml/v2"

	"lumen/pkg/filter"
	"lumen/pkg/localstore"
	"lumen/pkg/metrics"
	"lumen/pkg/store"
)

// dashConfig mirrors the lumen CLI config file. Defined locally to avoid
// coupling to cmd/lumen's unexported types.
type dashConfig struct {
	ProjectID      string `toml:"project_id"`
	StoreURL       string `toml:"store_url"`
	APIKey         string `toml:"api_key"`
	LocalDB        string `toml:"local_db"`
	EnoughLabelled int    `toml:"enough_labelled"`
}

// loadDashConfig reads the config file, respecting LUMEN_HOME/LUMEN_CONFIG.
func loadDashConfig() (*dashConfig, error) {
	path := os.Getenv("LUMEN_CONFIG")
	if path == "" {
		home := os.Getenv("LUMEN_HOME")
		if home == "" {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			home = filepath.Join(userHome, ".lumen")
		}
		path = filepath.Join(home, "config.toml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s (run `lumen init` first): %w", path, err)
	}
	var cfg dashConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// openClient selects the store implementation from the config.
func openClient(cfg *dashConfig) (store.Client, func() error, error) {
	if cfg.StoreURL != "" {
		return store.NewHTTP(cfg.StoreURL, cfg.APIKey), func() error { return nil }, nil
	}
	local, err := localstore.Open(cfg.LocalDB)
	if err != nil {
		return nil, nil, err
	}
	local.EnoughLabelled = cfg.EnoughLabelled
	return local, local.Close, nil
}

// robotMode outputs a JSON snapshot of metrics and tasks for non-TTY
// consumers (pipes, scripts).
func robotMode(cfg *dashConfig, client store.Client) ([]byte, error) {
	ctx := context.Background()
	resp, err := client.Aggregate(ctx, cfg.ProjectID, store.AggregateRequest{
		Metrics:     metrics.AllMetrics(),
		TasksFilter: filter.Filter{},
	})
	if err != nil {
		return nil, err
	}
	tasks, err := client.Tasks(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	snapshot := map[string]any{
		"project": cfg.ProjectID,
		"metrics": resp,
		"tasks":   tasks,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func main() {
	cfg, err := loadDashConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen-dash: %v\n", err)
		os.Exit(1)
	}
	client, closer, err := openClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen-dash: %v\n", err)
		os.Exit(1)
	}
	defer closer() //nolint:errcheck // best-effort close on exit

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		data, err := robotMode(cfg, client)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lumen-dash: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	p := tea.NewProgram(newModel(cfg, client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
