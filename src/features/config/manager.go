package config

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/lrclib/lrclib/src/infra/watcher"
	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new Manager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update swaps in a new configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"port_changed", oldConfig.Server.Port != config.Server.Port,
			"database_path_changed", oldConfig.Database.Path != config.Database.Path,
			"workers_count_changed", oldConfig.Workers.Count != config.Workers.Count,
			"log_level_changed", oldConfig.Logger.Level != config.Logger.Level,
		)
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := save(path, m.config); err != nil {
		slog.Error("Failed to save config", "path", path, "error", err)
		return err
	}
	slog.Info("Configuration saved successfully", "path", path)
	return nil
}

// Watch reloads the configuration whenever the file at path changes.
// Reload failures keep the previous configuration and are only logged.
// The watcher stops when ctx is cancelled.
func (m *Manager) Watch(ctx context.Context, path string) error {
	events := make(chan watcher.Event, 1)
	w, err := watcher.New(events)
	if err != nil {
		return err
	}
	if err := w.Start(ctx, path); err != nil {
		return err
	}

	go func() {
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-events:
				m.reload(path)
			}
		}
	}()
	return nil
}

func (m *Manager) reload(path string) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Failed to reopen config file", "path", path, "error", err)
		return
	}
	defer f.Close()

	cfg := defaultConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		slog.Error("Failed to parse changed config, keeping previous", "path", path, "error", err)
		return
	}
	if err := applyEnv(&cfg); err != nil {
		slog.Error("Failed to apply environment overrides", "error", err)
		return
	}
	if err := Validate(&cfg); err != nil {
		slog.Error("Changed config is invalid, keeping previous", "path", path, "error", err)
		return
	}

	m.Update(&cfg)
	slog.Info("Configuration reloaded", "path", path)
}
