package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envOverrides are the environment variables that take precedence over the
// YAML file. Pointer fields distinguish "unset" from a zero value.
type envOverrides struct {
	Port         *int    `envconfig:"PORT"`
	DatabaseFile *string `envconfig:"DATABASE_FILE"`
	WorkersCount *int    `envconfig:"WORKERS_COUNT"`
	Log          *string `envconfig:"LOG"`
}

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, a default configuration is written there first.
// Environment variables with the LRCLIB_ prefix override file values.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		cfg := defaultConfig
		if err := save(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := defaultConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return NewManager(&cfg), nil
}

// applyEnv overrides file values with LRCLIB_* environment variables.
func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("lrclib", &env); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if env.Port != nil {
		cfg.Server.Port = *env.Port
	}
	if env.DatabaseFile != nil {
		cfg.Database.Path = *env.DatabaseFile
	}
	if env.WorkersCount != nil {
		cfg.Workers.Count = *env.WorkersCount
	}
	if env.Log != nil {
		cfg.Logger.Level = *env.Log
	}
	return nil
}

// Validate checks the declarative constraints on a Config.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func save(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
