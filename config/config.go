// Package config loads the control-plane configuration and operator
// hierarchy description files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
)

// DefaultPath is where the CLI looks for its configuration.
const DefaultPath = "/etc/octeon-tm/config.yaml"

// DefaultDBPath is the default metadata store location.
const DefaultDBPath = "/run/octeon-tm/state.db"

// Config is the top-level control-plane configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	DB      DBConfig      `yaml:"db"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Spec is a logging spec, e.g. "info,tm=debug".
	Spec string `yaml:"spec"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DBConfig configures the metadata store.
type DBConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB: DBConfig{Path: DefaultDBPath},
	}
}

// Load reads a YAML config file. A missing file at the default path is
// not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultPath {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = DefaultDBPath
	}
	return cfg, nil
}
