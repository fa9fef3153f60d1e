package cli

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kmonendra/octeon-tm/config"
	"github.com/kmonendra/octeon-tm/logging"
)

// CLI is the root command structure for octeon-tm.
type CLI struct {
	DB     string `name:"db" help:"SQLite state database path." default:"${default_db_path}"`
	Config string `name:"config" help:"Config file path." default:"${default_config_path}"`
	Log    string `name:"log" help:"Log spec (e.g., 'info,tm=debug')." env:"OCTEON_TM_LOG"`

	Apply    ApplyCmd    `cmd:"" help:"Apply a hierarchy file to a port and commit it."`
	Validate ValidateCmd `cmd:"" help:"Validate a hierarchy file without touching hardware."`
	Show     ShowCmd     `cmd:"" help:"Show persisted nodes, shapers, or hierarchy state."`
}

// KongOptions returns the Kong configuration options for the CLI.
func KongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("octeon-tm"),
		kong.Description("Traffic manager control plane for OCTEON NIX ports."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"default_db_path":     config.DefaultDBPath,
			"default_config_path": config.DefaultPath,
		},
	}
}

// LoadConfig loads the configuration from the config file path.
func (c *CLI) LoadConfig() (config.Config, error) {
	return config.Load(c.Config)
}

// Logger creates a logger for CLI commands. Commands default to warn
// for quieter output unless --log or the environment says otherwise.
func (c *CLI) Logger() (*slog.Logger, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}

	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	spec := c.Log
	if spec == "" && os.Getenv(logging.EnvVar) == "" {
		spec = "warn"
	}

	opts := logging.Options{
		CLISpec:    spec,
		EnvSpec:    os.Getenv(logging.EnvVar),
		ConfigSpec: cfg.Logging.Spec,
		Format:     format,
		Output:     os.Stderr,
	}

	return logging.New(opts)
}

// DBPath returns the database path, preferring the flag over config.
func (c *CLI) DBPath() (string, error) {
	if c.DB != "" && c.DB != config.DefaultDBPath {
		return c.DB, nil
	}
	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DB.Path != "" {
		return cfg.DB.Path, nil
	}
	return c.DB, nil
}
