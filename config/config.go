// Package config holds the run configuration of the analyzer, loaded from a
// yaml file with defaults for everything, so a missing file is not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// WideningThreshold is the node visit count beyond which the fixpoint
	// engine widens instead of joining.
	WideningThreshold int `yaml:"widening-threshold"`

	// SymopBudget bounds the number of node visits one procedure's fixpoint
	// may spend; 0 disables the bound.
	SymopBudget int `yaml:"symop-budget"`

	// PermissiveCfg skips the CFG connectivity check instead of treating a
	// malformed graph as fatal.
	PermissiveCfg bool `yaml:"permissive-cfg"`

	// ResultsDir is where the results database and lock files live.
	ResultsDir string `yaml:"results-dir"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	LogLevel string `yaml:"log-level"`

	// Colorize enables ANSI colors in pretty-printed output.
	Colorize bool `yaml:"colorize"`
}

func Default() *Config {
	return &Config{
		WideningThreshold: 5,
		SymopBudget:       0,
		ResultsDir:        "ibex-out",
		LogLevel:          "info",
		Colorize:          true,
	}
}

// Load reads a config file over the defaults. An empty path yields the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.WideningThreshold < 0 {
		return fmt.Errorf("widening-threshold must be non-negative, got %d", c.WideningThreshold)
	}
	if c.SymopBudget < 0 {
		return fmt.Errorf("symop-budget must be non-negative, got %d", c.SymopBudget)
	}
	if c.ResultsDir == "" {
		return fmt.Errorf("results-dir must not be empty")
	}
	return nil
}
