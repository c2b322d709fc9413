// Package config handles glint.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from TOML strings like "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the configured value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents a glint.toml runtime configuration.
type Config struct {
	Runtime  Runtime  `toml:"runtime"`
	Log      Log      `toml:"log"`
	Snapshot Snapshot `toml:"snapshot"`
}

// Runtime configures the object runtime and its collector.
type Runtime struct {
	// GCInterval is the periodic collection interval. Zero disables the
	// background collection driver.
	GCInterval Duration `toml:"gc-interval"`

	// MaxListenerDepth bounds re-entrant event dispatch nesting. Zero
	// means unbounded.
	MaxListenerDepth int `toml:"max-listener-depth"`
}

// Log configures logging verbosity.
type Log struct {
	// Verbosity maps onto the logging backend's levels: 0 = errors and
	// warnings only, higher values add notice, info, and debug output.
	Verbosity int `toml:"verbosity"`
}

// Snapshot configures heap snapshot persistence.
type Snapshot struct {
	// StorePath is the SQLite database for captured snapshots.
	StorePath string `toml:"store-path"`
}

// Default returns the configuration used when no glint.toml is present.
func Default() *Config {
	return &Config{
		Runtime: Runtime{
			GCInterval: Duration(30 * time.Second),
		},
		Snapshot: Snapshot{
			StorePath: "glint-snapshots.db",
		},
	}
}

// Load parses a glint.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "glint.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the configuration for nonsensical values.
func (c *Config) Validate() error {
	if c.Runtime.GCInterval < 0 {
		return fmt.Errorf("runtime.gc-interval must not be negative, got %s", c.Runtime.GCInterval.Std())
	}
	if c.Runtime.MaxListenerDepth < 0 {
		return fmt.Errorf("runtime.max-listener-depth must not be negative, got %d", c.Runtime.MaxListenerDepth)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative, got %d", c.Log.Verbosity)
	}
	if c.Snapshot.StorePath == "" {
		return fmt.Errorf("snapshot.store-path must not be empty")
	}
	return nil
}
