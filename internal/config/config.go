// Package config loads mcg's global settings and per-project .mg.toml files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
)

// validate is shared; building a validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultSlowThreshold is how long a command may run before it is reported
// as slow.
const DefaultSlowThreshold = 3 * time.Second

// Config represents the global mcg configuration.
type Config struct {
	General  GeneralConfig            `toml:"general"`
	Output   OutputConfig             `toml:"output"`
	Managers map[string]ManagerConfig `toml:"managers"`
	Aliases  map[string]string        `toml:"aliases"`
}

// GeneralConfig contains general mcg settings.
type GeneralConfig struct {
	// AutoConfirm skips confirmation prompts when true (like -y flag).
	AutoConfirm bool `toml:"auto_confirm"`

	// DryRun prints commands without executing them.
	DryRun bool `toml:"dry_run"`

	// History records dispatched commands in the history database.
	History bool `toml:"history"`

	// SlowThreshold flags commands that run longer than this.
	SlowThreshold time.Duration `toml:"slow_threshold" validate:"gte=0"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Color   bool   `toml:"color"`
	Unicode bool   `toml:"unicode"`
	Verbose bool   `toml:"verbose"`
	Level   string `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// ManagerConfig contains per-manager settings.
type ManagerConfig struct {
	// Binary replaces the executable (e.g., "pip3", "/opt/node/bin/npm").
	Binary string `toml:"binary" validate:"omitempty,printascii"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			AutoConfirm:   false,
			DryRun:        false,
			History:       true,
			SlowThreshold: DefaultSlowThreshold,
		},
		Output: OutputConfig{
			Color:   true,
			Unicode: true,
			Verbose: false,
			Level:   "info",
		},
		Managers: map[string]ManagerConfig{},
		Aliases:  map[string]string{},
	}
}

// Load loads the configuration from the default path.
// If the config file doesn't exist, it returns the default configuration.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path.
// If the config file doesn't exist, it returns the default configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errs.ConfigReadFailed(path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errs.ConfigParseFailed(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errs.ConfigParseFailed(path, err)
	}

	return cfg, nil
}

// Validate checks field constraints and that every [managers.<name>] table
// names a supported manager.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	for name, mc := range c.Managers {
		if _, ok := manager.ParseKind(name); !ok {
			return fmt.Errorf("unknown manager %q in [managers]", name)
		}
		if err := validate.Struct(mc); err != nil {
			return fmt.Errorf("managers.%s: %w", name, err)
		}
	}
	return nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// ResolveAlias returns the package an alias points to, or pkg unchanged.
func (c *Config) ResolveAlias(pkg string) string {
	if alias, ok := c.Aliases[pkg]; ok {
		return alias
	}
	return pkg
}

// ResolveAliases resolves all aliases in a list of package names.
func (c *Config) ResolveAliases(packages []string) []string {
	if len(packages) == 0 {
		return packages
	}
	resolved := make([]string, len(packages))
	for i, pkg := range packages {
		resolved[i] = c.ResolveAlias(pkg)
	}
	return resolved
}

// Binaries returns the configured binary override per manager kind.
func (c *Config) Binaries() map[manager.Kind]string {
	out := make(map[manager.Kind]string, len(c.Managers))
	for name, mc := range c.Managers {
		if kind, ok := manager.ParseKind(name); ok && mc.Binary != "" {
			out[kind] = mc.Binary
		}
	}
	return out
}

// ShouldUseColor returns true if colored output should be used.
// Respects the NO_COLOR environment variable.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.Output.Color
}
