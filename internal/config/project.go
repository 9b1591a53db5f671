package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
)

// ProjectConfig is the content of a project's .mg.toml.
//
//	manager = "pnpm"
//
//	[commands]
//	add = "add --save-exact"
//
//	[defaults]
//	add_args = ["-D"]
//	default_args = ["--silent"]
type ProjectConfig struct {
	// Manager forces a manager instead of detecting one.
	Manager string `toml:"manager,omitempty"`

	// Commands replaces the subcommand words a generic verb maps to.
	Commands CommandsConfig `toml:"commands,omitempty"`

	// Defaults appends arguments to dispatched commands.
	Defaults DefaultsConfig `toml:"defaults,omitempty"`

	path string
}

// CommandsConfig holds per-verb subcommand replacements.
type CommandsConfig struct {
	Add     string `toml:"add,omitempty"`
	Remove  string `toml:"remove,omitempty"`
	Upgrade string `toml:"upgrade,omitempty"`
	Install string `toml:"install,omitempty"`
	Analyze string `toml:"analyze,omitempty"`
}

// DefaultsConfig holds arguments appended after the user's own.
type DefaultsConfig struct {
	// AddArgs apply to the add verb only.
	AddArgs []string `toml:"add_args,omitempty"`

	// DefaultArgs apply to every verb.
	DefaultArgs []string `toml:"default_args,omitempty"`
}

// Path returns the file the config was loaded from, or "" if none was found.
func (p *ProjectConfig) Path() string {
	return p.path
}

// CommandFor returns the configured subcommand words for verb, or nil.
func (p *ProjectConfig) CommandFor(verb manager.Verb) []string {
	var raw string
	switch verb {
	case manager.VerbAdd:
		raw = p.Commands.Add
	case manager.VerbRemove:
		raw = p.Commands.Remove
	case manager.VerbUpgrade:
		raw = p.Commands.Upgrade
	case manager.VerbInstall:
		raw = p.Commands.Install
	case manager.VerbAnalyze:
		raw = p.Commands.Analyze
	}
	return strings.Fields(raw)
}

// ArgsFor returns the default arguments appended to verb.
func (p *ProjectConfig) ArgsFor(verb manager.Verb) []string {
	var args []string
	if verb == manager.VerbAdd {
		args = append(args, p.Defaults.AddArgs...)
	}
	return append(args, p.Defaults.DefaultArgs...)
}

// LoadProject finds the nearest .mg.toml at or above dir and parses it. When
// there is none an empty config is returned.
func LoadProject(dir string) (*ProjectConfig, error) {
	path, ok := FindProjectFile(dir)
	if !ok {
		return &ProjectConfig{}, nil
	}
	return LoadProjectFrom(path)
}

// LoadProjectFrom parses a specific .mg.toml.
func LoadProjectFrom(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.ConfigReadFailed(path, err)
	}

	cfg := &ProjectConfig{path: path}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errs.ConfigParseFailed(path, err)
	}
	return cfg, nil
}

// SaveProject writes cfg to the file it was loaded from, or to dir/.mg.toml
// when it was not loaded from disk. It returns the written path.
func SaveProject(dir string, cfg *ProjectConfig) (string, error) {
	path := cfg.path
	if path == "" {
		path = filepath.Join(dir, ProjectFile)
	}

	f, err := os.Create(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errs.PathNotFound(filepath.Dir(path))
		}
		return "", errs.CreateFileFailed(path, err)
	}
	if err := encodeProject(f, cfg); err != nil {
		return "", errs.CreateFileFailed(path, err)
	}
	cfg.path = path
	return path, nil
}

// encodeProject writes cfg to w and closes it. A failed close is reported
// since the file may be incomplete.
func encodeProject(w io.WriteCloser, cfg *ProjectConfig) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
