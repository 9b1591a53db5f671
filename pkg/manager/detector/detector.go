// Package detector decides which package manager governs a project
// directory. Resolution order is an explicit override, then the detection
// cache, then probing the filesystem for marker files.
package detector

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
)

// FileSystem answers existence checks for marker files.
type FileSystem interface {
	Exists(path string) bool
}

// OSFileSystem checks the real filesystem.
type OSFileSystem struct{}

// Exists reports whether path exists.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Factory creates adapters by kind. *manager.Registry satisfies it.
type Factory interface {
	Create(kind manager.Kind) (manager.Manager, error)
	Lookup(name string) (manager.Kind, bool)
	Suggest(name string) []manager.Kind
}

// Match is one rule that matched during probing.
type Match struct {
	Kind     manager.Kind
	Priority int
	Marker   string // path of the marker file that matched
}

// Detector resolves a project directory to a manager adapter.
type Detector struct {
	factory  Factory
	cache    *Cache
	fs       FileSystem
	rules    []Rule
	override string
	logger   *log.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithOverride sets a manager name that takes precedence over detection, as
// read from the project's .mg.toml or the --manager flag.
func WithOverride(name string) Option {
	return func(d *Detector) {
		d.override = name
	}
}

// WithFileSystem replaces the filesystem used for marker checks.
func WithFileSystem(fs FileSystem) Option {
	return func(d *Detector) {
		if fs != nil {
			d.fs = fs
		}
	}
}

// WithRules replaces the detection table.
func WithRules(rules []Rule) Option {
	return func(d *Detector) {
		d.rules = sortedRules(rules)
	}
}

// WithLogger sets the logger for detection traces and override warnings.
func WithLogger(l *log.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Detector. A nil cache gets a private one.
func New(factory Factory, cache *Cache, opts ...Option) *Detector {
	if cache == nil {
		cache = NewCache()
	}
	d := &Detector{
		factory: factory,
		cache:   cache,
		fs:      OSFileSystem{},
		rules:   sortedRules(DefaultRules),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Cache returns the detector's cache.
func (d *Detector) Cache() *Cache {
	return d.cache
}

// ClearCache forgets the cached detection.
func (d *Detector) ClearCache() {
	d.cache.Clear()
}

// Detect returns the adapter governing dir. An empty dir means the current
// working directory.
func (d *Detector) Detect(dir string) (manager.Manager, error) {
	kind, err := d.DetectKind(dir)
	if err != nil {
		return nil, err
	}
	return d.factory.Create(kind)
}

// DetectKind resolves dir to a manager kind without building the adapter.
func (d *Detector) DetectKind(dir string) (manager.Kind, error) {
	dir, err := resolveDir(dir)
	if err != nil {
		return "", err
	}

	if kind, ok := d.fromOverride(dir); ok {
		return kind, nil
	}

	if kind, ok := d.cache.Get(dir); ok {
		d.logger.Debug("detection cache hit", "dir", dir, "manager", kind)
		return kind, nil
	}

	matches := d.probe(dir, true)
	if len(matches) == 0 {
		return "", errs.ManagerNotDetected(dir)
	}

	best := matches[0]
	d.cache.Set(dir, best.Kind)
	d.logger.Debug("detected package manager", "dir", dir, "manager", best.Kind, "marker", best.Marker)
	return best.Kind, nil
}

// Candidates lists every rule matching dir, best first. It bypasses the
// override and the cache and leaves both untouched.
func (d *Detector) Candidates(dir string) ([]Match, error) {
	dir, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	return d.probe(dir, false), nil
}

// fromOverride validates the override. An unknown name is reported and
// ignored so detection can proceed.
func (d *Detector) fromOverride(dir string) (manager.Kind, bool) {
	if d.override == "" {
		return "", false
	}

	kind, ok := d.factory.Lookup(d.override)
	if !ok {
		keyvals := []any{"manager", d.override}
		if s := d.factory.Suggest(d.override); len(s) > 0 {
			keyvals = append(keyvals, "did_you_mean", s[0])
		}
		d.logger.Warn("ignoring unknown package manager override", keyvals...)
		return "", false
	}

	d.cache.Set(dir, kind)
	d.logger.Debug("using package manager override", "dir", dir, "manager", kind)
	return kind, true
}

// probe walks from dir to the filesystem root for each rule. With firstOnly
// it stops at the first matching rule, which is the best one since rules are
// kept in priority order.
func (d *Detector) probe(dir string, firstOnly bool) []Match {
	var matches []Match
	for _, rule := range d.rules {
		if marker, ok := d.findUp(dir, rule.Markers); ok {
			matches = append(matches, Match{Kind: rule.Kind, Priority: rule.Priority, Marker: marker})
			if firstOnly {
				break
			}
		}
	}
	return matches
}

// findUp returns the first marker found in dir or any of its ancestors.
func (d *Detector) findUp(dir string, markers []string) (string, bool) {
	for {
		for _, m := range markers {
			p := filepath.Join(dir, m)
			if d.fs.Exists(p) {
				return p, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errs.CurrentDirFailed(err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errs.CurrentDirFailed(err)
	}
	return filepath.Clean(abs), nil
}
