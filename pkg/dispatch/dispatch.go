// Package dispatch turns a generic package request into one invocation of
// the package manager that governs the project.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mcgeq/mcg/internal/history"
	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
)

// DefaultSlowThreshold is used when no threshold is configured.
const DefaultSlowThreshold = 3 * time.Second

// ErrAnalyzeUnsupported is returned by Analyze when the resolved manager
// cannot produce a structured dependency tree.
var ErrAnalyzeUnsupported = errors.New("package manager does not support structured analysis")

// Resolver finds the manager for a directory. *detector.Detector satisfies it.
type Resolver interface {
	Detect(dir string) (manager.Manager, error)
}

// Reporter shows dispatch progress to the user.
type Reporter interface {
	Using(name string)
	Executing(command string)
	DryRun(command string)
	Completed(command string, elapsed time.Duration, slow bool)
}

// Recorder persists dispatched commands. *history.Store satisfies it.
type Recorder interface {
	Record(entry *history.Entry) error
}

// Overrides supplies project-level command replacements and default
// arguments. *config.ProjectConfig satisfies it.
type Overrides interface {
	CommandFor(verb manager.Verb) []string
	ArgsFor(verb manager.Verb) []string
}

// Request is one generic package operation.
type Request struct {
	Verb     manager.Verb
	Packages []string
	Options  manager.Options
	Dir      string // empty means the working directory
}

// Result describes a dispatched command.
type Result struct {
	Manager string
	Command string
	DryRun  bool
	Elapsed time.Duration
	Slow    bool
}

// Dispatcher runs requests. It is not safe for concurrent use when overrides
// are configured, since they mutate the resolved adapter.
type Dispatcher struct {
	resolver  Resolver
	reporter  Reporter
	recorder  Recorder
	overrides Overrides
	logger    *log.Logger
	dryRun    bool
	slow      time.Duration
	now       func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(d *Dispatcher) { d.reporter = r }
}

// WithRecorder records every executed command.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithOverrides applies project command replacements and default args.
func WithOverrides(o Overrides) Option {
	return func(d *Dispatcher) { d.overrides = o }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDryRun prints commands instead of running them.
func WithDryRun(dryRun bool) Option {
	return func(d *Dispatcher) { d.dryRun = dryRun }
}

// WithSlowThreshold flags commands running longer than threshold. Zero
// disables the warning.
func WithSlowThreshold(threshold time.Duration) Option {
	return func(d *Dispatcher) { d.slow = threshold }
}

// New creates a Dispatcher resolving managers with r.
func New(r Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: r,
		reporter: nopReporter{},
		logger:   log.New(io.Discard),
		slow:     DefaultSlowThreshold,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch validates req, resolves the manager for req.Dir and runs the
// mapped command there.
// Detection and validation errors are returned unchanged. Execution errors
// are wrapped with the verb and manager name; the taxonomy error stays
// reachable through errors.As.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if req.Verb.RequiresPackages() {
		if err := manager.ValidatePackages(req.Packages); err != nil {
			return nil, err
		}
	}

	dir, err := resolveDir(req.Dir)
	if err != nil {
		return nil, err
	}
	m, err := d.resolver.Detect(dir)
	if err != nil {
		return nil, err
	}

	opts := d.applyOverrides(m, req)
	opts.Dir = dir
	command := m.FormatCommand(req.Verb, req.Packages, opts)
	result := &Result{Manager: m.Name(), Command: command}

	d.logger.Debug("using package manager", "manager", m.Name())
	d.reporter.Using(m.Name())
	d.logger.Debug("dispatching", "verb", req.Verb, "packages", req.Packages, "command", command)
	d.reporter.Executing(command)

	if d.dryRun {
		result.DryRun = true
		d.reporter.DryRun(command)
		return result, nil
	}

	entry := history.NewEntry(req.Verb, m.Name(), command, req.Packages)
	entry.Dir = dir

	start := d.now()
	err = m.Execute(ctx, req.Verb, req.Packages, opts)
	result.Elapsed = d.now().Sub(start)

	if err != nil {
		entry.MarkFailed(err, result.Elapsed)
		d.record(entry)
		d.logger.Debug("command failed", "manager", m.Name(), "command", command, "elapsed", result.Elapsed, "err", err)
		return result, fmt.Errorf("failed to execute '%s' command with %s package manager: %w", req.Verb, m.Name(), err)
	}

	entry.MarkSuccess(result.Elapsed)
	d.record(entry)

	result.Slow = d.slow > 0 && result.Elapsed > d.slow
	d.logger.Debug("command completed", "manager", m.Name(), "command", command, "elapsed", result.Elapsed)
	d.reporter.Completed(command, result.Elapsed, result.Slow)
	return result, nil
}

// Analyze resolves the manager for dir and returns its parsed dependency
// tree. Project command overrides do not apply; the listing command is
// fixed per tool because its output format is parsed.
func (d *Dispatcher) Analyze(ctx context.Context, dir string) (manager.Manager, []manager.DependencyNode, error) {
	dir, err := resolveDir(dir)
	if err != nil {
		return nil, nil, err
	}
	m, err := d.resolver.Detect(dir)
	if err != nil {
		return nil, nil, err
	}

	a, ok := m.(manager.Analyzer)
	if !ok {
		return m, nil, fmt.Errorf("%s: %w", m.Name(), ErrAnalyzeUnsupported)
	}

	d.logger.Debug("analyzing dependencies", "manager", m.Name(), "command", a.AnalyzeCommand())
	nodes, err := a.Analyze(ctx, dir)
	if err != nil {
		return m, nil, err
	}
	return m, nodes, nil
}

// applyOverrides installs the project's replacement subcommand on m and
// returns the request options with default args appended.
func (d *Dispatcher) applyOverrides(m manager.Manager, req Request) manager.Options {
	opts := manager.Options{Args: append([]string(nil), req.Options.Args...)}
	if d.overrides == nil {
		return opts
	}

	if args := d.overrides.CommandFor(req.Verb); len(args) > 0 {
		if c, ok := m.(manager.Configurable); ok {
			c.OverrideCommand(req.Verb, args)
		} else {
			d.logger.Warn("manager does not support command overrides", "manager", m.Name())
		}
	}
	opts.Args = append(opts.Args, d.overrides.ArgsFor(req.Verb)...)
	return opts
}

// resolveDir makes dir absolute, defaulting to the working directory.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errs.CurrentDirFailed(err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errs.CurrentDirFailed(err)
	}
	return abs, nil
}

func (d *Dispatcher) record(entry *history.Entry) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(entry); err != nil {
		d.logger.Warn("failed to record history", "err", err)
	}
}

type nopReporter struct{}

func (nopReporter) Using(string)                          {}
func (nopReporter) Executing(string)                      {}
func (nopReporter) DryRun(string)                         {}
func (nopReporter) Completed(string, time.Duration, bool) {}
