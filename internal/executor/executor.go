// Package executor runs package manager binaries as subprocesses and maps
// their failures onto the mcg error taxonomy.
package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/mcgeq/mcg/pkg/errors"
)

// Executor launches commands. The zero value is not usable; call New.
type Executor struct {
	logger *log.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for debug traces of every invocation.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStdio replaces the process's standard streams. Used by tests.
func WithStdio(in io.Reader, out, errw io.Writer) Option {
	return func(e *Executor) {
		e.stdin = in
		e.stdout = out
		e.stderr = errw
	}
}

// New creates an Executor that inherits the process's standard streams.
func New(opts ...Option) *Executor {
	e := &Executor{
		logger: log.New(io.Discard),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FormatCommand renders name and args the way they are displayed and
// recorded: joined by single spaces.
func FormatCommand(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Run executes a command with the executor's standard streams attached and
// waits for it. A binary that cannot be launched yields ManagerNotInstalled;
// a non-zero exit yields CommandFailed carrying the formatted command and the
// child's exit code.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	return e.RunIn(ctx, "", name, args...)
}

// RunIn is Run with the child's working directory set to dir. An empty dir
// keeps the process's own working directory.
func (e *Executor) RunIn(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	return e.run(cmd, name, args)
}

// Output runs a command and returns its stdout. Stderr still reaches the
// executor's stderr so tool diagnostics stay visible.
func (e *Executor) Output(ctx context.Context, name string, args ...string) (string, error) {
	return e.OutputIn(ctx, "", name, args...)
}

// OutputIn is Output with the child's working directory set to dir.
func (e *Executor) OutputIn(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = e.stderr

	err := e.run(cmd, name, args)
	return stdout.String(), err
}

// OutputCombined runs a command and returns stdout and stderr combined.
func (e *Executor) OutputCombined(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := e.run(cmd, name, args)
	return combined.String(), err
}

func (e *Executor) run(cmd *exec.Cmd, name string, args []string) error {
	command := FormatCommand(name, args...)
	e.logger.Debug("exec", "command", command)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Round(time.Millisecond)

	if err == nil {
		e.logger.Debug("exec finished", "command", command, "elapsed", elapsed)
		return nil
	}

	mapped := classify(err, name, command)
	e.logger.Debug("exec failed", "command", command, "elapsed", elapsed, "err", mapped)
	return mapped
}

// classify maps an *exec.Cmd error onto the taxonomy.
func classify(err error, name, command string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errs.CommandFailed(command, exitErr.ExitCode())
	}

	// Lookup failures and start-time path errors both mean the tool could not
	// be launched.
	var pathErr *fs.PathError
	if errors.Is(err, exec.ErrNotFound) || errors.As(err, &pathErr) {
		return errs.ManagerNotInstalled(name, err)
	}

	return err
}
