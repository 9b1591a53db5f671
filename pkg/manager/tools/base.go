// Package tools implements the adapters for the supported project package
// managers.
package tools

import (
	"context"
	"os/exec"
	"strings"

	"github.com/mcgeq/mcg/internal/executor"
	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
)

// Runner launches subprocesses in a working directory. *executor.Executor
// satisfies it.
type Runner interface {
	RunIn(ctx context.Context, dir, name string, args ...string) error
	OutputIn(ctx context.Context, dir, name string, args ...string) (string, error)
}

// BaseManager provides common functionality for all adapters: identity, the
// verb table and command execution. Tool types embed it and add Analyze.
type BaseManager struct {
	kind        manager.Kind
	displayName string
	binary      string
	ecosystem   manager.Ecosystem
	verbs       map[manager.Verb][]string
	analyzeArgs []string
	runner      Runner
}

// NewBaseManager creates a BaseManager. verbs maps each generic verb to the
// tool's subcommand words; analyzeArgs is the machine-readable listing used by
// Analyze.
func NewBaseManager(kind manager.Kind, displayName string, eco manager.Ecosystem, verbs map[manager.Verb][]string, analyzeArgs []string) *BaseManager {
	return &BaseManager{
		kind:        kind,
		displayName: displayName,
		binary:      string(kind),
		ecosystem:   eco,
		verbs:       verbs,
		analyzeArgs: analyzeArgs,
		runner:      executor.New(),
	}
}

// Name returns the lowercase identifier for this manager.
func (b *BaseManager) Name() string {
	return string(b.kind)
}

// Kind returns the manager kind.
func (b *BaseManager) Kind() manager.Kind {
	return b.kind
}

// DisplayName returns the human-readable name.
func (b *BaseManager) DisplayName() string {
	return b.displayName
}

// Ecosystem returns the language ecosystem.
func (b *BaseManager) Ecosystem() manager.Ecosystem {
	return b.ecosystem
}

// Binary returns the executable invoked for this manager.
func (b *BaseManager) Binary() string {
	return b.binary
}

// SetBinary changes the executable (e.g., pip3 instead of pip).
func (b *BaseManager) SetBinary(binary string) {
	if binary != "" {
		b.binary = binary
	}
}

// IsAvailable returns true if the binary is on PATH.
func (b *BaseManager) IsAvailable() bool {
	_, err := exec.LookPath(b.binary)
	return err == nil
}

// Runner returns the runner used to launch the tool.
func (b *BaseManager) Runner() Runner {
	return b.runner
}

// SetRunner replaces the runner.
func (b *BaseManager) SetRunner(r Runner) {
	if r != nil {
		b.runner = r
	}
}

// CommandArgs maps verb to the tool's subcommand words. Untranslated verbs
// pass through as-is.
func (b *BaseManager) CommandArgs(verb manager.Verb) []string {
	if words, ok := b.verbs[verb]; ok {
		return append([]string(nil), words...)
	}
	return []string{string(verb)}
}

// OverrideCommand replaces the subcommand words for verb. An empty args
// leaves the table untouched.
func (b *BaseManager) OverrideCommand(verb manager.Verb, args []string) {
	if len(args) == 0 {
		return
	}
	verbs := make(map[manager.Verb][]string, len(b.verbs)+1)
	for k, v := range b.verbs {
		verbs[k] = v
	}
	verbs[verb] = append([]string(nil), args...)
	b.verbs = verbs
}

// Args builds the argument vector handed to the binary.
func (b *BaseManager) Args(verb manager.Verb, packages []string, opts manager.Options) []string {
	args := b.CommandArgs(verb)
	args = append(args, packages...)
	return append(args, opts.Args...)
}

// FormatCommand renders the command line Execute runs.
func (b *BaseManager) FormatCommand(verb manager.Verb, packages []string, opts manager.Options) string {
	return executor.FormatCommand(b.binary, b.Args(verb, packages, opts)...)
}

// Execute runs the translated command with inherited stdio in opts.Dir.
func (b *BaseManager) Execute(ctx context.Context, verb manager.Verb, packages []string, opts manager.Options) error {
	return b.runner.RunIn(ctx, opts.Dir, b.binary, b.Args(verb, packages, opts)...)
}

// AnalyzeCommand returns the command line used by Analyze.
func (b *BaseManager) AnalyzeCommand() string {
	return executor.FormatCommand(b.binary, b.analyzeArgs...)
}

// analyzeOutput captures the output of the structured listing. Some tools
// exit non-zero while still printing a usable tree (npm with unmet peers), so
// a CommandFailed with output is handed to the parser.
func (b *BaseManager) analyzeOutput(ctx context.Context, dir string) (string, error) {
	out, err := b.runner.OutputIn(ctx, dir, b.binary, b.analyzeArgs...)
	if err != nil && (!errs.Is(err, errs.KindCommandFailed) || strings.TrimSpace(out) == "") {
		return "", err
	}
	return out, nil
}

// noDeps builds the NoDependencies error for this manager.
func (b *BaseManager) noDeps(cause error) error {
	return errs.NoDependencies(b.Name(), cause)
}
