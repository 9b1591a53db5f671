package manager

import "context"

// Manager defines the interface that every package manager adapter implements.
// It provides a uniform API over tools whose command vocabularies differ.
type Manager interface {
	// Name returns the lowercase identifier (e.g., "cargo", "pnpm").
	Name() string

	// Kind returns the manager's kind.
	Kind() Kind

	// DisplayName returns a human-readable name (e.g., "Cargo (Rust)").
	DisplayName() string

	// Ecosystem returns the language ecosystem the tool serves.
	Ecosystem() Ecosystem

	// Binary returns the executable that is invoked.
	Binary() string

	// IsAvailable returns true if the binary is on PATH.
	IsAvailable() bool

	// CommandArgs maps a verb to the tool's subcommand words. Verbs the tool
	// does not translate come back as a single-element slice.
	CommandArgs(verb Verb) []string

	// FormatCommand renders the exact command line Execute runs. It has no
	// side effects.
	FormatCommand(verb Verb, packages []string, opts Options) string

	// Execute runs the tool with inherited stdio. It fails with
	// ManagerNotInstalled when the binary cannot be launched and with
	// CommandFailed when the tool exits non-zero.
	Execute(ctx context.Context, verb Verb, packages []string, opts Options) error
}

// Analyzer is implemented by managers able to produce a structured
// dependency tree.
type Analyzer interface {
	// AnalyzeCommand returns the command line Analyze runs.
	AnalyzeCommand() string

	// Analyze runs the tool's machine-readable listing in dir and parses it.
	// Output with no recognizable dependencies fails with NoDependencies.
	Analyze(ctx context.Context, dir string) ([]DependencyNode, error)
}

// Configurable is implemented by managers whose binary and per-verb command
// words can be overridden by configuration.
type Configurable interface {
	SetBinary(binary string)
	OverrideCommand(verb Verb, args []string)
}
