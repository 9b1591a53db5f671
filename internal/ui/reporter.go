package ui

import (
	"fmt"
	"io"
	"time"
)

// Reporter prints the progress of a dispatched command.
type Reporter struct {
	out  io.Writer
	errw io.Writer
}

// NewReporter returns a Reporter printing to out, with warnings on errw.
// Nil writers fall back to Stdout and Stderr.
func NewReporter(out, errw io.Writer) *Reporter {
	if out == nil {
		out = Stdout
	}
	if errw == nil {
		errw = Stderr
	}
	return &Reporter{out: out, errw: errw}
}

// Using announces the selected manager.
func (r *Reporter) Using(name string) {
	fmt.Fprintf(r.out, "Using %s package manager.\n", ManagerName.Sprint(name))
}

// Executing shows the command about to run.
func (r *Reporter) Executing(command string) {
	fmt.Fprintf(r.out, "Executing: %s\n", CommandLine.Sprint(command))
}

// DryRun shows the command that would have run.
func (r *Reporter) DryRun(command string) {
	fmt.Fprintf(r.out, "%s Would execute: %s\n", Muted.Sprint("[dry-run]"), CommandLine.Sprint(command))
}

// Completed reports success, warning when the command ran longer than the
// slow threshold.
func (r *Reporter) Completed(command string, elapsed time.Duration, slow bool) {
	Success.Fprintf(r.out, "%s Command completed successfully.\n", SymbolSuccess)
	if slow {
		Warning.Fprintf(r.errw, "%s %s took %s\n", SymbolWarning, command, elapsed.Round(time.Millisecond))
	}
}
