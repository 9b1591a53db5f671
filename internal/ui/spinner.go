package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps the spinner library for consistent styling. It draws on
// stderr so piped stdout (analyze --format json) stays clean, and does
// nothing when stderr is not a terminal.
type Spinner struct {
	s       *spinner.Spinner
	enabled bool
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	charSet := spinner.CharSets[14] // ⣾⣽⣻⢿⡿⣟⣯⣷
	if !UseUnicode {
		charSet = spinner.CharSets[9] // |/-\
	}

	s := spinner.New(charSet, 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if UseColors {
		_ = s.Color("cyan") //nolint:errcheck
	}

	return &Spinner{s: s, enabled: IsTerminal(os.Stderr)}
}

// Start starts the spinner.
func (sp *Spinner) Start() {
	if sp.enabled {
		sp.s.Start()
	}
}

// Stop stops the spinner.
func (sp *Spinner) Stop() {
	if sp.enabled {
		sp.s.Stop()
	}
}

// UpdateMessage updates the spinner message.
func (sp *Spinner) UpdateMessage(message string) {
	sp.s.Suffix = " " + message
}

// WithSpinner runs fn while a spinner is shown. The spinner is cleared
// before returning so callers can print the result.
func WithSpinner(message string, fn func() error) error {
	sp := NewSpinner(message)
	sp.Start()
	defer sp.Stop()

	return fn()
}
