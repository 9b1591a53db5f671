package cli

import (
	"errors"

	"github.com/mcgeq/mcg/pkg/dispatch"
)

var (
	// ErrNoPackages is returned when a command needs packages and got none.
	ErrNoPackages = errors.New("no packages specified")

	// ErrNoVerb is returned when exec is called without a verb.
	ErrNoVerb = errors.New("no command specified")

	// ErrAborted is returned when the user aborts an operation.
	ErrAborted = errors.New("operation aborted by user")

	// ErrNotTerminal is returned when interactive mode runs without a terminal.
	ErrNotTerminal = errors.New("interactive mode requires a terminal")

	// ErrAnalyzeUnsupported is returned when the detected manager has no
	// structured dependency listing.
	ErrAnalyzeUnsupported = dispatch.ErrAnalyzeUnsupported
)
