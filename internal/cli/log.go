package cli

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/mcgeq/mcg/internal/config"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logLevel picks the level from the config. --verbose forces debug; an
// unset or unparsable level means info.
func logLevel(c *config.Config) log.Level {
	if c.Output.Verbose {
		return log.DebugLevel
	}
	if c.Output.Level == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(c.Output.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
