// Package history records dispatched package-manager commands with BoltDB.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
)

// Entry is one dispatched command.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Verb      manager.Verb  `json:"verb"`
	Manager   string        `json:"manager"`
	Packages  []string      `json:"packages,omitempty"`
	Command   string        `json:"command"`
	Dir       string        `json:"dir,omitempty"`
	Success   bool          `json:"success"`
	ExitCode  int           `json:"exit_code"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// NewEntry creates an entry for a command that is about to run.
func NewEntry(verb manager.Verb, managerName, command string, packages []string) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Verb:      verb,
		Manager:   managerName,
		Packages:  packages,
		Command:   command,
		Success:   false, // Will be updated after the command completes
	}
}

// MarkSuccess marks the entry as successful.
func (e *Entry) MarkSuccess(d time.Duration) {
	e.Success = true
	e.ExitCode = 0
	e.Duration = d
}

// MarkFailed marks the entry as failed, keeping the tool's exit code when
// there is one.
func (e *Entry) MarkFailed(err error, d time.Duration) {
	e.Success = false
	e.Duration = d
	if err != nil {
		e.Error = err.Error()
		e.ExitCode = errs.ExitCode(err)
	}
}

// FormatTime returns a human-readable timestamp.
func (e *Entry) FormatTime() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// Summary returns a one-line description of the entry.
func (e *Entry) Summary() string {
	status := "ok"
	if !e.Success {
		status = fmt.Sprintf("failed, exit %d", e.ExitCode)
	}

	target := string(e.Verb)
	if len(e.Packages) > 0 {
		target += " " + strings.Join(e.Packages, " ")
	}

	return fmt.Sprintf("%s %s [%s] (%s)", e.FormatTime(), target, e.Manager, status)
}
