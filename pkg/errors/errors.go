// Package errors defines the error taxonomy shared by the manager adapters,
// the detector, the dispatcher and the filesystem helpers.
//
// Every failure the engine produces is an *Error carrying a Kind. Callers
// branch on the kind with Is, or pull the structured fields out with As:
//
//	if errs.Is(err, errs.KindCommandFailed) {
//	    e, _ := errs.As(err)
//	    os.Exit(e.ExitCode)
//	}
//
// Errors that wrap an underlying cause (an *os.PathError, a TOML decode error)
// keep it reachable through Unwrap.
package errors

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a failure.
type Kind string

const (
	// Detection and registry
	KindManagerNotDetected  Kind = "MANAGER_NOT_DETECTED"
	KindUnsupportedManager  Kind = "UNSUPPORTED_MANAGER"
	KindManagerNotInstalled Kind = "MANAGER_NOT_INSTALLED"

	// Execution
	KindCommandFailed  Kind = "COMMAND_FAILED"
	KindNoDependencies Kind = "NO_DEPENDENCIES"

	// Input and environment
	KindInvalidPackageName Kind = "INVALID_PACKAGE_NAME"
	KindCurrentDirFailed   Kind = "CURRENT_DIR_FAILED"
	KindConfigReadFailed   Kind = "CONFIG_READ_FAILED"
	KindConfigParseFailed  Kind = "CONFIG_PARSE_FAILED"

	// Filesystem operations
	KindCreateDirFailed  Kind = "CREATE_DIR_FAILED"
	KindCreateFileFailed Kind = "CREATE_FILE_FAILED"
	KindRemoveFailed     Kind = "REMOVE_FAILED"
	KindCopyFailed       Kind = "COPY_FAILED"
	KindMoveFailed       Kind = "MOVE_FAILED"
	KindPathNotFound     Kind = "PATH_NOT_FOUND"
)

// NoExitCode is recorded when a command terminated without an exit status,
// for example because it was killed by a signal.
const NoExitCode = -1

// Error is a structured failure. Only the fields relevant to Kind are set.
type Error struct {
	Kind     Kind
	Message  string
	Manager  string // tool or manager name
	Command  string // full command line as displayed to the user
	ExitCode int
	Path     string
	Dest     string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error of the given kind around an existing error.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// ManagerNotDetected reports that no marker file was found from dir upward.
func ManagerNotDetected(dir string) *Error {
	e := New(KindManagerNotDetected, "no supported package manager detected in %s", dir)
	e.Path = dir
	return e
}

// UnsupportedManager reports a manager name that has no registered adapter.
func UnsupportedManager(name string) *Error {
	e := New(KindUnsupportedManager, "unsupported package manager: %s", name)
	e.Manager = name
	return e
}

// ManagerNotInstalled reports that the tool's binary could not be launched.
func ManagerNotInstalled(tool string, cause error) *Error {
	e := Wrap(KindManagerNotInstalled, cause, "package manager '%s' not found, please install it first", tool)
	e.Manager = tool
	return e
}

// CommandFailed reports a tool invocation that exited with a non-zero status.
func CommandFailed(command string, code int) *Error {
	e := New(KindCommandFailed, "command execution failed: %s (exit code: %d)", command, code)
	e.Command = command
	e.ExitCode = code
	return e
}

// NoDependencies reports that a dependency listing produced nothing parseable.
func NoDependencies(manager string, cause error) *Error {
	e := Wrap(KindNoDependencies, cause, "no dependencies could be parsed from %s output", manager)
	e.Manager = manager
	return e
}

// InvalidPackageName reports a package identifier rejected before dispatch.
func InvalidPackageName(name, reason string) *Error {
	if reason != "" {
		return New(KindInvalidPackageName, "invalid package name: %s (%s)", name, reason)
	}
	return New(KindInvalidPackageName, "invalid package name: %q", name)
}

// CurrentDirFailed reports that the working directory could not be resolved.
func CurrentDirFailed(cause error) *Error {
	return Wrap(KindCurrentDirFailed, cause, "failed to get current directory")
}

// ConfigReadFailed reports an unreadable configuration file.
func ConfigReadFailed(path string, cause error) *Error {
	e := Wrap(KindConfigReadFailed, cause, "failed to read config file at %s", path)
	e.Path = path
	return e
}

// ConfigParseFailed reports a configuration file that is not valid TOML or
// fails validation.
func ConfigParseFailed(path string, cause error) *Error {
	e := Wrap(KindConfigParseFailed, cause, "failed to parse config file at %s", path)
	e.Path = path
	return e
}

// CreateDirFailed reports a directory that could not be created.
func CreateDirFailed(path string, cause error) *Error {
	e := Wrap(KindCreateDirFailed, cause, "failed to create directory at %s", path)
	e.Path = path
	return e
}

// CreateFileFailed reports a file that could not be created.
func CreateFileFailed(path string, cause error) *Error {
	e := Wrap(KindCreateFileFailed, cause, "failed to create file at %s", path)
	e.Path = path
	return e
}

// RemoveFailed reports a path that could not be removed.
func RemoveFailed(path string, cause error) *Error {
	e := Wrap(KindRemoveFailed, cause, "failed to remove path at %s", path)
	e.Path = path
	return e
}

// CopyFailed reports a failed copy from src to dst.
func CopyFailed(src, dst string, cause error) *Error {
	e := Wrap(KindCopyFailed, cause, "failed to copy from %s to %s", src, dst)
	e.Path = src
	e.Dest = dst
	return e
}

// MoveFailed reports a failed move from src to dst.
func MoveFailed(src, dst string, cause error) *Error {
	e := Wrap(KindMoveFailed, cause, "failed to move from %s to %s", src, dst)
	e.Path = src
	e.Dest = dst
	return e
}

// PathNotFound reports a path that does not exist.
func PathNotFound(path string) *Error {
	e := New(KindPathNotFound, "path not found: %s", path)
	e.Path = path
	return e
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err's chain contains an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// GetKind extracts the kind from an error, or "" if err is not an *Error.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// ExitCode maps an error to a process exit status. A failed tool invocation
// propagates the tool's own status when it is positive; every other failure
// exits with 1. A nil error exits with 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := As(err); ok && e.Kind == KindCommandFailed && e.ExitCode > 0 {
		return e.ExitCode
	}
	return 1
}
