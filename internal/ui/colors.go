// Package ui provides terminal output helpers for mcg.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan)
	Header  = color.New(color.FgMagenta, color.Bold)
	Muted   = color.New(color.FgHiBlack)

	// Colors for specific elements
	ManagerName = color.New(color.FgCyan)
	CommandLine = color.New(color.FgYellow)
	PackageName = color.New(color.FgWhite, color.Bold)
	Version     = color.New(color.FgGreen)
)

// Stdout and Stderr are where messages go. Errors and warnings use Stderr.
var (
	Stdout io.Writer = color.Output
	Stderr io.Writer = color.Error
)

// UseColors represents whether colors should be used.
var UseColors = true

// UseUnicode represents whether unicode symbols should be used.
var UseUnicode = true

// Symbols for status indicators
var (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "!"
	SymbolInfo    = "→"
	SymbolArrow   = "→"
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Init initializes the UI settings. Colors are disabled when stdout is not a
// terminal or NO_COLOR is set.
func Init(useColors, useUnicode bool) {
	UseColors = useColors && os.Getenv("NO_COLOR") == "" && IsTerminal(os.Stdout)
	UseUnicode = useUnicode

	color.NoColor = !UseColors

	if !useUnicode {
		SymbolSuccess = "[OK]"
		SymbolError = "[ERROR]"
		SymbolWarning = "[WARN]"
		SymbolInfo = "->"
		SymbolArrow = "->"
	}
}

// SuccessMsg prints a success message.
func SuccessMsg(format string, args ...any) {
	Success.Fprintf(Stdout, SymbolSuccess+" "+format+"\n", args...)
}

// ErrorMsg prints an error message to stderr.
func ErrorMsg(format string, args ...any) {
	Error.Fprintf(Stderr, SymbolError+" "+format+"\n", args...)
}

// WarningMsg prints a warning message to stderr.
func WarningMsg(format string, args ...any) {
	Warning.Fprintf(Stderr, SymbolWarning+" "+format+"\n", args...)
}

// InfoMsg prints an info message.
func InfoMsg(format string, args ...any) {
	Info.Fprintf(Stdout, SymbolInfo+" "+format+"\n", args...)
}

// HeaderMsg prints a header message.
func HeaderMsg(format string, args ...any) {
	Header.Fprintf(Stdout, "\n"+format+"\n", args...)
}

// MutedMsg prints a muted (dim) message.
func MutedMsg(format string, args ...any) {
	Muted.Fprintf(Stdout, format+"\n", args...)
}

// Println prints a plain line with formatting.
func Println(format string, args ...any) {
	fmt.Fprintf(Stdout, format+"\n", args...)
}

// Bold returns a bold string.
func Bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// Green returns a green string.
func Green(s string) string {
	return color.GreenString(s)
}

// Red returns a red string.
func Red(s string) string {
	return color.RedString(s)
}

// Yellow returns a yellow string.
func Yellow(s string) string {
	return color.YellowString(s)
}

// Cyan returns a cyan string.
func Cyan(s string) string {
	return color.CyanString(s)
}
