package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcgeq/mcg/internal/history"
	"github.com/mcgeq/mcg/pkg/manager"
)

// Table wraps tabwriter for consistent styling.
type Table struct {
	writer *tabwriter.Writer
}

// NewTable creates a table on Stdout. The header row is written immediately.
func NewTable(header []string) *Table {
	return NewTableWriter(Stdout, header)
}

// NewTableWriter creates a new table that writes to a specific writer.
func NewTableWriter(w io.Writer, header []string) *Table {
	t := &Table{writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	if len(header) > 0 {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = Bold(strings.ToUpper(h))
		}
		t.AddRow(row)
	}
	return t
}

// AddRow adds a row to the table.
func (t *Table) AddRow(row []string) {
	fmt.Fprintln(t.writer, strings.Join(row, "\t"))
}

// Render flushes the table.
func (t *Table) Render() {
	t.writer.Flush()
}

// PrintManagers prints one row per manager with its availability.
func PrintManagers(w io.Writer, infos []manager.Info) {
	if len(infos) == 0 {
		Muted.Fprintln(w, "No package managers registered")
		return
	}

	t := NewTableWriter(w, []string{"manager", "ecosystem", "binary", "status", "version"})
	for _, info := range infos {
		status := Muted.Sprint("not found")
		if info.Available {
			status = Success.Sprint("installed")
		}
		version := info.Version
		if version == "" {
			version = "-"
		}
		t.AddRow([]string{
			ManagerName.Sprint(string(info.Kind)),
			string(info.Ecosystem),
			info.Binary,
			status,
			Version.Sprint(version),
		})
	}
	t.Render()
}

// PrintHistory prints history entries, newest first as given.
func PrintHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		Muted.Fprintln(w, "No history recorded")
		return
	}

	t := NewTableWriter(w, []string{"time", "manager", "command", "status", "duration"})
	for _, e := range entries {
		status := Success.Sprint(SymbolSuccess)
		if !e.Success {
			status = Error.Sprintf("%s %d", SymbolError, e.ExitCode)
		}
		t.AddRow([]string{
			Muted.Sprint(e.FormatTime()),
			ManagerName.Sprint(e.Manager),
			e.Command,
			status,
			e.Duration.Round(10 * time.Millisecond).String(),
		})
	}
	t.Render()
}
