package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcgeq/mcg/internal/history"
	"github.com/mcgeq/mcg/internal/ui"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show dispatched commands",
	Long: `Display the package manager commands mcg has run, newest first.
Dry runs are not recorded. Recording can be turned off with
history = false in the [general] section of the config file.

Examples:
  mcg history                    # Show recent history
  mcg history -l 50              # Show the last 50 commands
  mcg history --clear            # Forget everything`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if historyClear {
		return clearHistory(store)
	}

	entries, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	ui.PrintHistory(cmd.OutOrStdout(), entries)

	if len(entries) > 0 {
		total, _ := store.Count()
		ui.MutedMsg("\nShowing %d of %d entries", len(entries), total)
	}
	return nil
}

func clearHistory(store *history.Store) error {
	total, err := store.Count()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if total == 0 {
		ui.MutedMsg("History is already empty")
		return nil
	}

	if !cfg.General.AutoConfirm {
		confirmed, err := ui.Confirm(fmt.Sprintf("Delete %d history entries?", total), false)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	ui.SuccessMsg("Deleted %d history entries", total)
	return nil
}
