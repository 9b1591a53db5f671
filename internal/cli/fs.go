package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcgeq/mcg/internal/ui"
	"github.com/mcgeq/mcg/pkg/fsops"
)

var fsRecursive bool

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "File and directory helpers",
	Long: `Create, remove, copy and move files and directories with the same
behaviour on every platform.

Examples:
  mcg fs create src/utils/       # trailing slash: directory
  mcg fs touch src/main.rs       # file, parents created
  mcg fs copy assets dist/       # copy a tree
  mcg fs move old.txt new.txt    # rename
  mcg fs remove -y build         # delete without asking`,
}

var fsCreateCmd = &cobra.Command{
	Use:     "create <path>",
	Aliases: []string{"c", "touch"},
	Short:   "Create a directory or file",
	Long: `Create a directory when the path ends with a separator or already is
a directory, and an empty file otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if skipDryRun("create %s", args[0]) {
			return nil
		}
		typ, err := fsops.Create(args[0], fsRecursive)
		if err != nil {
			return err
		}
		ui.SuccessMsg("Created %s %s", typ, args[0])
		return nil
	},
}

var fsRemoveCmd = &cobra.Command{
	Use:     "remove <path>",
	Aliases: []string{"r"},
	Short:   "Remove a directory or file",
	Args:    cobra.ExactArgs(1),
	RunE:    runFsRemove,
}

var fsCopyCmd = &cobra.Command{
	Use:     "copy <src> <dest>",
	Aliases: []string{"y"},
	Short:   "Copy a directory or file",
	Long: `Copy a file, or a directory tree. Copying a file onto an existing
directory places it inside.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if skipDryRun("copy %s to %s", args[0], args[1]) {
			return nil
		}
		typ, err := fsops.Copy(args[0], args[1], fsRecursive)
		if err != nil {
			return err
		}
		ui.SuccessMsg("Copied %s %s to %s", typ, args[0], args[1])
		return nil
	},
}

var fsMoveCmd = &cobra.Command{
	Use:     "move <src> <dest>",
	Aliases: []string{"m"},
	Short:   "Move or rename a directory or file",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if skipDryRun("move %s to %s", args[0], args[1]) {
			return nil
		}
		typ, err := fsops.Move(args[0], args[1])
		if err != nil {
			return err
		}
		ui.SuccessMsg("Moved %s %s to %s", typ, args[0], args[1])
		return nil
	},
}

func init() {
	fsCreateCmd.Flags().BoolVarP(&fsRecursive, "recursive", "r", true, "create missing parent directories")
	fsRemoveCmd.Flags().BoolVarP(&fsRecursive, "recursive", "r", true, "remove directories with their contents")
	fsCopyCmd.Flags().BoolVarP(&fsRecursive, "recursive", "r", true, "copy directories with their contents")

	fsCmd.AddCommand(fsCreateCmd)
	fsCmd.AddCommand(fsRemoveCmd)
	fsCmd.AddCommand(fsCopyCmd)
	fsCmd.AddCommand(fsMoveCmd)
}

func runFsRemove(cmd *cobra.Command, args []string) error {
	path := args[0]
	if skipDryRun("remove %s", path) {
		return nil
	}

	// A missing path falls through to Remove, which reports it.
	if info, err := os.Lstat(path); err == nil && !cfg.General.AutoConfirm {
		prompt := fmt.Sprintf("Remove %s?", path)
		if info.IsDir() && fsRecursive {
			prompt = fmt.Sprintf("Remove %s and everything in it?", path)
		}
		confirmed, err := ui.Confirm(prompt, false)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	typ, err := fsops.Remove(path, fsRecursive)
	if err != nil {
		return err
	}
	ui.SuccessMsg("Removed %s %s", typ, path)
	return nil
}

// skipDryRun prints the operation instead of running it under --dry-run.
func skipDryRun(format string, args ...any) bool {
	if !cfg.General.DryRun {
		return false
	}
	ui.MutedMsg("[dry-run] Would "+format, args...)
	return true
}
