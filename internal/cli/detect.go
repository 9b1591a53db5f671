package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcgeq/mcg/internal/ui"
)

var detectAll bool

var detectCmd = &cobra.Command{
	Use:   "detect [dir]",
	Short: "Show which package manager governs a project",
	Long: `Report the package manager mcg would use for a directory (the
working directory by default).

With --all every matching marker is listed with its priority; the first
row is the one detection picks. Lower priority numbers win.

Examples:
  mcg detect                     # pnpm
  mcg detect --all ../web        # every candidate for ../web`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().BoolVarP(&detectAll, "all", "a", false, "list every candidate")
}

func runDetect(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	res, override, err := resolverFor(dir)
	if err != nil {
		return err
	}

	if !detectAll {
		m, err := res.Detect(dir)
		if err != nil {
			return err
		}
		ui.Println("%s %s", ui.ManagerName.Sprint(m.Name()), ui.Muted.Sprint(m.DisplayName()))
		if !m.IsAvailable() {
			ui.WarningMsg("%s is not installed", m.Binary())
		}
		return nil
	}

	if override != "" {
		ui.MutedMsg("Override in effect: %s", override)
	}

	matches, err := res.Candidates(dir)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		ui.MutedMsg("No package manager markers found")
		return nil
	}

	t := ui.NewTableWriter(cmd.OutOrStdout(), []string{"manager", "priority", "marker"})
	for _, match := range matches {
		t.AddRow([]string{
			ui.ManagerName.Sprint(string(match.Kind)),
			fmt.Sprint(match.Priority),
			relativeToWd(match.Marker),
		})
	}
	t.Render()
	return nil
}

// relativeToWd shortens path for display when it lies under the working
// directory.
func relativeToWd(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	return relativeTo(wd, path)
}

func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
