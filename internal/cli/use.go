package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcgeq/mcg/internal/config"
	"github.com/mcgeq/mcg/internal/ui"
	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
)

var useCmd = &cobra.Command{
	Use:   "use [manager]",
	Short: "Pin the project's package manager",
	Long: `Write the package manager to the project's .mg.toml so detection is
skipped from then on. The nearest existing .mg.toml is updated; otherwise
one is created in the working directory. Without an argument a list of
managers is shown to pick from.

Examples:
  mcg use pnpm                   # always use pnpm here
  mcg use                        # pick interactively`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUse,
}

func runUse(cmd *cobra.Command, args []string) error {
	var (
		kind manager.Kind
		err  error
	)
	if len(args) == 1 {
		kind, err = lookupKind(args[0])
	} else {
		kind, err = selectKind()
	}
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return errs.CurrentDirFailed(err)
	}

	project.Manager = string(kind)
	path, err := config.SaveProject(wd, project)
	if err != nil {
		return err
	}

	ui.SuccessMsg("Using %s for %s", ui.ManagerName.Sprint(string(kind)), relativeTo(wd, path))

	if m, err := registry.Create(kind); err == nil && !m.IsAvailable() {
		ui.WarningMsg("%s is not installed", m.Binary())
	}
	return nil
}

// lookupKind resolves a manager name, suggesting the closest registered
// name when it is unknown.
func lookupKind(name string) (manager.Kind, error) {
	if kind, ok := registry.Lookup(name); ok {
		return kind, nil
	}
	if s := registry.Suggest(name); len(s) > 0 {
		return "", fmt.Errorf("%w (did you mean %s?)", errs.UnsupportedManager(name), s[0])
	}
	return "", errs.UnsupportedManager(name)
}

func selectKind() (manager.Kind, error) {
	var infos []manager.Info
	for _, m := range registry.All() {
		infos = append(infos, manager.Describe(m))
	}
	return ui.SelectManager(infos, "Select package manager")
}
