package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcgeq/mcg/internal/ui"
	"github.com/mcgeq/mcg/pkg/dispatch"
	"github.com/mcgeq/mcg/pkg/manager"
)

const forwardingHelp = `
Arguments are package names up to the first one starting with "-"; that
argument and everything after it is passed to the package manager as is.
mcg's own flags (-n, -y, -m, -v) are only recognized before the first
package. Use -- to pass a flag mcg would otherwise take.`

var addCmd = &cobra.Command{
	Use:     "add <packages...> [options...]",
	Aliases: []string{"a"},
	Short:   "Add packages to the project",
	Long: `Add one or more packages with the project's package manager.
` + forwardingHelp + `

Examples:
  mcg add lodash react -D        # npm install lodash react -D
  mcg add serde@1                # cargo add serde@1
  mcg add -n requests            # print "pip install requests" only
  mcg a zod --filter web         # pnpm add zod --filter web`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPackage(cmd, manager.VerbAdd, args)
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <packages...> [options...]",
	Aliases: []string{"rm"},
	Short:   "Remove packages from the project",
	Long: `Remove one or more packages with the project's package manager.
Asks for confirmation unless -y is given.
` + forwardingHelp + `

Examples:
  mcg remove lodash              # npm uninstall lodash
  mcg rm -y serde                # cargo remove serde, no prompt`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPackage(cmd, manager.VerbRemove, args)
	},
}

var upgradeCmd = &cobra.Command{
	Use:     "upgrade [packages...] [options...]",
	Aliases: []string{"up"},
	Short:   "Upgrade packages",
	Long: `Upgrade the named packages, or every dependency when none are named.
` + forwardingHelp + `

Examples:
  mcg upgrade                    # cargo update, npm update, ...
  mcg up typescript              # upgrade one package`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPackage(cmd, manager.VerbUpgrade, args)
	},
}

var installCmd = &cobra.Command{
	Use:     "install [options...]",
	Aliases: []string{"i"},
	Short:   "Install the project's dependencies",
	Long: `Install every dependency declared by the project.
` + forwardingHelp + `

Examples:
  mcg install                    # npm install, pdm install, cargo check, ...
  mcg i --frozen-lockfile        # pnpm install --frozen-lockfile`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPackage(cmd, manager.VerbInstall, args)
	},
}

var execCmd = &cobra.Command{
	Use:     "exec <command> [args...]",
	Aliases: []string{"x"},
	Short:   "Run any package manager command",
	Long: `Run a command of the detected package manager. Generic verbs (add,
remove, upgrade, install, analyze) are translated; anything else is passed
through unchanged.

Examples:
  mcg exec run build             # npm run build, pnpm run build, ...
  mcg x outdated                 # cargo outdated, poetry outdated, ...`,
	DisableFlagParsing: true,
	RunE: runExec,
}

// runPackage dispatches one generic verb.
func runPackage(cmd *cobra.Command, verb manager.Verb, args []string) error {
	rest, help, err := prepareForwarded(cmd, args)
	if err != nil || help {
		return err
	}

	packages, opts := manager.SplitArgs(rest)
	packages = cfg.ResolveAliases(packages)

	if verb.RequiresPackages() && len(packages) == 0 {
		return ErrNoPackages
	}

	if verb == manager.VerbRemove {
		if err := confirmRemove(packages); err != nil {
			return err
		}
	}

	return dispatchVerb(cmd, verb, packages, opts)
}

func runExec(cmd *cobra.Command, args []string) error {
	rest, help, err := prepareForwarded(cmd, args)
	if err != nil || help {
		return err
	}
	if len(rest) == 0 {
		return ErrNoVerb
	}

	verb := manager.Verb(rest[0])
	packages, opts := manager.SplitArgs(rest[1:])
	if verb.RequiresPackages() && len(packages) == 0 {
		return ErrNoPackages
	}

	return dispatchVerb(cmd, verb, packages, opts)
}

func dispatchVerb(cmd *cobra.Command, verb manager.Verb, packages []string, opts manager.Options) error {
	_, err := newDispatcher().Dispatch(cmd.Context(), dispatch.Request{
		Verb:     verb,
		Packages: packages,
		Options:  opts,
	})
	return err
}

// confirmRemove asks before removing packages. Detection runs first so the
// prompt can name the manager; its result is cached for the dispatch.
func confirmRemove(packages []string) error {
	if cfg.General.AutoConfirm || cfg.General.DryRun {
		return nil
	}

	kind, err := resolver.DetectKind("")
	if err != nil {
		return err
	}

	confirmed, err := ui.Confirm(fmt.Sprintf("Remove %s with %s?", strings.Join(packages, ", "), kind), true)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrAborted
	}
	return nil
}
