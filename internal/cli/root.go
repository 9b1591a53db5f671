// Package cli implements the command-line interface for mcg.
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mcgeq/mcg/internal/config"
	"github.com/mcgeq/mcg/internal/executor"
	"github.com/mcgeq/mcg/internal/history"
	"github.com/mcgeq/mcg/internal/ui"
	"github.com/mcgeq/mcg/pkg/dispatch"
	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
	"github.com/mcgeq/mcg/pkg/manager/detector"
	"github.com/mcgeq/mcg/pkg/manager/tools"
)

var (
	// Global flags
	cfgFile     string
	managerFlag string
	dryRun      bool
	yes         bool
	verbose     bool
	noColor     bool

	// Global state
	cfg          *config.Config
	project      *config.ProjectConfig
	registry     *manager.Registry
	resolver     *detector.Detector
	runner       *executor.Executor
	logger       *log.Logger
	historyStore *history.Store

	// managerOverride is --manager, or the project's manager setting.
	managerOverride string
)

// Build metadata - set at build time via ldflags
var (
	Version   = "0.3.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mcg",
	Short: "One command set for every project package manager",
	Long: `mcg detects the package manager that governs the current project
and translates generic verbs into its native command line.

Supported package managers:
  Rust:    cargo
  Node:    npm, pnpm, yarn, bun
  Python:  pip, pdm, poetry

Detection looks for lock files and manifests in the working directory
and its ancestors. A .mg.toml file or --manager overrides it.

Examples:
  mcg add lodash -D              # npm install lodash -D, pnpm add lodash -D, ...
  mcg remove serde               # cargo remove serde
  mcg install --frozen-lockfile  # install dependencies from the lock file
  mcg analyze --format json      # dependency tree as JSON
  mcg -n upgrade                 # show the upgrade command without running it`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that forward arguments parse their own flags and
		// initialize afterwards.
		if cmd.DisableFlagParsing {
			return nil
		}
		return initializeApp()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&managerFlag, "manager", "m", "", "package manager to use instead of detection")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "print commands without executing them")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(fsCmd)
}

// Execute runs the root command.
func Execute() error {
	defer closeHistory()
	return rootCmd.Execute()
}

// initializeApp sets up the application state.
func initializeApp() error {
	// Load configuration
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Apply global flag overrides
	if yes {
		cfg.General.AutoConfirm = true
	}
	if dryRun {
		cfg.General.DryRun = true
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.Color = false
	}

	// Initialize UI
	ui.Init(cfg.ShouldUseColor(), cfg.Output.Unicode)
	logger = newLogger(os.Stderr, logLevel(cfg))

	wd, err := os.Getwd()
	if err != nil {
		return errs.CurrentDirFailed(err)
	}
	project, err = config.LoadProject(wd)
	if err != nil {
		return err
	}
	if p := project.Path(); p != "" {
		logger.Debug("loaded project config", "path", p)
	}

	runner = executor.New(executor.WithLogger(logger))
	registry = tools.NewRegistry(tools.Options{
		Runner:   runner,
		Binaries: cfg.Binaries(),
	})

	managerOverride = effectiveOverride(project)
	resolver = newResolver(managerOverride)

	return nil
}

// effectiveOverride returns --manager, or else the project's manager setting.
func effectiveOverride(p *config.ProjectConfig) string {
	if managerFlag != "" {
		return managerFlag
	}
	return p.Manager
}

func newResolver(override string) *detector.Detector {
	return detector.New(registry, detector.NewCache(),
		detector.WithOverride(override),
		detector.WithLogger(logger),
	)
}

// resolverFor returns a resolver honouring the .mg.toml that governs dir,
// which differs from the working directory's when dir points elsewhere.
func resolverFor(dir string) (*detector.Detector, string, error) {
	if dir == "" {
		return resolver, managerOverride, nil
	}
	p, err := config.LoadProject(dir)
	if err != nil {
		return nil, "", err
	}
	override := effectiveOverride(p)
	return newResolver(override), override, nil
}

// newDispatcher builds the dispatcher for package commands. The history
// store is opened here so commands that never dispatch leave it alone.
func newDispatcher() *dispatch.Dispatcher {
	opts := []dispatch.Option{
		dispatch.WithReporter(ui.NewReporter(nil, nil)),
		dispatch.WithOverrides(project),
		dispatch.WithLogger(logger),
		dispatch.WithDryRun(cfg.General.DryRun),
		dispatch.WithSlowThreshold(cfg.General.SlowThreshold),
	}

	if cfg.General.History && !cfg.General.DryRun {
		store, err := history.Open()
		if err != nil {
			logger.Warn("history disabled", "err", err)
		} else {
			historyStore = store
			opts = append(opts, dispatch.WithRecorder(store))
		}
	}

	return dispatch.New(resolver, opts...)
}

func closeHistory() {
	if historyStore == nil {
		return
	}
	if err := historyStore.Close(); err != nil && logger != nil {
		logger.Warn("failed to close history", "err", err)
	}
	historyStore = nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print mcg version",
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("mcg version %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  Commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  Built:  %s", BuildTime)
		}
	},
}
