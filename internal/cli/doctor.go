package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcgeq/mcg/internal/config"
	"github.com/mcgeq/mcg/internal/executor"
	"github.com/mcgeq/mcg/internal/ui"
	"github.com/mcgeq/mcg/pkg/manager"
)

// probeTimeout bounds one "--version" call.
const probeTimeout = 5 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose package manager setup",
	Long: `Check which package managers are installed and which versions they
report, which one governs the working directory, and where mcg keeps its
files.

Examples:
  mcg doctor                     # Run diagnostics`,
	RunE: runDoctor,
}

// versionProber runs a binary and returns its stdout. *executor.Executor
// satisfies it.
type versionProber interface {
	Output(ctx context.Context, name string, args ...string) (string, error)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Version output is parsed, so the tools' stderr is dropped.
	quiet := executor.New(executor.WithLogger(logger), executor.WithStdio(nil, io.Discard, io.Discard))

	ui.HeaderMsg("Package managers")
	var infos []manager.Info
	_ = ui.WithSpinner("Probing package managers...", func() error {
		infos = probeManagers(ctx, quiet, registry.All())
		return nil
	})
	ui.PrintManagers(cmd.OutOrStdout(), infos)

	installed := 0
	for _, info := range infos {
		if info.Available {
			installed++
		}
	}

	ui.HeaderMsg("Project")
	if kind, err := resolver.DetectKind(""); err != nil {
		ui.WarningMsg("%v", err)
	} else {
		ui.SuccessMsg("Detected %s", ui.ManagerName.Sprint(string(kind)))
	}
	if p := project.Path(); p != "" {
		ui.MutedMsg("  Project config: %s", p)
	}
	if managerOverride != "" {
		ui.MutedMsg("  Override: %s", managerOverride)
	}

	ui.HeaderMsg("Configuration")
	configPath := cfgFile
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	ui.MutedMsg("  Config file:  %s", configPath)
	if cfg.General.History {
		ui.MutedMsg("  History:      %s", config.HistoryPath())
	} else {
		ui.MutedMsg("  History:      disabled")
	}

	ui.HeaderMsg("Summary")
	switch installed {
	case 0:
		ui.WarningMsg("No supported package manager is installed.")
	case len(infos):
		ui.SuccessMsg("All %d package managers are installed.", installed)
	default:
		ui.SuccessMsg("%d of %d package managers are installed.", installed, len(infos))
	}

	return nil
}

// probeManagers describes every manager and asks the installed ones for
// their version, in parallel. A failed probe leaves Version empty.
func probeManagers(ctx context.Context, p versionProber, managers []manager.Manager) []manager.Info {
	infos := make([]manager.Info, len(managers))

	var g errgroup.Group
	g.SetLimit(4)

	for i, m := range managers {
		infos[i] = manager.Describe(m)
		if !infos[i].Available {
			continue
		}
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()

			out, err := p.Output(ctx, m.Binary(), "--version")
			if err != nil {
				logger.Debug("version probe failed", "manager", m.Name(), "err", err)
				return nil
			}
			infos[i].Version = firstLine(out)
			return nil
		})
	}

	_ = g.Wait()
	return infos
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
