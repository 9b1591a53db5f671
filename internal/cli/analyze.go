package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mcgeq/mcg/internal/tui"
	"github.com/mcgeq/mcg/internal/ui"
	"github.com/mcgeq/mcg/pkg/manager"
)

var (
	analyzeFormat      string
	analyzeInteractive bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [options...]",
	Short: "Show the project's dependency tree",
	Long: `Show the project's dependencies.

Without --format or -i the package manager's own listing command runs
with its output on the terminal. With --format, mcg captures the listing
and prints a normalized tree:

  tree   indented tree
  json   nested JSON objects {name, version, dependencies}
  yaml   the same structure as YAML

-i opens an interactive browser with filtering.
` + forwardingHelp + `

Examples:
  mcg analyze                    # cargo tree, npm list, poetry show --tree, ...
  mcg analyze --format json      # machine-readable tree
  mcg analyze -i                 # browse dependencies`,
	DisableFlagParsing: true,
	RunE:               runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "print a parsed tree: tree, json or yaml")
	analyzeCmd.Flags().BoolVarP(&analyzeInteractive, "interactive", "i", false, "browse dependencies interactively")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rest, help, err := prepareForwarded(cmd, args)
	if err != nil || help {
		return err
	}

	if analyzeFormat == "" && !analyzeInteractive {
		packages, opts := manager.SplitArgs(rest)
		return dispatchVerb(cmd, manager.VerbAnalyze, packages, opts)
	}

	if err := checkFormat(analyzeFormat); err != nil {
		return err
	}
	if analyzeInteractive && !ui.IsTerminal(os.Stdout) {
		return ErrNotTerminal
	}
	if len(rest) > 0 {
		logger.Warn("arguments are ignored when the tree is parsed", "args", rest)
	}

	var (
		m     manager.Manager
		nodes []manager.DependencyNode
	)
	err = ui.WithSpinner("Analyzing dependencies...", func() error {
		var err error
		m, nodes, err = newDispatcher().Analyze(cmd.Context(), "")
		return err
	})
	if err != nil {
		return err
	}

	if analyzeInteractive {
		return tui.Run(m.Name(), nodes)
	}
	return writeNodes(cmd.OutOrStdout(), analyzeFormat, m.Name(), nodes)
}

func checkFormat(format string) error {
	switch format {
	case "", "tree", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown format %q (want tree, json or yaml)", format)
}

// writeNodes prints a parsed dependency tree in one of the --format
// encodings. root labels the tree format.
func writeNodes(w io.Writer, format, root string, nodes []manager.DependencyNode) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nodes); err != nil {
			return err
		}
		return enc.Close()

	case "", "tree":
		_, err := fmt.Fprintln(w, ui.RenderTree(root, nodes))
		return err
	}
	return checkFormat(format)
}
