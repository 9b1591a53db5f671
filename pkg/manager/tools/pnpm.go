package tools

import (
	"context"
	"encoding/json"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Pnpm implements the Manager interface for pnpm.
type Pnpm struct {
	*BaseManager
}

// NewPnpm creates a new pnpm adapter.
func NewPnpm() *Pnpm {
	return &Pnpm{
		BaseManager: NewBaseManager(manager.KindPnpm, "pnpm (Node.js)", manager.EcosystemNode,
			map[manager.Verb][]string{
				manager.VerbAdd:     {"add"},
				manager.VerbInstall: {"install"},
				manager.VerbRemove:  {"remove"},
				manager.VerbUpgrade: {"update"},
				manager.VerbAnalyze: {"list"},
			},
			[]string{"list", "--json", "--depth=1"},
		),
	}
}

// Analyze parses `pnpm list --json --depth=1`, which prints one object per
// workspace project. Production, dev and optional dependencies are merged.
func (p *Pnpm) Analyze(ctx context.Context, dir string) ([]manager.DependencyNode, error) {
	out, err := p.analyzeOutput(ctx, dir)
	if err != nil {
		return nil, err
	}

	nodes, err := parsePnpmList(out)
	if err != nil {
		return nil, p.noDeps(err)
	}
	if len(nodes) == 0 {
		return nil, p.noDeps(nil)
	}
	return nodes, nil
}

func parsePnpmList(out string) ([]manager.DependencyNode, error) {
	var projects []npmDependency
	if err := json.Unmarshal([]byte(out), &projects); err != nil {
		return nil, err
	}

	merged := make(map[string]npmDependency)
	for _, proj := range projects {
		for _, group := range []map[string]npmDependency{proj.Dependencies, proj.DevDependencies, proj.OptionalDependencies} {
			for name, dep := range group {
				if _, seen := merged[name]; !seen {
					merged[name] = dep
				}
			}
		}
	}
	return convertNpmMap(merged), nil
}
