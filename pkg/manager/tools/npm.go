package tools

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Npm implements the Manager interface for npm.
type Npm struct {
	*BaseManager
}

// NewNpm creates a new npm adapter.
func NewNpm() *Npm {
	return &Npm{
		BaseManager: NewBaseManager(manager.KindNpm, "npm (Node.js)", manager.EcosystemNode,
			map[manager.Verb][]string{
				manager.VerbAdd:     {"install"},
				manager.VerbInstall: {"install"},
				manager.VerbRemove:  {"uninstall"},
				manager.VerbUpgrade: {"update"},
				manager.VerbAnalyze: {"list"},
			},
			[]string{"list", "--json", "--depth=1"},
		),
	}
}

// npmDependency mirrors one entry of `npm list --json`. pnpm uses the same
// shape for its per-project maps.
type npmDependency struct {
	Version              string                   `json:"version"`
	Dependencies         map[string]npmDependency `json:"dependencies"`
	DevDependencies      map[string]npmDependency `json:"devDependencies"`
	OptionalDependencies map[string]npmDependency `json:"optionalDependencies"`
}

// Analyze parses `npm list --json --depth=1`.
func (n *Npm) Analyze(ctx context.Context, dir string) ([]manager.DependencyNode, error) {
	out, err := n.analyzeOutput(ctx, dir)
	if err != nil {
		return nil, err
	}

	var root npmDependency
	if err := json.Unmarshal([]byte(out), &root); err != nil {
		return nil, n.noDeps(err)
	}

	nodes := convertNpmMap(root.Dependencies)
	if len(nodes) == 0 {
		return nil, n.noDeps(nil)
	}
	return nodes, nil
}

// convertNpmMap turns a name-keyed dependency map into nodes sorted by name.
func convertNpmMap(deps map[string]npmDependency) []manager.DependencyNode {
	if len(deps) == 0 {
		return nil
	}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]manager.DependencyNode, 0, len(names))
	for _, name := range names {
		d := deps[name]
		nodes = append(nodes, manager.DependencyNode{
			Name:         name,
			Version:      versionOrUnknown(d.Version),
			Dependencies: convertNpmMap(d.Dependencies),
		})
	}
	return nodes
}
