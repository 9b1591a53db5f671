package tools

import (
	"context"
	"encoding/json"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Pip implements the Manager interface for pip.
type Pip struct {
	*BaseManager
}

// NewPip creates a new pip adapter. Installing the project's dependencies
// reads requirements.txt, the marker pip projects are detected by.
func NewPip() *Pip {
	return &Pip{
		BaseManager: NewBaseManager(manager.KindPip, "pip (Python)", manager.EcosystemPython,
			map[manager.Verb][]string{
				manager.VerbAdd:     {"install"},
				manager.VerbInstall: {"install", "-r", "requirements.txt"},
				manager.VerbRemove:  {"uninstall"},
				manager.VerbUpgrade: {"install", "--upgrade"},
				manager.VerbAnalyze: {"list"},
			},
			[]string{"list", "--format=json"},
		),
	}
}

// flatPackage is one entry of `pip list --format=json` and `pdm list --json`.
type flatPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Analyze parses `pip list --format=json`.
func (p *Pip) Analyze(ctx context.Context, dir string) ([]manager.DependencyNode, error) {
	out, err := p.analyzeOutput(ctx, dir)
	if err != nil {
		return nil, err
	}

	nodes, err := parseFlatList(out)
	if err != nil {
		return nil, p.noDeps(err)
	}
	if len(nodes) == 0 {
		return nil, p.noDeps(nil)
	}
	return nodes, nil
}

func parseFlatList(out string) ([]manager.DependencyNode, error) {
	var pkgs []flatPackage
	if err := json.Unmarshal([]byte(out), &pkgs); err != nil {
		return nil, err
	}

	nodes := make([]manager.DependencyNode, 0, len(pkgs))
	for _, p := range pkgs {
		if p.Name == "" {
			continue
		}
		nodes = append(nodes, manager.DependencyNode{
			Name:    p.Name,
			Version: versionOrUnknown(p.Version),
		})
	}
	return nodes, nil
}
