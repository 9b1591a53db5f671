package tools

import (
	"context"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Pdm implements the Manager interface for PDM.
type Pdm struct {
	*BaseManager
}

// NewPdm creates a new PDM adapter.
func NewPdm() *Pdm {
	return &Pdm{
		BaseManager: NewBaseManager(manager.KindPdm, "PDM (Python)", manager.EcosystemPython,
			map[manager.Verb][]string{
				manager.VerbAdd:     {"add"},
				manager.VerbInstall: {"install"},
				manager.VerbRemove:  {"remove"},
				manager.VerbUpgrade: {"update"},
				manager.VerbAnalyze: {"list"},
			},
			[]string{"list", "--json"},
		),
	}
}

// Analyze parses `pdm list --json`, a flat array like pip's.
func (p *Pdm) Analyze(ctx context.Context, dir string) ([]manager.DependencyNode, error) {
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
