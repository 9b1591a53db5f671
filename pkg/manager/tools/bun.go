package tools

import (
	"bufio"
	"context"
	"strings"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Bun implements the Manager interface for Bun.
type Bun struct {
	*BaseManager
}

// NewBun creates a new Bun adapter.
func NewBun() *Bun {
	return &Bun{
		BaseManager: NewBaseManager(manager.KindBun, "Bun (JavaScript)", manager.EcosystemNode,
			map[manager.Verb][]string{
				manager.VerbAdd:     {"add"},
				manager.VerbInstall: {"install"},
				manager.VerbRemove:  {"remove"},
				manager.VerbUpgrade: {"update"},
				manager.VerbAnalyze: {"pm", "ls"},
			},
			[]string{"pm", "ls"},
		),
	}
}

// Analyze parses the box-drawing listing of `bun pm ls`.
func (b *Bun) Analyze(ctx context.Context, dir string) ([]manager.DependencyNode, error) {
	out, err := b.analyzeOutput(ctx, dir)
	if err != nil {
		return nil, err
	}

	nodes := parseBunList(out)
	if len(nodes) == 0 {
		return nil, b.noDeps(nil)
	}
	return nodes, nil
}

// parseBunList reads "├── react@18.2.0" lines. The header line naming the
// project directory has no connector and is skipped.
func parseBunList(out string) []manager.DependencyNode {
	var tb treeBuilder

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		depth, text := boxDepth(scanner.Text())
		if depth == 0 || text == "" {
			continue
		}
		name, version := splitNameVersion(text)
		tb.add(depth-1, name, version)
	}
	return tb.nodes()
}
