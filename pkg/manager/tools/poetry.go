package tools

import (
	"bufio"
	"context"
	"strings"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Poetry implements the Manager interface for Poetry.
type Poetry struct {
	*BaseManager
}

// NewPoetry creates a new Poetry adapter.
func NewPoetry() *Poetry {
	return &Poetry{
		BaseManager: NewBaseManager(manager.KindPoetry, "Poetry (Python)", manager.EcosystemPython,
			map[manager.Verb][]string{
				manager.VerbAdd:     {"add"},
				manager.VerbInstall: {"install"},
				manager.VerbRemove:  {"remove"},
				manager.VerbUpgrade: {"update"},
				manager.VerbAnalyze: {"show", "--tree"},
			},
			[]string{"show", "--tree"},
		),
	}
}

// Analyze parses `poetry show --tree`.
func (p *Poetry) Analyze(ctx context.Context, dir string) ([]manager.DependencyNode, error) {
	out, err := p.analyzeOutput(ctx, dir)
	if err != nil {
		return nil, err
	}

	nodes := parsePoetryTree(out)
	if len(nodes) == 0 {
		return nil, p.noDeps(nil)
	}
	return nodes, nil
}

// parsePoetryTree reads top-level "name version description" lines and their
// indented children. Children list a constraint rather than the installed
// version, so they carry UnknownVersion.
func parsePoetryTree(out string) []manager.DependencyNode {
	var tb treeBuilder

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		depth, text := boxDepth(line)
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		version := manager.UnknownVersion
		if depth == 0 {
			// Top-level lines must be flush left; anything else is a
			// continuation of a wrapped description.
			if line[0] == ' ' || len(fields) < 2 {
				continue
			}
			version = fields[1]
		}
		tb.add(depth, fields[0], version)
	}
	return tb.nodes()
}
