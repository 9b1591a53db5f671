package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Yarn implements the Manager interface for Yarn.
type Yarn struct {
	*BaseManager
}

// NewYarn creates a new Yarn adapter.
func NewYarn() *Yarn {
	return &Yarn{
		BaseManager: NewBaseManager(manager.KindYarn, "Yarn (Node.js)", manager.EcosystemNode,
			map[manager.Verb][]string{
				manager.VerbAdd:     {"add"},
				manager.VerbInstall: {"install"},
				manager.VerbRemove:  {"remove"},
				manager.VerbUpgrade: {"upgrade"},
				manager.VerbAnalyze: {"list"},
			},
			[]string{"list", "--json", "--depth=1"},
		),
	}
}

type yarnRecord struct {
	Type string `json:"type"`
	Data struct {
		Trees []yarnTree `json:"trees"`
	} `json:"data"`
}

type yarnTree struct {
	Name     string     `json:"name"`
	Children []yarnTree `json:"children"`
}

// Analyze parses the NDJSON stream of `yarn list --json`.
func (y *Yarn) Analyze(ctx context.Context, dir string) ([]manager.DependencyNode, error) {
	out, err := y.analyzeOutput(ctx, dir)
	if err != nil {
		return nil, err
	}

	nodes := parseYarnList(out)
	if len(nodes) == 0 {
		return nil, y.noDeps(nil)
	}
	return nodes, nil
}

// parseYarnList picks the "tree" record out of yarn's NDJSON output and
// ignores info and warning records.
func parseYarnList(out string) []manager.DependencyNode {
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		var rec yarnRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if rec.Type == "tree" {
			return convertYarnTrees(rec.Data.Trees)
		}
	}
	return nil
}

func convertYarnTrees(trees []yarnTree) []manager.DependencyNode {
	if len(trees) == 0 {
		return nil
	}
	nodes := make([]manager.DependencyNode, 0, len(trees))
	for _, t := range trees {
		name, version := splitNameVersion(t.Name)
		nodes = append(nodes, manager.DependencyNode{
			Name:         name,
			Version:      version,
			Dependencies: convertYarnTrees(t.Children),
		})
	}
	return nodes
}
