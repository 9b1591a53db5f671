package tools

import (
	"bufio"
	"context"
	"strings"
	"unicode"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Cargo implements the Manager interface for Rust's cargo.
type Cargo struct {
	*BaseManager
}

// NewCargo creates a new Cargo adapter.
func NewCargo() *Cargo {
	return &Cargo{
		BaseManager: NewBaseManager(manager.KindCargo, "Cargo (Rust)", manager.EcosystemRust,
			map[manager.Verb][]string{
				manager.VerbAdd:     {"add"},
				manager.VerbInstall: {"check"},
				manager.VerbRemove:  {"remove"},
				manager.VerbUpgrade: {"update"},
				manager.VerbAnalyze: {"tree"},
			},
			[]string{"tree", "--prefix", "depth", "--depth", "2"},
		),
	}
}

// Analyze parses `cargo tree --prefix depth`.
func (c *Cargo) Analyze(ctx context.Context, dir string) ([]manager.DependencyNode, error) {
	out, err := c.analyzeOutput(ctx, dir)
	if err != nil {
		return nil, err
	}

	nodes := parseCargoTree(out)
	if len(nodes) == 0 {
		return nil, c.noDeps(nil)
	}
	return nodes, nil
}

// parseCargoTree reads lines of the form "1serde v1.0.197 (proc-macro)".
// A single crate root is unwrapped to its dependencies; workspaces keep one
// node per member.
func parseCargoTree(out string) []manager.DependencyNode {
	var b treeBuilder

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		digits := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsDigit(r) })
		if digits <= 0 {
			continue
		}

		depth := 0
		for _, r := range line[:digits] {
			depth = depth*10 + int(r-'0')
		}

		fields := strings.Fields(line[digits:])
		// Section headers such as "[dev-dependencies]" carry no crate.
		if len(fields) == 0 || strings.HasPrefix(fields[0], "[") {
			continue
		}

		version := ""
		if len(fields) > 1 {
			version = strings.TrimPrefix(fields[1], "v")
		}
		b.add(depth, fields[0], version)
	}

	nodes := b.nodes()
	if len(nodes) == 1 {
		return nodes[0].Dependencies
	}
	return nodes
}
