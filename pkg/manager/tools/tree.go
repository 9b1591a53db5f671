package tools

import (
	"strings"
	"unicode/utf8"

	"github.com/mcgeq/mcg/pkg/manager"
)

// treeNode is the mutable form of manager.DependencyNode used while parsing
// indented listings.
type treeNode struct {
	name     string
	version  string
	children []*treeNode
}

// treeBuilder assembles a forest from (depth, node) pairs emitted in
// pre-order, as every indented tool listing is.
type treeBuilder struct {
	roots []*treeNode
	stack []*treeNode
}

func (b *treeBuilder) add(depth int, name, version string) {
	n := &treeNode{name: name, version: version}

	// A jump of more than one level means the listing skipped a parent;
	// attach to the deepest known ancestor.
	if depth > len(b.stack) {
		depth = len(b.stack)
	}
	b.stack = b.stack[:depth]

	if depth == 0 {
		b.roots = append(b.roots, n)
	} else {
		parent := b.stack[depth-1]
		parent.children = append(parent.children, n)
	}
	b.stack = append(b.stack, n)
}

func (b *treeBuilder) nodes() []manager.DependencyNode {
	return convertNodes(b.roots)
}

func convertNodes(in []*treeNode) []manager.DependencyNode {
	if len(in) == 0 {
		return nil
	}
	out := make([]manager.DependencyNode, len(in))
	for i, n := range in {
		out[i] = manager.DependencyNode{
			Name:         n.name,
			Version:      versionOrUnknown(n.version),
			Dependencies: convertNodes(n.children),
		}
	}
	return out
}

func versionOrUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return manager.UnknownVersion
	}
	return v
}

// splitNameVersion splits "name@version" at the last "@", keeping a leading
// scope marker ("@babel/core@7.24.0" yields "@babel/core", "7.24.0").
func splitNameVersion(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.LastIndex(s, "@")
	if idx <= 0 {
		return s, manager.UnknownVersion
	}
	return s[:idx], versionOrUnknown(s[idx+1:])
}

// boxDepth returns the nesting depth of a box-drawing tree line and the text
// after its connector. Lines without a connector are depth 0. Each level of
// indentation is four runes wide ("│   " or "    ").
func boxDepth(line string) (int, string) {
	idx := strings.IndexAny(line, "├└")
	if idx < 0 {
		return 0, strings.TrimSpace(line)
	}
	indent := utf8.RuneCountInString(line[:idx])
	rest := strings.TrimLeft(line[idx:], "├└─ ")
	return indent/4 + 1, strings.TrimSpace(rest)
}
