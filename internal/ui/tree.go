package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/mcgeq/mcg/pkg/manager"
)

var (
	treeRootStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	treeNameStyle    = lipgloss.NewStyle().Bold(true)
	treeVersionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	treeBranchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func asciiEnumerator(children tree.Children, index int) string {
	if children.Length()-1 == index {
		return "`--"
	}
	return "|--"
}

func asciiIndenter(children tree.Children, index int) string {
	if children.Length()-1 == index {
		return "   "
	}
	return "|  "
}

// RenderTree renders nodes under a root label such as the manager name.
func RenderTree(root string, nodes []manager.DependencyNode) string {
	t := tree.Root(treeRootStyle.Render(root))
	for _, n := range nodes {
		t.Child(dependencyTree(n))
	}
	styleTree(t)
	return t.String()
}

func dependencyTree(n manager.DependencyNode) any {
	label := nodeLabel(n)
	if len(n.Dependencies) == 0 {
		return label
	}

	t := tree.Root(label)
	for _, child := range n.Dependencies {
		t.Child(dependencyTree(child))
	}
	styleTree(t)
	return t
}

func styleTree(t *tree.Tree) {
	t.EnumeratorStyle(treeBranchStyle)
	if UseUnicode {
		t.Enumerator(tree.RoundedEnumerator)
		return
	}
	t.Enumerator(asciiEnumerator).Indenter(asciiIndenter)
}

func nodeLabel(n manager.DependencyNode) string {
	label := treeNameStyle.Render(n.Name)
	if n.Version != "" && n.Version != manager.UnknownVersion {
		label += " " + treeVersionStyle.Render(n.Version)
	}
	return label
}
