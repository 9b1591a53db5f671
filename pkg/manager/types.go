// Package manager provides the core abstraction over project-level package
// managers (cargo, npm, pnpm, yarn, bun, pip, pdm, poetry).
package manager

import (
	"sort"
	"strings"
)

// Kind identifies one supported package manager.
type Kind string

const (
	KindCargo  Kind = "cargo"
	KindNpm    Kind = "npm"
	KindPnpm   Kind = "pnpm"
	KindYarn   Kind = "yarn"
	KindBun    Kind = "bun"
	KindPip    Kind = "pip"
	KindPdm    Kind = "pdm"
	KindPoetry Kind = "poetry"
)

// BuiltinKinds lists every kind shipped with mcg.
var BuiltinKinds = []Kind{
	KindCargo, KindNpm, KindPnpm, KindYarn, KindBun, KindPip, KindPdm, KindPoetry,
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a manager name case-insensitively against the built-in kinds.
func ParseKind(name string) (Kind, bool) {
	n := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range BuiltinKinds {
		if k == n {
			return k, true
		}
	}
	return "", false
}

// Ecosystem groups managers that serve the same language.
type Ecosystem string

const (
	EcosystemRust   Ecosystem = "rust"
	EcosystemNode   Ecosystem = "node"
	EcosystemPython Ecosystem = "python"
)

// Verb is a tool-agnostic operation. Verbs outside the five constants below
// are forwarded to the tool unchanged.
type Verb string

const (
	VerbAdd     Verb = "add"
	VerbRemove  Verb = "remove"
	VerbUpgrade Verb = "upgrade"
	VerbInstall Verb = "install"
	VerbAnalyze Verb = "analyze"
)

// GenericVerbs lists the verbs every adapter translates.
var GenericVerbs = []Verb{VerbAdd, VerbRemove, VerbUpgrade, VerbInstall, VerbAnalyze}

// RequiresPackages reports whether the verb is meaningless without at least
// one package identifier.
func (v Verb) RequiresPackages() bool {
	return v == VerbAdd || v == VerbRemove
}

// Options carries passthrough arguments forwarded verbatim after the package
// identifiers.
type Options struct {
	Args []string
	Dir  string // working directory of the tool; empty means the process's
}

// UnknownVersion is the version of a dependency whose version could not be
// resolved from the tool's output.
const UnknownVersion = "*"

// DependencyNode is one entry of a dependency tree.
type DependencyNode struct {
	Name         string           `json:"name" yaml:"name"`
	Version      string           `json:"version" yaml:"version"`
	Dependencies []DependencyNode `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Count returns the number of nodes in the tree rooted at n, n included.
func (n DependencyNode) Count() int {
	total := 1
	for _, d := range n.Dependencies {
		total += d.Count()
	}
	return total
}

// SortNodes orders nodes by name, recursively.
func SortNodes(nodes []DependencyNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
	for i := range nodes {
		SortNodes(nodes[i].Dependencies)
	}
}

// Info is a snapshot of a manager's identity and whether its binary is on
// PATH.
type Info struct {
	Kind        Kind
	DisplayName string
	Ecosystem   Ecosystem
	Binary      string
	Available   bool
	Version     string // filled in by callers that probe the tool
}

// Describe returns the Info for m. It probes PATH.
func Describe(m Manager) Info {
	return Info{
		Kind:        m.Kind(),
		DisplayName: m.DisplayName(),
		Ecosystem:   m.Ecosystem(),
		Binary:      m.Binary(),
		Available:   m.IsAvailable(),
	}
}
