package detector

import (
	"fmt"
	"sort"

	"github.com/mcgeq/mcg/pkg/manager"
)

// Rule associates a manager kind with the marker files that identify its
// projects. Lower Priority wins when several rules match.
type Rule struct {
	Kind     manager.Kind
	Markers  []string
	Priority int
}

// DefaultRules is the fixed detection order. Lock files come before the
// manifests they share with other tools: pnpm, bun and yarn projects all
// carry a package.json, and poetry projects carry a pyproject.toml.
var DefaultRules = []Rule{
	{Kind: manager.KindCargo, Markers: []string{"Cargo.toml"}, Priority: 1},
	{Kind: manager.KindPnpm, Markers: []string{"pnpm-lock.yaml", "pnpm-workspace.yaml"}, Priority: 2},
	{Kind: manager.KindBun, Markers: []string{"bun.lockb", "bun.lock"}, Priority: 3},
	{Kind: manager.KindYarn, Markers: []string{"yarn.lock"}, Priority: 4},
	{Kind: manager.KindNpm, Markers: []string{"package-lock.json", "package.json"}, Priority: 5},
	{Kind: manager.KindPoetry, Markers: []string{"poetry.lock"}, Priority: 6},
	{Kind: manager.KindPdm, Markers: []string{"pdm.lock", "pyproject.toml"}, Priority: 7},
	{Kind: manager.KindPip, Markers: []string{"requirements.txt"}, Priority: 8},
}

// ValidateRules rejects tables with duplicate priorities, duplicate kinds or
// rules without markers.
func ValidateRules(rules []Rule) error {
	priorities := make(map[int]manager.Kind, len(rules))
	kinds := make(map[manager.Kind]bool, len(rules))

	for _, r := range rules {
		if len(r.Markers) == 0 {
			return fmt.Errorf("rule for %s has no markers", r.Kind)
		}
		if other, dup := priorities[r.Priority]; dup {
			return fmt.Errorf("priority %d shared by %s and %s", r.Priority, other, r.Kind)
		}
		if kinds[r.Kind] {
			return fmt.Errorf("duplicate rule for %s", r.Kind)
		}
		priorities[r.Priority] = r.Kind
		kinds[r.Kind] = true
	}
	return nil
}

// sortedRules returns a copy of rules ordered by priority.
func sortedRules(rules []Rule) []Rule {
	out := append([]Rule(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
