package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mcgeq/mcg/internal/config"
	"github.com/mcgeq/mcg/internal/ui"
	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
	"github.com/mcgeq/mcg/pkg/manager/tools"
)

type testFlags struct {
	manager     string
	dryRun      bool
	yes         bool
	format      string
	interactive bool
}

// newFlagTree mirrors the real command layout: persistent flags on the root
// and a forwarding child with its own flags.
func newFlagTree() (*cobra.Command, *testFlags) {
	f := &testFlags{}
	root := &cobra.Command{Use: "mcg"}
	root.PersistentFlags().StringVarP(&f.manager, "manager", "m", "", "")
	root.PersistentFlags().BoolVarP(&f.dryRun, "dry-run", "n", false, "")
	root.PersistentFlags().BoolVarP(&f.yes, "yes", "y", false, "")

	child := &cobra.Command{Use: "analyze", DisableFlagParsing: true}
	child.Flags().StringVarP(&f.format, "format", "f", "", "")
	child.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "")
	root.AddCommand(child)
	child.InitDefaultHelpFlag()

	return child, f
}

func TestConsumeFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		rest  []string
		check func(*testFlags) bool
	}{
		{"no flags", []string{"lodash", "-D"}, []string{"lodash", "-D"}, func(f *testFlags) bool { return !f.dryRun }},
		{"leading bool", []string{"-n", "lodash", "-D"}, []string{"lodash", "-D"}, func(f *testFlags) bool { return f.dryRun }},
		{"long bool", []string{"--dry-run", "x"}, []string{"x"}, func(f *testFlags) bool { return f.dryRun }},
		{"grouped", []string{"-ny", "x"}, []string{"x"}, func(f *testFlags) bool { return f.dryRun && f.yes }},
		{"short value", []string{"-m", "pnpm", "zod"}, []string{"zod"}, func(f *testFlags) bool { return f.manager == "pnpm" }},
		{"long value", []string{"--manager=yarn", "zod"}, []string{"zod"}, func(f *testFlags) bool { return f.manager == "yarn" }},
		{"after package", []string{"lodash", "-n"}, []string{"lodash", "-n"}, func(f *testFlags) bool { return !f.dryRun }},
		{"unknown long", []string{"--frozen-lockfile"}, []string{"--frozen-lockfile"}, func(f *testFlags) bool { return true }},
		{"unknown in group", []string{"-nD", "x"}, []string{"-nD", "x"}, func(f *testFlags) bool { return !f.dryRun }},
		{"terminator", []string{"-y", "--", "-n"}, []string{"-n"}, func(f *testFlags) bool { return f.yes && !f.dryRun }},
		{"local flags", []string{"--format", "json", "-i", "--depth=1"}, []string{"--depth=1"}, func(f *testFlags) bool {
			return f.format == "json" && f.interactive
		}},
		{"empty", nil, nil, func(f *testFlags) bool { return true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, f := newFlagTree()

			rest, err := consumeFlags(cmd, tt.args)
			if err != nil {
				t.Fatalf("consumeFlags() error = %v", err)
			}
			if strings.Join(rest, " ") != strings.Join(tt.rest, " ") {
				t.Errorf("consumeFlags() = %v, want %v", rest, tt.rest)
			}
			if !tt.check(f) {
				t.Errorf("flags after consumeFlags() = %+v", *f)
			}
		})
	}
}

func TestConsumeFlagsErrors(t *testing.T) {
	cmd, _ := newFlagTree()
	if _, err := consumeFlags(cmd, []string{"-m"}); err == nil {
		t.Error("consumeFlags(-m) should fail without a value")
	}

	cmd, _ = newFlagTree()
	if _, err := consumeFlags(cmd, []string{"--dry-run=maybe"}); err == nil {
		t.Error("consumeFlags(--dry-run=maybe) should fail")
	}
}

func TestHelpRequested(t *testing.T) {
	cmd, _ := newFlagTree()
	if helpRequested(cmd) {
		t.Fatal("helpRequested() = true before parsing")
	}

	rest, err := consumeFlags(cmd, []string{"-h"})
	if err != nil {
		t.Fatalf("consumeFlags() error = %v", err)
	}
	if len(rest) != 0 || !helpRequested(cmd) {
		t.Errorf("helpRequested() = false after -h (rest %v)", rest)
	}
}

func sampleNodes() []manager.DependencyNode {
	return []manager.DependencyNode{
		{Name: "express", Version: "4.18.2", Dependencies: []manager.DependencyNode{
			{Name: "accepts", Version: "1.3.8"},
		}},
		{Name: "zod", Version: manager.UnknownVersion},
	}
}

func TestWriteNodesJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeNodes(&buf, "json", "npm", sampleNodes()); err != nil {
		t.Fatalf("writeNodes() error = %v", err)
	}

	var got []manager.DependencyNode
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 2 || got[0].Dependencies[0].Name != "accepts" {
		t.Errorf("decoded = %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output should be indented")
	}
}

func TestWriteNodesYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeNodes(&buf, "yaml", "npm", sampleNodes()); err != nil {
		t.Fatalf("writeNodes() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"- name: express", "version: 4.18.2", "dependencies:", "name: accepts"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteNodesTree(t *testing.T) {
	color.NoColor = true
	ui.UseUnicode = false
	t.Cleanup(func() { ui.UseUnicode = true })

	var buf bytes.Buffer
	if err := writeNodes(&buf, "tree", "npm", sampleNodes()); err != nil {
		t.Fatalf("writeNodes() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"npm", "express", "accepts", "zod"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckFormat(t *testing.T) {
	for _, f := range []string{"", "tree", "json", "yaml"} {
		if err := checkFormat(f); err != nil {
			t.Errorf("checkFormat(%q) = %v", f, err)
		}
	}
	if err := checkFormat("xml"); err == nil {
		t.Error("checkFormat(xml) should fail")
	}
	if err := writeNodes(io.Discard, "xml", "npm", nil); err == nil {
		t.Error("writeNodes(xml) should fail")
	}
}

type fakeProber struct {
	out  map[string]string
	seen chan string
}

func (p *fakeProber) Output(ctx context.Context, name string, args ...string) (string, error) {
	p.seen <- name
	out, ok := p.out[name]
	if !ok {
		return "", errors.New("probe failed")
	}
	return out, nil
}

func TestProbeManagers(t *testing.T) {
	logger = log.New(io.Discard)

	// "sh" exists everywhere the tests run; the other binary never does.
	reg := tools.NewRegistry(tools.Options{Binaries: map[manager.Kind]string{
		manager.KindCargo: "sh",
		manager.KindNpm:   "sh",
		manager.KindPip:   "mcg-test-no-such-binary",
	}})
	var managers []manager.Manager
	for _, k := range []manager.Kind{manager.KindCargo, manager.KindNpm, manager.KindPip} {
		m, err := reg.Create(k)
		if err != nil {
			t.Fatalf("Create(%s) error = %v", k, err)
		}
		managers = append(managers, m)
	}

	p := &fakeProber{
		out:  map[string]string{"sh": "  cargo 1.75.0 (1d8b05cdd 2023-11-20)\nmore\n"},
		seen: make(chan string, 10),
	}
	infos := probeManagers(context.Background(), p, managers)
	close(p.seen)

	if len(infos) != 3 {
		t.Fatalf("probeManagers() returned %d infos, want 3", len(infos))
	}
	if infos[0].Kind != manager.KindCargo || infos[0].Version != "cargo 1.75.0 (1d8b05cdd 2023-11-20)" {
		t.Errorf("infos[0] = %+v", infos[0])
	}
	if !infos[1].Available {
		t.Errorf("infos[1] = %+v, want available", infos[1])
	}
	if infos[2].Available || infos[2].Version != "" {
		t.Errorf("infos[2] = %+v, want missing without version", infos[2])
	}

	probes := 0
	for name := range p.seen {
		probes++
		if name != "sh" {
			t.Errorf("probed %q; missing binaries must not be probed", name)
		}
	}
	if probes != 2 {
		t.Errorf("probes = %d, want 2", probes)
	}
}

func TestFirstLine(t *testing.T) {
	tests := map[string]string{
		"":                       "",
		"1.2.3":                  "1.2.3",
		"\n  poetry 1.8.2 \nx\n": "poetry 1.8.2",
	}
	for in, want := range tests {
		if got := firstLine(in); got != want {
			t.Errorf("firstLine(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRelativeTo(t *testing.T) {
	base := filepath.Join("home", "me", "proj")
	tests := []struct {
		path, want string
	}{
		{filepath.Join(base, "web", "package.json"), filepath.Join("web", "package.json")},
		{filepath.Join("home", "me", "Cargo.toml"), filepath.Join("home", "me", "Cargo.toml")},
	}
	for _, tt := range tests {
		if got := relativeTo(base, tt.path); got != tt.want {
			t.Errorf("relativeTo(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		want    log.Level
	}{
		{"default", "", false, log.InfoLevel},
		{"configured", "warn", false, log.WarnLevel},
		{"verbose wins", "error", true, log.DebugLevel},
		{"garbage", "loud", false, log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			c.Output.Level = tt.level
			c.Output.Verbose = tt.verbose
			if got := logLevel(c); got != tt.want {
				t.Errorf("logLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookupKind(t *testing.T) {
	registry = tools.NewRegistry(tools.Options{})

	kind, err := lookupKind("PNPM")
	if err != nil || kind != manager.KindPnpm {
		t.Errorf("lookupKind(PNPM) = %v, %v", kind, err)
	}

	_, err = lookupKind("petry")
	if !errs.Is(err, errs.KindUnsupportedManager) {
		t.Fatalf("lookupKind(petry) error = %v, want UnsupportedManager", err)
	}
	if !strings.Contains(err.Error(), "did you mean") {
		t.Errorf("lookupKind(petry) error = %q, want a suggestion", err)
	}
}

// The listing commands quoted in the analyze help must be the ones the
// adapters actually run.
func TestAnalyzeHelpCommands(t *testing.T) {
	reg := tools.NewRegistry(tools.Options{})
	listings := make(map[string]bool)
	for _, m := range reg.All() {
		listings[m.FormatCommand(manager.VerbAnalyze, nil, manager.Options{})] = true
	}

	var example string
	for _, line := range strings.Split(analyzeCmd.Long, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "mcg analyze ") && strings.Contains(line, "# cargo") {
			example = line[strings.Index(line, "#")+1:]
		}
	}
	if example == "" {
		t.Fatal("analyze help has no listing example")
	}

	for _, cmd := range strings.Split(example, ",") {
		cmd = strings.TrimSpace(cmd)
		if cmd == "..." {
			continue
		}
		if !listings[cmd] {
			t.Errorf("help quotes %q, which no adapter runs", cmd)
		}
	}
}

func TestResolverForUsesTargetProject(t *testing.T) {
	logger = log.New(io.Discard)
	registry = tools.NewRegistry(tools.Options{})
	managerOverride = ""
	resolver = newResolver("")
	t.Cleanup(func() { managerFlag = "" })

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.ProjectFile), []byte("manager = \"bun\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, override, err := resolverFor(dir)
	if err != nil {
		t.Fatalf("resolverFor() error = %v", err)
	}
	if override != "bun" {
		t.Errorf("override = %q, want bun", override)
	}
	if kind, err := res.DetectKind(dir); err != nil || kind != manager.KindBun {
		t.Errorf("DetectKind() = %v, %v, want bun", kind, err)
	}

	managerFlag = "yarn"
	res, override, err = resolverFor(dir)
	if err != nil {
		t.Fatalf("resolverFor() error = %v", err)
	}
	if kind, _ := res.DetectKind(dir); override != "yarn" || kind != manager.KindYarn {
		t.Errorf("--manager should win: override %q, kind %v", override, kind)
	}

	if res, _, _ := resolverFor(""); res != resolver {
		t.Error("resolverFor(\"\") should reuse the working directory resolver")
	}
}
