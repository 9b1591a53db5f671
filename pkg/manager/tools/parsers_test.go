package tools

import (
	"context"
	"testing"

	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
)

func findNode(nodes []manager.DependencyNode, name string) *manager.DependencyNode {
	for i := range nodes {
		if nodes[i].Name == name {
			return &nodes[i]
		}
	}
	return nil
}

func TestParseCargoTree(t *testing.T) {
	out := `0mcg v0.1.0 (/home/u/mcg)
1clap v4.5.4
2clap_builder v4.5.2
2clap_derive v4.5.4 (proc-macro)
1serde v1.0.197
2serde_derive v1.0.197 (proc-macro)
1[dev-dependencies]
1tempfile v3.10.1
`
	nodes := parseCargoTree(out)
	if len(nodes) != 3 {
		t.Fatalf("got %d top-level nodes, want 3: %+v", len(nodes), nodes)
	}

	clap := findNode(nodes, "clap")
	if clap == nil || clap.Version != "4.5.4" {
		t.Fatalf("clap = %+v", clap)
	}
	if len(clap.Dependencies) != 2 {
		t.Errorf("clap has %d children, want 2", len(clap.Dependencies))
	}
	if findNode(nodes, "tempfile") == nil {
		t.Error("dev-dependency tempfile missing")
	}
}

func TestParseCargoTreeWorkspace(t *testing.T) {
	out := "0core v0.1.0 (/w/core)\n1serde v1.0.0\n\n0cli v0.1.0 (/w/cli)\n1core v0.1.0 (/w/core)\n"
	nodes := parseCargoTree(out)
	if len(nodes) != 2 {
		t.Fatalf("got %d roots, want 2 workspace members", len(nodes))
	}
	if nodes[1].Name != "cli" || nodes[1].Dependencies[0].Name != "core" {
		t.Errorf("unexpected workspace tree: %+v", nodes)
	}
}

func TestParseNpmList(t *testing.T) {
	out := `{
  "name": "web",
  "version": "1.0.0",
  "dependencies": {
    "react": {"version": "18.2.0", "dependencies": {"loose-envify": {"version": "1.4.0"}}},
    "axios": {"version": "1.6.8"},
    "missing-peer": {}
  }
}`
	r := &recordingRunner{output: out}
	mgr := newRecorded(t, manager.KindNpm, r)

	nodes, err := mgr.(manager.Analyzer).Analyze(context.Background(), "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(nodes) != 3 || nodes[0].Name != "axios" {
		t.Fatalf("nodes = %+v, want 3 sorted by name", nodes)
	}
	react := findNode(nodes, "react")
	if react.Dependencies[0].Name != "loose-envify" {
		t.Errorf("react children = %+v", react.Dependencies)
	}
	if p := findNode(nodes, "missing-peer"); p.Version != manager.UnknownVersion {
		t.Errorf("missing-peer version = %q, want %q", p.Version, manager.UnknownVersion)
	}
}

func TestAnalyzeToleratesFailedExitWithOutput(t *testing.T) {
	r := &recordingRunner{
		output: `{"dependencies": {"vue": {"version": "3.4.0"}}}`,
		err:    errs.CommandFailed("npm list --json --depth=1", 1),
	}
	mgr := newRecorded(t, manager.KindNpm, r)

	nodes, err := mgr.(manager.Analyzer).Analyze(context.Background(), "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(nodes) != 1 {
		t.Errorf("nodes = %+v", nodes)
	}
}

func TestAnalyzePropagatesLaunchFailure(t *testing.T) {
	r := &recordingRunner{err: errs.ManagerNotInstalled("pdm", nil)}
	mgr := newRecorded(t, manager.KindPdm, r)

	_, err := mgr.(manager.Analyzer).Analyze(context.Background(), "")
	if !errs.Is(err, errs.KindManagerNotInstalled) {
		t.Errorf("Analyze() error = %v, want ManagerNotInstalled", err)
	}
}

func TestAnalyzeEmptyOrMalformed(t *testing.T) {
	tests := []struct {
		kind   manager.Kind
		output string
	}{
		{manager.KindCargo, ""},
		{manager.KindNpm, "not json"},
		{manager.KindNpm, `{"name": "empty"}`},
		{manager.KindPnpm, `[]`},
		{manager.KindYarn, `{"type":"info","data":"nothing"}`},
		{manager.KindBun, "/tmp/proj node_modules (0)\n"},
		{manager.KindPip, "[]"},
		{manager.KindPdm, "{oops"},
		{manager.KindPoetry, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.output, func(t *testing.T) {
			mgr := newRecorded(t, tt.kind, &recordingRunner{output: tt.output})
			nodes, err := mgr.(manager.Analyzer).Analyze(context.Background(), "")
			if !errs.Is(err, errs.KindNoDependencies) {
				t.Errorf("Analyze() = %v, %v, want NoDependencies", nodes, err)
			}
		})
	}
}

func TestParsePnpmList(t *testing.T) {
	out := `[
  {"name": "a", "dependencies": {"react": {"version": "18.2.0"}}, "devDependencies": {"vitest": {"version": "1.5.0"}}},
  {"name": "b", "dependencies": {"react": {"version": "18.2.0"}, "zod": {"version": "3.23.0"}}}
]`
	nodes, err := parsePnpmList(out)
	if err != nil {
		t.Fatalf("parsePnpmList() error = %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3 (react deduplicated): %+v", len(nodes), nodes)
	}
	if nodes[0].Name != "react" || nodes[2].Name != "zod" {
		t.Errorf("nodes not sorted: %+v", nodes)
	}
}

func TestParseYarnList(t *testing.T) {
	out := `{"type":"info","data":"some info"}
{"type":"tree","data":{"type":"list","trees":[{"name":"@babel/core@7.24.0","children":[{"name":"debug@4.3.4"}]},{"name":"lodash@4.17.21","children":[]}]}}
`
	nodes := parseYarnList(out)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[0].Name != "@babel/core" || nodes[0].Version != "7.24.0" {
		t.Errorf("scoped package parsed as %q %q", nodes[0].Name, nodes[0].Version)
	}
	if nodes[0].Dependencies[0].Name != "debug" {
		t.Errorf("children = %+v", nodes[0].Dependencies)
	}
}

func TestParseBunList(t *testing.T) {
	out := `/home/u/app node_modules (3)
├── @types/bun@1.1.0
├── react@18.3.1
│   └── loose-envify@1.4.0
└── typescript@5.4.5
`
	nodes := parseBunList(out)
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3: %+v", len(nodes), nodes)
	}
	if nodes[0].Name != "@types/bun" || nodes[0].Version != "1.1.0" {
		t.Errorf("nodes[0] = %+v", nodes[0])
	}
	if len(nodes[1].Dependencies) != 1 || nodes[1].Dependencies[0].Name != "loose-envify" {
		t.Errorf("react children = %+v", nodes[1].Dependencies)
	}
}

func TestParseFlatList(t *testing.T) {
	out := `[{"name": "requests", "version": "2.31.0"}, {"name": "urllib3", "version": ""}, {"version": "1"}]`
	nodes, err := parseFlatList(out)
	if err != nil {
		t.Fatalf("parseFlatList() error = %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[1].Version != manager.UnknownVersion {
		t.Errorf("urllib3 version = %q, want %q", nodes[1].Version, manager.UnknownVersion)
	}
}

func TestParsePoetryTree(t *testing.T) {
	out := `requests 2.31.0 Python HTTP for Humans.
├── certifi >=2017.4.17
├── charset-normalizer >=2,<4
└── urllib3 >=1.21.1,<3
    └── brotli *
rich 13.7.1 Render rich text in the terminal
`
	nodes := parsePoetryTree(out)
	if len(nodes) != 2 {
		t.Fatalf("got %d top-level nodes, want 2: %+v", len(nodes), nodes)
	}

	req := nodes[0]
	if req.Name != "requests" || req.Version != "2.31.0" {
		t.Errorf("requests = %q %q", req.Name, req.Version)
	}
	if len(req.Dependencies) != 3 {
		t.Fatalf("requests has %d children, want 3", len(req.Dependencies))
	}
	if req.Dependencies[0].Version != manager.UnknownVersion {
		t.Errorf("child version = %q, want %q", req.Dependencies[0].Version, manager.UnknownVersion)
	}
	urllib3 := req.Dependencies[2]
	if len(urllib3.Dependencies) != 1 || urllib3.Dependencies[0].Name != "brotli" {
		t.Errorf("urllib3 children = %+v", urllib3.Dependencies)
	}
}

func TestSplitNameVersion(t *testing.T) {
	tests := []struct {
		in, name, version string
	}{
		{"lodash@4.17.21", "lodash", "4.17.21"},
		{"@babel/core@7.24.0", "@babel/core", "7.24.0"},
		{"@scope/only", "@scope/only", manager.UnknownVersion},
		{"plain", "plain", manager.UnknownVersion},
		{"trailing@", "trailing", manager.UnknownVersion},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, version := splitNameVersion(tt.in)
			if name != tt.name || version != tt.version {
				t.Errorf("splitNameVersion(%q) = %q, %q, want %q, %q", tt.in, name, version, tt.name, tt.version)
			}
		})
	}
}

func TestTreeBuilderSkippedLevel(t *testing.T) {
	var b treeBuilder
	b.add(0, "root", "1")
	b.add(3, "deep", "2")

	nodes := b.nodes()
	if len(nodes) != 1 || len(nodes[0].Dependencies) != 1 {
		t.Errorf("deep node should attach to root: %+v", nodes)
	}
}
