package dispatch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mcgeq/mcg/internal/config"
	"github.com/mcgeq/mcg/internal/executor"
	"github.com/mcgeq/mcg/internal/history"
	errs "github.com/mcgeq/mcg/pkg/errors"
	"github.com/mcgeq/mcg/pkg/manager"
	"github.com/mcgeq/mcg/pkg/manager/detector"
	"github.com/mcgeq/mcg/pkg/manager/tools"
)

// fakeRunner records invocations and returns a fixed error.
type fakeRunner struct {
	calls  [][]string
	dirs   []string
	err    error
	output string
}

func (r *fakeRunner) RunIn(_ context.Context, dir, name string, args ...string) error {
	r.dirs = append(r.dirs, dir)
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func (r *fakeRunner) OutputIn(_ context.Context, dir, name string, args ...string) (string, error) {
	r.dirs = append(r.dirs, dir)
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.output, r.err
}

type fakeResolver struct {
	m   manager.Manager
	err error
	dir string
}

func (f *fakeResolver) Detect(dir string) (manager.Manager, error) {
	f.dir = dir
	return f.m, f.err
}

type fakeReporter struct {
	events []string
}

func (r *fakeReporter) Using(name string)        { r.events = append(r.events, "using "+name) }
func (r *fakeReporter) Executing(command string) { r.events = append(r.events, "exec "+command) }
func (r *fakeReporter) DryRun(command string)    { r.events = append(r.events, "dry "+command) }
func (r *fakeReporter) Completed(command string, _ time.Duration, slow bool) {
	if slow {
		r.events = append(r.events, "slow "+command)
		return
	}
	r.events = append(r.events, "done "+command)
}

type fakeRecorder struct {
	entries []*history.Entry
	err     error
}

func (r *fakeRecorder) Record(e *history.Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

// plainManager has no Configurable or Analyzer capability.
type plainManager struct{ manager.Manager }

func newManager(t *testing.T, kind manager.Kind, r *fakeRunner) manager.Manager {
	t.Helper()
	reg := tools.NewRegistry(tools.Options{Runner: r})
	m, err := reg.Create(kind)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", kind, err)
	}
	return m
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestDispatchSuccess(t *testing.T) {
	runner := &fakeRunner{}
	rep := &fakeReporter{}
	rec := &fakeRecorder{}
	d := New(&fakeResolver{m: newManager(t, manager.KindNpm, runner)},
		WithReporter(rep), WithRecorder(rec))

	res, err := d.Dispatch(context.Background(), Request{
		Verb:     manager.VerbAdd,
		Packages: []string{"lodash", "react"},
		Options:  manager.Options{Args: []string{"-D"}},
		Dir:      "/work/app",
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if res.Command != "npm install lodash react -D" {
		t.Errorf("Command = %q", res.Command)
	}
	want := [][]string{{"npm", "install", "lodash", "react", "-D"}}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("runner calls = %v, want %v", runner.calls, want)
	}
	wantEvents := []string{"using npm", "exec npm install lodash react -D", "done npm install lodash react -D"}
	if !reflect.DeepEqual(rep.events, wantEvents) {
		t.Errorf("events = %v, want %v", rep.events, wantEvents)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if !e.Success || e.Command != res.Command || e.Dir != "/work/app" || e.Manager != "npm" {
		t.Errorf("entry = %+v", e)
	}
	if !reflect.DeepEqual(runner.dirs, []string{"/work/app"}) {
		t.Errorf("runner dirs = %v, want [/work/app]", runner.dirs)
	}
}

func TestDispatchDirDefaultsToWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{}
	res := &fakeResolver{m: newManager(t, manager.KindCargo, runner)}
	rec := &fakeRecorder{}

	if _, err := New(res, WithRecorder(rec)).Dispatch(context.Background(), Request{Verb: manager.VerbInstall}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.dir != wd {
		t.Errorf("detected in %q, want %q", res.dir, wd)
	}
	if len(runner.dirs) != 1 || runner.dirs[0] != wd {
		t.Errorf("runner dirs = %v, want [%s]", runner.dirs, wd)
	}
	if rec.entries[0].Dir != wd {
		t.Errorf("recorded dir = %q, want %q", rec.entries[0].Dir, wd)
	}
}

// The child process must run in the project it was detected for, not in the
// caller's working directory.
func TestDispatchRunsInRequestDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	quiet := executor.New(executor.WithStdio(nil, io.Discard, io.Discard))
	reg := tools.NewRegistry(tools.Options{
		Runner:   quiet,
		Binaries: map[manager.Kind]string{manager.KindNpm: "sh"},
	})
	det := detector.New(reg, detector.NewCache(), detector.WithRules([]detector.Rule{
		{Kind: manager.KindNpm, Markers: []string{"package-lock.json"}, Priority: 1},
	}))
	project := &config.ProjectConfig{}
	project.Commands.Install = "-c pwd>cwd.txt"

	_, err := New(det, WithOverrides(project)).Dispatch(context.Background(), Request{
		Verb: manager.VerbInstall,
		Dir:  dir,
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "cwd.txt"))
	if err != nil {
		t.Fatalf("child did not write into the request directory: %v", err)
	}
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(string(out)))
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("child ran in %q, want %q", got, want)
	}
}

func TestDispatchNoMarker(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	reg := tools.NewRegistry(tools.Options{Runner: runner})
	det := detector.New(reg, detector.NewCache(), detector.WithRules([]detector.Rule{
		{Kind: manager.KindCargo, Markers: []string{"mcg-test-no-such-marker.toml"}, Priority: 1},
	}))
	rep := &fakeReporter{}
	rec := &fakeRecorder{}

	_, err := New(det, WithReporter(rep), WithRecorder(rec)).Dispatch(context.Background(), Request{
		Verb: manager.VerbInstall,
		Dir:  dir,
	})

	if !errs.Is(err, errs.KindManagerNotDetected) {
		t.Fatalf("Dispatch() error = %v, want ManagerNotDetected", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no subprocess should be launched, got %v", runner.calls)
	}
	if len(rep.events) != 0 || len(rec.entries) != 0 {
		t.Errorf("nothing should be reported or recorded: %v %v", rep.events, rec.entries)
	}
}

func TestDispatchCommandFailed(t *testing.T) {
	runner := &fakeRunner{err: errs.CommandFailed("pip install requests", 1)}
	rec := &fakeRecorder{}
	d := New(&fakeResolver{m: newManager(t, manager.KindPip, runner)}, WithRecorder(rec))

	res, err := d.Dispatch(context.Background(), Request{
		Verb:     manager.VerbAdd,
		Packages: []string{"requests"},
	})
	if err == nil {
		t.Fatal("Dispatch() should fail")
	}

	e, ok := errs.As(err)
	if !ok || e.Kind != errs.KindCommandFailed {
		t.Fatalf("error = %v, want CommandFailed", err)
	}
	if e.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", e.ExitCode)
	}
	if e.Command != "pip install requests" || res.Command != e.Command {
		t.Errorf("Command = %q, result command = %q", e.Command, res.Command)
	}

	wantMsg := "failed to execute 'add' command with pip package manager: command execution failed: pip install requests (exit code: 1)"
	if err.Error() != wantMsg {
		t.Errorf("Error() = %q, want %q", err.Error(), wantMsg)
	}
	if errs.ExitCode(err) != 1 {
		t.Errorf("ExitCode(err) = %d, want 1", errs.ExitCode(err))
	}

	if len(rec.entries) != 1 || rec.entries[0].Success || rec.entries[0].ExitCode != 1 {
		t.Errorf("failed command should be recorded with exit 1: %+v", rec.entries)
	}
}

func TestDispatchResolverErrorUnchanged(t *testing.T) {
	want := errs.UnsupportedManager("maven")
	_, err := New(&fakeResolver{err: want}).Dispatch(context.Background(), Request{Verb: manager.VerbInstall})
	if err != want {
		t.Errorf("Dispatch() error = %v, want the resolver error unchanged", err)
	}
}

func TestDispatchInvalidPackage(t *testing.T) {
	tests := []struct {
		name    string
		verb    manager.Verb
		pkgs    []string
		wantErr bool
	}{
		{"blank on add", manager.VerbAdd, []string{" "}, true},
		{"dot on remove", manager.VerbRemove, []string{".hidden"}, true},
		{"relative path on add", manager.VerbAdd, []string{"./local-crate"}, false},
		{"not checked on upgrade", manager.VerbUpgrade, []string{".hidden"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			d := New(&fakeResolver{m: newManager(t, manager.KindCargo, runner)})

			_, err := d.Dispatch(context.Background(), Request{Verb: tt.verb, Packages: tt.pkgs})
			if tt.wantErr {
				if !errs.Is(err, errs.KindInvalidPackageName) {
					t.Errorf("error = %v, want InvalidPackageName", err)
				}
				if len(runner.calls) != 0 {
					t.Error("invalid packages must not launch a subprocess")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error = %v", err)
			}
		})
	}
}

func TestDispatchDryRun(t *testing.T) {
	runner := &fakeRunner{}
	rep := &fakeReporter{}
	rec := &fakeRecorder{}
	d := New(&fakeResolver{m: newManager(t, manager.KindCargo, runner)},
		WithDryRun(true), WithReporter(rep), WithRecorder(rec))

	res, err := d.Dispatch(context.Background(), Request{Verb: manager.VerbAdd, Packages: []string{"serde"}})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !res.DryRun || res.Command != "cargo add serde" {
		t.Errorf("result = %+v", res)
	}
	if len(runner.calls) != 0 {
		t.Errorf("dry run launched %v", runner.calls)
	}
	if len(rec.entries) != 0 {
		t.Error("dry run should not be recorded")
	}
	if rep.events[len(rep.events)-1] != "dry cargo add serde" {
		t.Errorf("events = %v", rep.events)
	}
}

func TestDispatchSlow(t *testing.T) {
	tests := []struct {
		name      string
		threshold time.Duration
		step      time.Duration
		wantSlow  bool
	}{
		{"fast", 3 * time.Second, time.Second, false},
		{"slow", 3 * time.Second, 5 * time.Second, true},
		{"disabled", 0, time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(&fakeResolver{m: newManager(t, manager.KindYarn, &fakeRunner{})}, WithSlowThreshold(tt.threshold))
			d.now = steppingClock(tt.step)

			res, err := d.Dispatch(context.Background(), Request{Verb: manager.VerbInstall})
			if err != nil {
				t.Fatal(err)
			}
			if res.Elapsed != tt.step {
				t.Errorf("Elapsed = %v, want %v", res.Elapsed, tt.step)
			}
			if res.Slow != tt.wantSlow {
				t.Errorf("Slow = %v, want %v", res.Slow, tt.wantSlow)
			}
		})
	}
}

func TestDispatchOverrides(t *testing.T) {
	dir := t.TempDir()
	content := "[commands]\nadd = \"add --save-exact\"\n\n[defaults]\nadd_args = [\"-D\"]\ndefault_args = [\"--silent\"]\n"
	if err := os.WriteFile(filepath.Join(dir, config.ProjectFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	project, err := config.LoadProject(dir)
	if err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	d := New(&fakeResolver{m: newManager(t, manager.KindPnpm, runner)}, WithOverrides(project))

	res, err := d.Dispatch(context.Background(), Request{
		Verb:     manager.VerbAdd,
		Packages: []string{"zod"},
		Options:  manager.Options{Args: []string{"--filter", "web"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	wantCmd := "pnpm add --save-exact zod --filter web -D --silent"
	if res.Command != wantCmd {
		t.Errorf("Command = %q, want %q", res.Command, wantCmd)
	}
	if got := runner.calls[0]; executorLine(got) != wantCmd {
		t.Errorf("executed %v, want %q", got, wantCmd)
	}
}

func TestDispatchOverridesUnsupported(t *testing.T) {
	runner := &fakeRunner{}
	m := plainManager{newManager(t, manager.KindNpm, runner)}
	project := &config.ProjectConfig{Commands: config.CommandsConfig{Install: "ci"}}

	res, err := New(&fakeResolver{m: m}, WithOverrides(project)).Dispatch(context.Background(), Request{Verb: manager.VerbInstall})
	if err != nil {
		t.Fatal(err)
	}
	if res.Command != "npm install" {
		t.Errorf("Command = %q, want the unmodified mapping", res.Command)
	}
}

func TestDispatchRecorderFailureIgnored(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("database locked")}
	d := New(&fakeResolver{m: newManager(t, manager.KindBun, &fakeRunner{})}, WithRecorder(rec))

	if _, err := d.Dispatch(context.Background(), Request{Verb: manager.VerbInstall}); err != nil {
		t.Errorf("recording failure should not fail the command: %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	runner := &fakeRunner{output: `[{"name":"requests","version":"2.31.0"}]`}
	d := New(&fakeResolver{m: newManager(t, manager.KindPip, runner)})

	m, nodes, err := d.Analyze(context.Background(), "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if m.Name() != "pip" {
		t.Errorf("manager = %s", m.Name())
	}
	if len(nodes) != 1 || nodes[0].Name != "requests" || nodes[0].Version != "2.31.0" {
		t.Errorf("nodes = %+v", nodes)
	}
}

func TestAnalyzeRunsInDir(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{output: `[{"name":"requests","version":"2.31.0"}]`}
	res := &fakeResolver{m: newManager(t, manager.KindPip, runner)}

	if _, _, err := New(res).Analyze(context.Background(), dir); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.dir != dir || !reflect.DeepEqual(runner.dirs, []string{dir}) {
		t.Errorf("detected in %q, ran in %v, want %s", res.dir, runner.dirs, dir)
	}
}

func TestAnalyzeUnsupported(t *testing.T) {
	m := plainManager{newManager(t, manager.KindNpm, &fakeRunner{})}

	_, _, err := New(&fakeResolver{m: m}).Analyze(context.Background(), "")
	if !errors.Is(err, ErrAnalyzeUnsupported) {
		t.Errorf("Analyze() error = %v, want ErrAnalyzeUnsupported", err)
	}
}

func executorLine(argv []string) string {
	out := argv[0]
	for _, a := range argv[1:] {
		out += " " + a
	}
	return out
}
