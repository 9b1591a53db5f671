package executor

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	errs "github.com/mcgeq/mcg/pkg/errors"
)

func quietExecutor(out *bytes.Buffer) *Executor {
	return New(WithStdio(strings.NewReader(""), out, out))
}

func TestNew(t *testing.T) {
	exec := New()
	if exec == nil {
		t.Fatal("New() returned nil")
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"npm", []string{"install", "lodash", "react", "-D", "--save-exact"}, "npm install lodash react -D --save-exact"},
		{"npm", []string{"install"}, "npm install"},
		{"cargo", []string{"add", "serde"}, "cargo add serde"},
		{"bun", nil, "bun"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatCommand(tt.name, tt.args...); got != tt.want {
				t.Errorf("FormatCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunSuccess(t *testing.T) {
	var out bytes.Buffer
	exec := quietExecutor(&out)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := exec.Run(ctx, "true"); err != nil {
		t.Errorf("Run(true) error = %v", err)
	}
}

func TestRunForwardsStdout(t *testing.T) {
	var out bytes.Buffer
	exec := quietExecutor(&out)

	if err := exec.Run(context.Background(), "echo", "hello"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "hello" {
		t.Errorf("stdout = %q, want hello", out.String())
	}
}

func TestRunExitCode(t *testing.T) {
	var out bytes.Buffer
	exec := quietExecutor(&out)

	tests := []struct {
		name    string
		args    []string
		code    int
		command string
	}{
		{"false", nil, 1, "false"},
		{"sh", []string{"-c", "exit 3"}, 3, "sh -c exit 3"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			err := exec.Run(context.Background(), tt.name, tt.args...)
			if !errs.Is(err, errs.KindCommandFailed) {
				t.Fatalf("Run() error = %v, want CommandFailed", err)
			}
			e, _ := errs.As(err)
			if e.ExitCode != tt.code {
				t.Errorf("ExitCode = %d, want %d", e.ExitCode, tt.code)
			}
			if e.Command != tt.command {
				t.Errorf("Command = %q, want %q", e.Command, tt.command)
			}
		})
	}
}

func TestRunMissingBinary(t *testing.T) {
	var out bytes.Buffer
	exec := quietExecutor(&out)

	err := exec.Run(context.Background(), "mcg-definitely-not-a-real-binary", "add")
	if !errs.Is(err, errs.KindManagerNotInstalled) {
		t.Fatalf("Run() error = %v, want ManagerNotInstalled", err)
	}
	e, _ := errs.As(err)
	if e.Manager != "mcg-definitely-not-a-real-binary" {
		t.Errorf("Manager = %q", e.Manager)
	}
}

func TestOutput(t *testing.T) {
	var out bytes.Buffer
	exec := quietExecutor(&out)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.Output(ctx, "echo", "hello")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if strings.TrimSpace(output) != "hello" {
		t.Errorf("Output() = %q, want hello", output)
	}
	if out.Len() != 0 {
		t.Errorf("captured output leaked to stdout: %q", out.String())
	}
}

func TestOutputFailure(t *testing.T) {
	var out bytes.Buffer
	exec := quietExecutor(&out)

	_, err := exec.Output(context.Background(), "sh", "-c", "echo partial; exit 2")
	if !errs.Is(err, errs.KindCommandFailed) {
		t.Fatalf("Output() error = %v, want CommandFailed", err)
	}
}

func TestOutputCombined(t *testing.T) {
	var out bytes.Buffer
	exec := quietExecutor(&out)

	output, err := exec.OutputCombined(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("OutputCombined() error = %v", err)
	}
	if !strings.Contains(output, "out") || !strings.Contains(output, "err") {
		t.Errorf("OutputCombined() = %q, want both streams", output)
	}
}
