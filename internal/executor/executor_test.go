package executor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// writeScript creates an executable shell script and returns its path
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeCase creates in/out files for one test and returns its descriptor
func writeCase(t *testing.T, dir, name, input, expected string) domain.TestCase {
	t.Helper()
	tc := domain.TestCase{
		Name:       name,
		InputPath:  filepath.Join(dir, name+".in"),
		OutputPath: filepath.Join(dir, name+".out"),
	}
	if err := os.WriteFile(tc.InputPath, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}
	if expected != "" {
		if err := os.WriteFile(tc.OutputPath, []byte(expected), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return tc
}

func newExecutor(command string, timeout time.Duration, args ...string) *Executor {
	return New(Config{Task: "sum", Command: command, Args: args, Timeout: timeout})
}

func TestExecutor_Run_Correct(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `read a b; echo $((a + b))`)
	tc := writeCase(t, dir, "01", "2 3\n", "5\n")

	outcome, err := newExecutor(script, 5*time.Second).Run(context.Background(), tc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.Kind != domain.KindCompleted {
		t.Fatalf("got kind %q, want completed", outcome.Kind)
	}
	if !outcome.Correct {
		t.Errorf("got incorrect, stdout %q", outcome.Stdout)
	}
	if string(outcome.Stdout) != "5\n" {
		t.Errorf("got stdout %q, want %q", outcome.Stdout, "5\n")
	}
	if string(outcome.Stdin) != "2 3\n" {
		t.Errorf("got stdin %q, want %q", outcome.Stdin, "2 3\n")
	}
	if string(outcome.Expected) != "5\n" {
		t.Errorf("got expected %q, want %q", outcome.Expected, "5\n")
	}
	if outcome.Elapsed <= 0 {
		t.Errorf("got elapsed %v, want > 0", outcome.Elapsed)
	}
	if !outcome.Exit.Success() {
		t.Errorf("got exit %s, want success", outcome.Exit)
	}
}

func TestExecutor_Run_WrongAnswer(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `cat >/dev/null; echo 6`)
	tc := writeCase(t, dir, "01", "2 3\n", "5\n")

	outcome, err := newExecutor(script, 5*time.Second).Run(context.Background(), tc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Kind != domain.KindCompleted || outcome.Correct {
		t.Errorf("got %q correct=%v, want completed and incorrect", outcome.Kind, outcome.Correct)
	}
	if outcome.Verdict() != domain.VerdictFail {
		t.Errorf("got verdict %q, want fail", outcome.Verdict())
	}
}

func TestExecutor_Run_TrailingWhitespaceIgnored(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `printf '\n  5  \r\n\n'`)
	tc := writeCase(t, dir, "01", "2 3\n", "5")

	outcome, err := newExecutor(script, 5*time.Second).Run(context.Background(), tc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Correct {
		t.Errorf("got incorrect for stdout %q", outcome.Stdout)
	}
}

func TestExecutor_Run_NonZeroExitStillJudged(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `echo 5; echo oops >&2; exit 3`)
	tc := writeCase(t, dir, "01", "2 3\n", "5\n")

	outcome, err := newExecutor(script, 5*time.Second).Run(context.Background(), tc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Correct {
		t.Error("stdout matched, want correct")
	}
	if outcome.Exit.Code != 3 {
		t.Errorf("got exit code %d, want 3", outcome.Exit.Code)
	}
	if strings.TrimSpace(string(outcome.Stderr)) != "oops" {
		t.Errorf("got stderr %q, want oops", outcome.Stderr)
	}
}

func TestExecutor_Run_Timeout(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `exec sleep 30`)
	tc := writeCase(t, dir, "01", "2 3\n", "5\n")

	timeout := 300 * time.Millisecond
	start := time.Now()
	outcome, err := newExecutor(script, timeout).Run(context.Background(), tc)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("timeout must not be an error, got %v", err)
	}
	if !outcome.IsTimedOut() {
		t.Fatalf("got kind %q, want timed out", outcome.Kind)
	}
	if outcome.Name != "01" {
		t.Errorf("got name %q, want 01", outcome.Name)
	}
	if elapsed < timeout {
		t.Errorf("returned after %v, before the %v timeout", elapsed, timeout)
	}
	if elapsed > timeout+3*time.Second {
		t.Errorf("returned after %v, far beyond the %v timeout", elapsed, timeout)
	}
}

func TestExecutor_Run_MissingExpectedOutput(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `echo 5`)
	tc := writeCase(t, dir, "01", "2 3\n", "")

	_, err := newExecutor(script, 5*time.Second).Run(context.Background(), tc)

	var execErr *domain.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("got %v, want ExecutionError", err)
	}
	if execErr.Op != domain.OpReadExpected {
		t.Errorf("got op %q, want %q", execErr.Op, domain.OpReadExpected)
	}
	if execErr.Test != "01" {
		t.Errorf("got test %q, want 01", execErr.Test)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist: %v", err)
	}
}

func TestExecutor_Run_MissingInput(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `echo 5`)
	tc := domain.TestCase{Name: "01", InputPath: filepath.Join(dir, "nope.in"), OutputPath: filepath.Join(dir, "nope.out")}

	_, err := newExecutor(script, 5*time.Second).Run(context.Background(), tc)

	var execErr *domain.ExecutionError
	if !errors.As(err, &execErr) || execErr.Op != domain.OpReadInput {
		t.Fatalf("got %v, want read input ExecutionError", err)
	}
}

func TestExecutor_Run_MissingExecutable(t *testing.T) {
	dir := t.TempDir()
	tc := writeCase(t, dir, "01", "2 3\n", "5\n")

	_, err := newExecutor(filepath.Join(dir, "does-not-exist"), 5*time.Second).Run(context.Background(), tc)

	var execErr *domain.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("got %v, want ExecutionError", err)
	}
	if execErr.Op != domain.OpSpawn {
		t.Errorf("got op %q, want %q", execErr.Op, domain.OpSpawn)
	}
}

func TestExecutor_Run_Cancelled(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `exec sleep 30`)
	tc := writeCase(t, dir, "01", "2 3\n", "5\n")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	_, err := newExecutor(script, 10*time.Second).Run(ctx, tc)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	var execErr *domain.ExecutionError
	if !errors.As(err, &execErr) {
		t.Errorf("got %T, want ExecutionError", err)
	}
}

func TestExecutor_Run_IgnoresUnreadStdin(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `echo 5`)
	big := strings.Repeat("1 2\n", 1<<18)
	tc := writeCase(t, dir, "01", big, "5\n")

	outcome, err := newExecutor(script, 5*time.Second).Run(context.Background(), tc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Correct {
		t.Errorf("got stdout %q, want 5", outcome.Stdout)
	}
}

func TestExecutor_Run_Args(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "sum", `echo "$1"`)
	tc := writeCase(t, dir, "01", "", "hello\n")

	outcome, err := newExecutor(script, 5*time.Second, "hello").Run(context.Background(), tc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Correct {
		t.Errorf("got stdout %q, want hello", outcome.Stdout)
	}
}

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local"), []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}

	sep := string(filepath.Separator)
	task := "sum"
	if runtime.GOOS == "windows" {
		task = "sum.exe"
	}

	tests := []struct {
		name    string
		task    string
		command string
		want    string
	}{
		{"explicit", "sum", "python3", "python3"},
		{"explicit path", "sum", "./bin/sol", "./bin/sol"},
		{"task name on PATH", "sum", "", task},
		{"file in dir", "local", "local", "." + sep + "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveCommand(tt.task, tt.command, dir); got != tt.want {
				t.Errorf("ResolveCommand(%q, %q) = %q, want %q", tt.task, tt.command, got, tt.want)
			}
		})
	}
}
