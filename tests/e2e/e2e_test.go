package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var binPath string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "mnemo-e2e-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootDir, _ := filepath.Abs("../../")
	binPath = filepath.Join(dir, "mnemo")
	build := exec.Command("go", "build", "-o", binPath, "github.com/felixgeelhaar/mnemo/cmd/mnemo")
	build.Dir = rootDir
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build mnemo: %v\n%s", err, out)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

type run struct {
	stdout   string
	stderr   string
	exitCode int
	elapsed  time.Duration
}

// mnemo runs the built binary with an isolated home and the given engine.
func mnemo(t *testing.T, home, engine, stdin string, args ...string) run {
	t.Helper()
	cmd := exec.Command(binPath, args...)
	cmd.Env = append(os.Environ(), "MNEMO_HOME="+home, "MNEMO_ENGINE="+engine)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := run{stdout: stdout.String(), stderr: stderr.String(), elapsed: time.Since(start)}
	if exitErr, ok := err.(*exec.ExitError); ok {
		r.exitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running mnemo: %v", err)
	}
	return r
}

func writeEngine(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mnemo-engine")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write engine: %v", err)
	}
	return path
}

func TestE2E_PromptEnhanced(t *testing.T) {
	engine := writeEngine(t, `[ "$1" = "enhance" ] || exit 3
printf '%s\n\n[Relevant memory: the API uses JWT auth]\n' "$2"`)

	r := mnemo(t, t.TempDir(), engine, `{"prompt":"add a login page"}`, "hook", "prompt")

	if r.exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", r.exitCode, r.stderr)
	}
	want := "add a login page\n\n[Relevant memory: the API uses JWT auth]\n"
	if r.stdout != want {
		t.Errorf("expected %q, got %q", want, r.stdout)
	}
}

func TestE2E_PromptMissingEngine(t *testing.T) {
	home := t.TempDir()
	r := mnemo(t, home, filepath.Join(home, "no-such-engine"), "add a login page", "hook", "prompt")

	if r.exitCode != 0 {
		t.Fatalf("expected exit 0, got %d", r.exitCode)
	}
	if r.stdout != "add a login page\n" {
		t.Errorf("expected original prompt, got %q", r.stdout)
	}
	if strings.Count(r.stderr, "spawn_failure") != 1 {
		t.Errorf("expected exactly one spawn notice, got %q", r.stderr)
	}
}

func TestE2E_PromptHungEngine(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the full enhance budget")
	}
	engine := writeEngine(t, `sleep 30`)

	r := mnemo(t, t.TempDir(), engine, "add a login page", "hook", "prompt")

	if r.exitCode != 0 {
		t.Fatalf("expected exit 0, got %d", r.exitCode)
	}
	if r.stdout != "add a login page\n" {
		t.Errorf("expected original prompt, got %q", r.stdout)
	}
	if r.elapsed > 7*time.Second {
		t.Errorf("expected the 5s budget to bound the hook, took %v", r.elapsed)
	}
	if !strings.Contains(r.stderr, "timeout") {
		t.Errorf("expected a timeout notice, got %q", r.stderr)
	}
}

func TestE2E_LearnFromEdit(t *testing.T) {
	home := t.TempDir()
	marker := filepath.Join(home, "learned.txt")
	engine := writeEngine(t, `[ "$1" = "learn" ] && [ "$3" = "--quiet" ] && printf '%s' "$2" > '`+marker+`'`)

	payload := `{"session_id":"s1","tool_name":"Edit","tool_input":{"file_path":"/repo/auth.go","old_string":"a","new_string":"func Login() error { return nil }"}}`
	r := mnemo(t, home, engine, payload, "hook", "learn")

	if r.exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", r.exitCode, r.stderr)
	}
	if r.stdout != "" {
		t.Errorf("learn hook must not write stdout, got %q", r.stdout)
	}
	got, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("engine not invoked: %v", err)
	}
	if string(got) != "func Login() error { return nil }" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestE2E_LearnIgnoresReads(t *testing.T) {
	home := t.TempDir()
	marker := filepath.Join(home, "invoked")
	engine := writeEngine(t, `touch '`+marker+`'`)

	r := mnemo(t, home, engine, `{"tool_name":"Read","tool_input":{"file_path":"/repo/auth.go"}}`, "hook", "learn")

	if r.exitCode != 0 {
		t.Fatalf("expected exit 0, got %d", r.exitCode)
	}
	if _, err := os.Stat(marker); err == nil {
		t.Error("engine must not be invoked for a Read event")
	}
}

func TestE2E_LearnFailingEngineIsSilent(t *testing.T) {
	engine := writeEngine(t, `echo "database is locked" >&2; exit 1`)

	r := mnemo(t, t.TempDir(), engine, `{"tool_kind":"Write","content":"hello"}`, "hook", "learn")

	if r.exitCode != 0 {
		t.Fatalf("expected exit 0, got %d", r.exitCode)
	}
	if r.stdout != "" || r.stderr != "" {
		t.Errorf("expected no output for an engine rejection, got stdout=%q stderr=%q", r.stdout, r.stderr)
	}
}

func TestE2E_InstallAndHistory(t *testing.T) {
	home := t.TempDir()
	settingsPath := filepath.Join(home, "settings.json")
	engine := writeEngine(t, `printf 'ok\n'`)

	r := mnemo(t, home, engine, "", "install", "--settings", settingsPath)
	if r.exitCode != 0 {
		t.Fatalf("install failed: %s", r.stderr)
	}
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatalf("settings not written: %v", err)
	}
	if !strings.Contains(string(data), "hook prompt") || !strings.Contains(string(data), "hook learn") {
		t.Errorf("expected both hook commands in settings:\n%s", data)
	}

	mnemo(t, home, engine, "hello", "hook", "prompt")
	r = mnemo(t, home, engine, "", "history")
	if r.exitCode != 0 {
		t.Fatalf("history failed: %s", r.stderr)
	}
	if !strings.Contains(r.stdout, "enhance") || !strings.Contains(r.stdout, "success") {
		t.Errorf("expected the enhance call in history:\n%s", r.stdout)
	}
}
