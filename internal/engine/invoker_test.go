package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeEngine writes an executable shell script standing in for the engine.
func writeEngine(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write engine: %v", err)
	}
	return path
}

func TestInvoker_Success(t *testing.T) {
	bin := writeEngine(t, `printf 'add a login page\n[context: uses JWT auth]\n'`)
	inv := NewInvoker(bin)

	res := inv.Invoke(context.Background(), EnhanceArgs("add a login page"), 5*time.Second, true)
	if res.Outcome != Success {
		t.Fatalf("expected success, got %s (%s)", res.Outcome, res.Detail())
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit 0, got %d", res.ExitCode)
	}
	if got := strings.TrimSpace(res.Stdout); got != "add a login page\n[context: uses JWT auth]" {
		t.Errorf("unexpected stdout %q", got)
	}
	if !res.Accepted() {
		t.Error("expected result to be accepted")
	}
	if res.Duration <= 0 {
		t.Error("expected duration to be recorded")
	}
}

func TestInvoker_PassesArgsVerbatim(t *testing.T) {
	bin := writeEngine(t, `printf '%s|' "$@"`)
	inv := NewInvoker(bin)

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"enhance", EnhanceArgs("hello world"), "enhance|hello world|"},
		{"learn", LearnArgs("def foo(): pass"), "learn|def foo(): pass|--quiet|"},
		{"shell metacharacters", EnhanceArgs("$(rm -rf /); `id`"), "enhance|$(rm -rf /); `id`|"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := inv.Invoke(context.Background(), tc.args, 5*time.Second, true)
			if res.Stdout != tc.want {
				t.Errorf("expected %q, got %q", tc.want, res.Stdout)
			}
		})
	}
}

func TestInvoker_DiscardsStdoutWhenNotCaptured(t *testing.T) {
	bin := writeEngine(t, `echo learned; echo note >&2`)
	inv := NewInvoker(bin)

	res := inv.Invoke(context.Background(), LearnArgs("x"), 5*time.Second, false)
	if res.Outcome != Success {
		t.Fatalf("expected success, got %s", res.Outcome)
	}
	if res.Stdout != "" {
		t.Errorf("expected empty stdout, got %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "note" {
		t.Errorf("expected stderr to be kept, got %q", res.Stderr)
	}
}

func TestInvoker_NonZeroExitIsSuccessOutcome(t *testing.T) {
	bin := writeEngine(t, `echo "index locked" >&2; exit 3`)
	inv := NewInvoker(bin)

	res := inv.Invoke(context.Background(), EnhanceArgs("p"), 5*time.Second, true)
	if res.Outcome != Success {
		t.Fatalf("expected success outcome, got %s", res.Outcome)
	}
	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
	if res.Accepted() {
		t.Error("non-zero exit must not be accepted")
	}
	if f := res.Fault(true); f != FaultRejected {
		t.Errorf("expected %q, got %q", FaultRejected, f)
	}
	if res.Detail() != "index locked" {
		t.Errorf("unexpected detail %q", res.Detail())
	}
}

func TestInvoker_MissingBinary(t *testing.T) {
	inv := NewInvoker(filepath.Join(t.TempDir(), "does-not-exist"))

	res := inv.Invoke(context.Background(), EnhanceArgs("add a login page"), 5*time.Second, true)
	if res.Outcome != Failure {
		t.Fatalf("expected failure, got %s", res.Outcome)
	}
	if res.Stderr == "" {
		t.Error("expected spawn error text in stderr")
	}
	if res.Err == nil {
		t.Error("expected underlying error")
	}
	if f := res.Fault(true); f != FaultSpawn {
		t.Errorf("expected %q, got %q", FaultSpawn, f)
	}
}

func TestInvoker_NotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := NewInvoker(path).Invoke(context.Background(), EnhanceArgs("p"), 5*time.Second, true)
	if res.Outcome != Failure {
		t.Fatalf("expected failure, got %s", res.Outcome)
	}
}

func TestInvoker_Timeout(t *testing.T) {
	bin := writeEngine(t, `sleep 10`)
	inv := NewInvoker(bin)

	start := time.Now()
	res := inv.Invoke(context.Background(), EnhanceArgs("p"), 200*time.Millisecond, true)
	elapsed := time.Since(start)

	if res.Outcome != Timeout {
		t.Fatalf("expected timeout, got %s", res.Outcome)
	}
	if f := res.Fault(true); f != FaultTimeout {
		t.Errorf("expected %q, got %q", FaultTimeout, f)
	}
	if elapsed > 2*time.Second {
		t.Errorf("invoke blocked for %s, expected about 200ms", elapsed)
	}
}

func TestInvoker_InvalidTimeoutDoesNotSpawn(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	bin := writeEngine(t, `touch "`+marker+`"`)
	inv := NewInvoker(bin)

	for _, timeout := range []time.Duration{0, -time.Second} {
		res := inv.Invoke(context.Background(), EnhanceArgs("p"), timeout, true)
		if res.Outcome != Failure {
			t.Errorf("timeout %s: expected failure, got %s", timeout, res.Outcome)
		}
		if !errors.Is(res.Err, ErrInvalidTimeout) {
			t.Errorf("timeout %s: expected ErrInvalidTimeout, got %v", timeout, res.Err)
		}
	}

	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("engine must not be spawned for a non-positive timeout")
	}
}

func TestInvoker_CancelledParent(t *testing.T) {
	bin := writeEngine(t, `sleep 10`)
	inv := NewInvoker(bin)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res := inv.Invoke(ctx, EnhanceArgs("p"), 5*time.Second, true)
	if res.Outcome != Failure {
		t.Fatalf("expected failure on cancellation, got %s", res.Outcome)
	}
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{buf: &buf, limit: 4}

	for _, chunk := range []string{"ab", "cdef", "gh"} {
		n, err := lw.Write([]byte(chunk))
		if err != nil || n != len(chunk) {
			t.Fatalf("Write(%q) = %d, %v", chunk, n, err)
		}
	}
	if buf.String() != "abcd" {
		t.Errorf("expected %q, got %q", "abcd", buf.String())
	}
}
