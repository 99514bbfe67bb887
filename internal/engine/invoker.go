// Package engine runs the external memory engine as a short-lived subprocess.
//
// Every call spawns one process under a deadline and reports what happened as
// a Result. Nothing in this package returns an error or panics on behalf of
// the engine: spawn failures, timeouts and non-zero exits are all data.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mnemo/engine")

const (
	// maxCapture bounds how much of each output stream is kept in memory.
	maxCapture = 256 * 1024

	// teardownGrace is how long Wait may block on inherited pipes after the
	// process group has been killed.
	teardownGrace = 250 * time.Millisecond
)

// ErrInvalidTimeout is reported in a Failure result when the budget is not
// strictly positive.
var ErrInvalidTimeout = errors.New("timeout must be positive")

// Invoker spawns the engine binary.
type Invoker struct {
	binaryPath string
}

// NewInvoker returns an invoker for the binary at binaryPath. The path is
// not checked here; a missing binary surfaces as a Failure on first use.
func NewInvoker(binaryPath string) *Invoker {
	return &Invoker{binaryPath: binaryPath}
}

// BinaryPath returns the engine location this invoker spawns.
func (i *Invoker) BinaryPath() string {
	return i.binaryPath
}

// Invoke runs the engine once with args and waits at most timeout.
// Stdout is only retained when captureOutput is set; stderr is always kept
// for diagnostics.
func (i *Invoker) Invoke(ctx context.Context, args []string, timeout time.Duration, captureOutput bool) (res Result) {
	op := "unknown"
	if len(args) > 0 {
		op = args[0]
	}

	ctx, span := tracer.Start(ctx, "engine."+op)
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{Outcome: Failure, ExitCode: -1, Err: fmt.Errorf("engine invocation panicked: %v", r)}
			res.Stderr = res.Err.Error()
		}
		res.Duration = time.Since(start)

		span.SetAttributes(
			attribute.String("engine.operation", op),
			attribute.String("engine.outcome", res.Outcome.String()),
			attribute.Int("engine.exit_code", res.ExitCode),
		)
		if res.Outcome != Success {
			span.SetStatus(codes.Error, res.Detail())
		}
	}()

	if timeout <= 0 {
		return Result{Outcome: Failure, ExitCode: -1, Stderr: ErrInvalidTimeout.Error(), Err: ErrInvalidTimeout}
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, i.binaryPath, args...)
	setupProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = teardownGrace

	var stdout, stderr bytes.Buffer
	if captureOutput {
		cmd.Stdout = &limitedWriter{buf: &stdout, limit: maxCapture}
	}
	cmd.Stderr = &limitedWriter{buf: &stderr, limit: maxCapture}

	if err := cmd.Start(); err != nil {
		return Result{Outcome: Failure, ExitCode: -1, Stderr: err.Error(), Err: err}
	}

	waitErr := cmd.Wait()

	if waitErr != nil && errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return Result{
			Outcome:  Timeout,
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      fmt.Errorf("engine %s exceeded %s", op, timeout),
		}
	}

	res = Result{Outcome: Success, Stdout: stdout.String(), Stderr: stderr.String()}
	if waitErr == nil {
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.Exited() {
		res.ExitCode = exitErr.ExitCode()
		return res
	}

	// Killed by a signal from outside, or the parent context was cancelled.
	return Result{
		Outcome:  Failure,
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   strings.TrimSpace(stderr.String() + "\n" + waitErr.Error()),
		Err:      waitErr,
	}
}

// limitedWriter keeps the first limit bytes and silently drops the rest so a
// chatty engine cannot block on a full pipe or exhaust memory.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if room := lw.limit - lw.buf.Len(); room > 0 {
		if len(p) > room {
			lw.buf.Write(p[:room])
		} else {
			lw.buf.Write(p)
		}
	}
	return len(p), nil
}
