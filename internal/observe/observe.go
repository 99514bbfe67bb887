// Package observe is the diagnostic channel of the hooks.
//
// Everything it writes is advisory: the host never parses it, so it must be
// pointed at stderr (or a file), never at the stream the host reads.
package observe

import (
	"context"
	"io"

	"github.com/felixgeelhaar/bolt/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/mnemo/internal/engine"
)

var tracer = otel.Tracer("mnemo")

// Observer handles logging and tracing
type Observer struct {
	log *bolt.Logger
}

// New creates a new Observer with console output.
// If verbose is false, only warnings and errors are shown.
func New(out io.Writer, verbose bool) *Observer {
	handler := bolt.NewConsoleHandler(out)
	l := bolt.New(handler)

	if !verbose {
		l.SetLevel(bolt.WARN)
	}

	return &Observer{
		log: l,
	}
}

// NewJSON creates a new Observer with JSON output.
// If verbose is false, only warnings and errors are shown.
func NewJSON(out io.Writer, verbose bool) *Observer {
	handler := bolt.NewJSONHandler(out)
	l := bolt.New(handler)

	if !verbose {
		l.SetLevel(bolt.WARN)
	}

	return &Observer{
		log: l,
	}
}

// Discard returns an Observer that drops everything.
func Discard() *Observer {
	return New(io.Discard, false)
}

// Log returns the underlying logger
func (o *Observer) Log() *bolt.Logger {
	return o.log
}

// Notice reports a failed engine invocation. It emits nothing when the
// result carries no fault.
func (o *Observer) Notice(op string, fault engine.Fault, res engine.Result) {
	if fault == engine.FaultNone {
		return
	}
	o.log.Warn().
		Str("op", op).
		Str("fault", string(fault)).
		Str("outcome", res.Outcome.String()).
		Int("exit_code", res.ExitCode).
		Int("duration_ms", int(res.Duration.Milliseconds())).
		Str("detail", res.Detail()).
		Msg("engine invocation did not succeed")
}

// StartSpan starts a new OTel span
func (o *Observer) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// Close ensures any buffered logs or traces are flushed (placeholder)
func (o *Observer) Close() error {
	return nil
}
