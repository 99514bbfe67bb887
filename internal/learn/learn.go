// Package learn records knowledge from completed edits and writes.
//
// Learning is best effort. The call runs synchronously under a short budget
// and its outcome is discarded; nothing here can fail the host's action.
package learn

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mnemo/internal/engine"
	"github.com/felixgeelhaar/mnemo/internal/guard"
	"github.com/felixgeelhaar/mnemo/internal/observe"
)

// ToolKind is the kind of host tool that produced an event.
type ToolKind int

const (
	Other ToolKind = iota
	Edit
	Write
)

func (k ToolKind) String() string {
	switch k {
	case Edit:
		return "Edit"
	case Write:
		return "Write"
	default:
		return "Other"
	}
}

// ParseToolKind maps a host tool name to a ToolKind. Anything but the exact
// names "Edit" and "Write" is Other.
func ParseToolKind(name string) ToolKind {
	switch name {
	case "Edit":
		return Edit
	case "Write":
		return Write
	default:
		return Other
	}
}

// ToolUseEvent describes a completed host tool invocation.
type ToolUseEvent struct {
	Kind     ToolKind
	Content  string
	FilePath string // optional, used for ignore globs
}

// Learner is the post-tool-use hook.
type Learner struct {
	port    engine.Port
	guard   *guard.Guard
	observe *observe.Observer
	rec     engine.Recorder
}

func New(port engine.Port, g *guard.Guard, obs *observe.Observer) *Learner {
	return &Learner{
		port:    port,
		guard:   g,
		observe: obs,
		rec:     engine.NopRecorder{},
	}
}

// SetRecorder attaches a journal for invocation summaries.
func (l *Learner) SetRecorder(rec engine.Recorder) {
	if rec == nil {
		rec = engine.NopRecorder{}
	}
	l.rec = rec
}

// Eligible reports whether ev would reach the engine, and if not, why.
func (l *Learner) Eligible(ev ToolUseEvent) *guard.Violation {
	if ev.Kind != Edit && ev.Kind != Write {
		return &guard.Violation{Rule: "tool_kind", Message: "tool not learnable: " + ev.Kind.String()}
	}
	if v := l.guard.CheckTool(ev.Kind.String()); v != nil {
		return v
	}
	if v := l.guard.CheckContent(ev.Content); v != nil {
		return v
	}
	return l.guard.CheckPath(ev.FilePath)
}

// Learn hands ev to the engine and discards the outcome.
func (l *Learner) Learn(ctx context.Context, ev ToolUseEvent) {
	defer func() {
		if r := recover(); r != nil {
			l.observe.Log().Error().Str("op", engine.OpLearn).Str("panic", fmt.Sprint(r)).Msg("learner recovered")
		}
	}()

	if v := l.Eligible(ev); v != nil {
		l.observe.Log().Debug().Str("rule", v.Rule).Str("reason", v.Message).Msg("skipping learn")
		return
	}

	ctx, span := l.observe.StartSpan(ctx, "hook.learn")
	defer span.End()

	res := l.port.Learn(ctx, ev.Content, l.guard.LearnTimeout())
	fault := res.Fault(false)
	l.rec.Record(ctx, engine.OpLearn, res, fault)

	switch fault {
	case engine.FaultNone:
		l.observe.Log().Info().
			Str("tool", ev.Kind.String()).
			Int("content_bytes", len(ev.Content)).
			Int("duration_ms", int(res.Duration.Milliseconds())).
			Msg("learned from tool use")
	case engine.FaultRejected:
		l.observe.Log().Debug().Int("exit_code", res.ExitCode).Str("detail", res.Detail()).Msg("engine declined to learn")
	default:
		l.observe.Notice(engine.OpLearn, fault, res)
	}
}
