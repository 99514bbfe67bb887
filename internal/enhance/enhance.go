// Package enhance enriches a user prompt with context recalled by the memory
// engine before the host processes it.
//
// The host blocks on Enhance, so the call is bounded by the guard's enhance
// budget and falls back to the original prompt on any fault.
package enhance

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mnemo/internal/engine"
	"github.com/felixgeelhaar/mnemo/internal/guard"
	"github.com/felixgeelhaar/mnemo/internal/observe"
)

// Enhancer is the prompt-submit hook.
type Enhancer struct {
	port    engine.Port
	guard   *guard.Guard
	observe *observe.Observer
	rec     engine.Recorder
}

func New(port engine.Port, g *guard.Guard, obs *observe.Observer) *Enhancer {
	return &Enhancer{
		port:    port,
		guard:   g,
		observe: obs,
		rec:     engine.NopRecorder{},
	}
}

// SetRecorder attaches a journal for invocation summaries.
func (e *Enhancer) SetRecorder(rec engine.Recorder) {
	if rec == nil {
		rec = engine.NopRecorder{}
	}
	e.rec = rec
}

// Enhance returns the enriched prompt, or prompt itself when the engine
// cannot provide one in time. It never panics.
func (e *Enhancer) Enhance(ctx context.Context, prompt string) (out string) {
	if strings.TrimSpace(prompt) == "" {
		return prompt
	}

	defer func() {
		if r := recover(); r != nil {
			e.observe.Log().Error().Str("op", engine.OpEnhance).Str("panic", fmt.Sprint(r)).Msg("enhancer recovered, passing prompt through")
			out = prompt
		}
	}()

	ctx, span := e.observe.StartSpan(ctx, "hook.enhance")
	defer span.End()

	res := e.port.Enhance(ctx, prompt, e.guard.EnhanceTimeout())
	fault := res.Fault(true)
	e.rec.Record(ctx, engine.OpEnhance, res, fault)

	if fault != engine.FaultNone {
		e.observe.Notice(engine.OpEnhance, fault, res)
		return prompt
	}

	enriched := strings.TrimSpace(res.Stdout)
	e.observe.Log().Info().
		Int("prompt_bytes", len(prompt)).
		Int("enriched_bytes", len(enriched)).
		Int("duration_ms", int(res.Duration.Milliseconds())).
		Msg("prompt enhanced")
	return enriched
}
