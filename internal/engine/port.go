package engine

import (
	"context"
	"time"
)

// Operation names understood by the engine binary.
const (
	OpEnhance = "enhance"
	OpLearn   = "learn"
)

// Port is the contract the hooks use to reach the memory engine.
type Port interface {
	// Enhance asks the engine for an enriched version of prompt.
	Enhance(ctx context.Context, prompt string, timeout time.Duration) Result

	// Learn hands content to the engine for recording. Output is not kept.
	Learn(ctx context.Context, content string, timeout time.Duration) Result
}

// ProcessPort implements Port by spawning the engine binary per call.
type ProcessPort struct {
	invoker *Invoker
}

func NewProcessPort(invoker *Invoker) *ProcessPort {
	return &ProcessPort{invoker: invoker}
}

func (p *ProcessPort) Enhance(ctx context.Context, prompt string, timeout time.Duration) Result {
	return p.invoker.Invoke(ctx, EnhanceArgs(prompt), timeout, true)
}

func (p *ProcessPort) Learn(ctx context.Context, content string, timeout time.Duration) Result {
	return p.invoker.Invoke(ctx, LearnArgs(content), timeout, false)
}

// EnhanceArgs is the exact argument vector for an enhance call.
func EnhanceArgs(prompt string) []string {
	return []string{OpEnhance, prompt}
}

// LearnArgs is the exact argument vector for a learn call.
func LearnArgs(content string) []string {
	return []string{OpLearn, content, "--quiet"}
}

// Recorder receives a summary of every invocation a hook makes.
// Implementations must swallow their own errors.
type Recorder interface {
	Record(ctx context.Context, op string, res Result, fault Fault)
}

// NopRecorder discards every record.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, Result, Fault) {}
