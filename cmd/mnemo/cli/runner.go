package cli

import (
	"context"
	"io"

	"github.com/felixgeelhaar/mnemo/internal/engine"
	"github.com/felixgeelhaar/mnemo/internal/enhance"
	"github.com/felixgeelhaar/mnemo/internal/guard"
	"github.com/felixgeelhaar/mnemo/internal/hookio"
	"github.com/felixgeelhaar/mnemo/internal/learn"
	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/store"
)

// Runner wires the two hooks to a port and an optional journal.
type Runner struct {
	Observer *observe.Observer
	Store    store.Storage
	Port     engine.Port
	Guard    *guard.Guard
}

func NewRunner(obs *observe.Observer, s store.Storage, p engine.Port, g *guard.Guard) *Runner {
	if obs == nil {
		obs = observe.Discard()
	}
	if g == nil {
		g = guard.New(guard.DefaultPolicy)
	}
	return &Runner{
		Observer: obs,
		Store:    s,
		Port:     p,
		Guard:    g,
	}
}

func (r *Runner) recorder() engine.Recorder {
	if r.Store == nil {
		return engine.NopRecorder{}
	}
	return store.NewJournal(r.Store, r.Observer)
}

// Prompt reads the submitted prompt from in and writes the prompt the host
// should use to out. Whatever happens, something is written.
func (r *Runner) Prompt(ctx context.Context, in io.Reader, out io.Writer) {
	prompt, err := hookio.ReadPrompt(in)
	if err != nil {
		r.Observer.Log().Warn().Err(err).Msg("prompt hook input unreadable")
	}

	e := enhance.New(r.Port, r.Guard, r.Observer)
	e.SetRecorder(r.recorder())
	result := e.Enhance(ctx, prompt)

	if err := hookio.WritePrompt(out, result); err != nil {
		r.Observer.Log().Warn().Err(err).Msg("prompt hook output failed")
	}
}

// Learn reads a tool-use event from in and passes it to the learner.
func (r *Runner) Learn(ctx context.Context, in io.Reader) {
	ev, err := hookio.ReadToolUse(in)
	if err != nil {
		r.Observer.Log().Warn().Err(err).Msg("learn hook input unreadable")
		return
	}

	l := learn.New(r.Port, r.Guard, r.Observer)
	l.SetRecorder(r.recorder())
	l.Learn(ctx, ev)
}
