package store

import (
	"context"

	"github.com/felixgeelhaar/mnemo/internal/engine"
	"github.com/felixgeelhaar/mnemo/internal/observe"
)

// Journal adapts a Storage to engine.Recorder. Write errors are logged and
// dropped so a broken journal never affects a hook.
type Journal struct {
	store   Storage
	observe *observe.Observer
}

func NewJournal(s Storage, obs *observe.Observer) *Journal {
	return &Journal{store: s, observe: obs}
}

func (j *Journal) Record(_ context.Context, op string, res engine.Result, fault engine.Fault) {
	inv := &Invocation{
		Operation:  op,
		Outcome:    res.Outcome.String(),
		Fault:      string(fault),
		ExitCode:   res.ExitCode,
		DurationMs: res.Duration.Milliseconds(),
		Detail:     res.Detail(),
	}
	if err := j.store.RecordInvocation(inv); err != nil {
		j.observe.Log().Debug().Err(err).Msg("journal write dropped")
	}
}
