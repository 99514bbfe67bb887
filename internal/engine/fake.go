package engine

import (
	"context"
	"sync"
	"time"
)

// Call records one request made to a FakePort.
type Call struct {
	Op      string
	Text    string
	Timeout time.Duration
}

// FakePort is an in-memory Port returning scripted results.
// It is used by tests so no engine binary is needed.
type FakePort struct {
	mu sync.Mutex

	// Results are handed out in order; once exhausted Default is returned.
	Results []Result
	Default Result

	// Delay simulates engine latency. A delay longer than the call's timeout
	// yields a Timeout result after exactly the timeout.
	Delay time.Duration

	calls []Call
}

// NewFakePort returns a fake that answers every call with the given results
// in order.
func NewFakePort(results ...Result) *FakePort {
	return &FakePort{Results: results}
}

func (f *FakePort) Enhance(ctx context.Context, prompt string, timeout time.Duration) Result {
	return f.answer(ctx, Call{Op: OpEnhance, Text: prompt, Timeout: timeout})
}

func (f *FakePort) Learn(ctx context.Context, content string, timeout time.Duration) Result {
	res := f.answer(ctx, Call{Op: OpLearn, Text: content, Timeout: timeout})
	res.Stdout = ""
	return res
}

// Calls returns a copy of every call received so far.
func (f *FakePort) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns the number of calls received so far.
func (f *FakePort) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *FakePort) answer(ctx context.Context, call Call) Result {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	res := f.Default
	if len(f.Results) > 0 {
		res = f.Results[0]
		f.Results = f.Results[1:]
	}
	delay := f.Delay
	f.mu.Unlock()

	if call.Timeout <= 0 {
		return Result{Outcome: Failure, ExitCode: -1, Stderr: ErrInvalidTimeout.Error(), Err: ErrInvalidTimeout}
	}
	if delay <= 0 {
		return res
	}

	wait := delay
	if wait > call.Timeout {
		wait = call.Timeout
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Result{Outcome: Failure, ExitCode: -1, Stderr: ctx.Err().Error(), Err: ctx.Err(), Duration: wait}
	case <-timer.C:
	}

	if delay > call.Timeout {
		return Result{Outcome: Timeout, ExitCode: -1, Duration: call.Timeout, Err: context.DeadlineExceeded}
	}
	res.Duration = delay
	return res
}
