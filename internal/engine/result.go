package engine

import (
	"strings"
	"time"
)

// Outcome is the tag of an invocation result.
type Outcome int

const (
	// Success means the process exited within budget, whatever its exit code.
	Success Outcome = iota
	// Timeout means the deadline elapsed and the process was killed.
	Timeout
	// Failure means the process could not be spawned or waited on.
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Fault classifies why an invocation did not yield usable output.
type Fault string

const (
	FaultNone       Fault = ""
	FaultSpawn      Fault = "spawn_failure"
	FaultTimeout    Fault = "timeout"
	FaultRejected   Fault = "engine_rejection"
	FaultEmptyReply Fault = "empty_result"
)

// Result is the normalized outcome of exactly one engine invocation.
type Result struct {
	Outcome  Outcome
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error // underlying error for Timeout and Failure, nil otherwise
}

// Accepted reports whether the engine ran to completion and exited 0.
func (r Result) Accepted() bool {
	return r.Outcome == Success && r.ExitCode == 0
}

// Fault derives the fault class of r. When wantOutput is set a successful
// run with blank stdout counts as FaultEmptyReply.
func (r Result) Fault(wantOutput bool) Fault {
	switch r.Outcome {
	case Timeout:
		return FaultTimeout
	case Failure:
		return FaultSpawn
	}
	if r.ExitCode != 0 {
		return FaultRejected
	}
	if wantOutput && strings.TrimSpace(r.Stdout) == "" {
		return FaultEmptyReply
	}
	return FaultNone
}

// Detail returns a one-line human readable description of r for diagnostics.
func (r Result) Detail() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		return msg
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}
