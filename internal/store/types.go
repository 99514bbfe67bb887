package store

import "time"

// Invocation is one journaled engine call.
type Invocation struct {
	ID         string
	Operation  string // "enhance" or "learn"
	Outcome    string // "success", "timeout", "failure"
	Fault      string // empty when the call was usable
	ExitCode   int
	DurationMs int64
	Detail     string
	CreatedAt  time.Time
}

// Storage defines the interface for persistence
type Storage interface {
	// Invocation Journal
	RecordInvocation(inv *Invocation) error
	ListInvocations(limit int) ([]*Invocation, error)

	// Configuration Management
	SetConfig(key, value string) error
	GetConfig(key string) (string, error)
	ListConfig() (map[string]string, error)

	Close() error
}
