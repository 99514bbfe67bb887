package guard

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Policy defines the budgets and filters applied to hook invocations.
type Policy struct {
	EnhanceTimeout  time.Duration `yaml:"enhance_timeout"`
	LearnTimeout    time.Duration `yaml:"learn_timeout"`
	LearnableTools  []string      `yaml:"learnable_tools"`
	IgnoreGlobs     []string      `yaml:"ignore"`
	MaxContentBytes int           `yaml:"max_content_bytes"`
}

// DefaultPolicy provides safe defaults. The enhance budget bounds how long
// the host waits on a prompt; the learn budget only has to avoid a visible
// stall after an edit.
var DefaultPolicy = Policy{
	EnhanceTimeout:  5 * time.Second,
	LearnTimeout:    1 * time.Second,
	LearnableTools:  []string{"Edit", "Write"},
	IgnoreGlobs:     []string{"**/*.lock", "**/go.sum", "**/node_modules/**", "**/vendor/**", "**/.git/**"},
	MaxContentBytes: 96 * 1024,
}

// Violation represents a specific breach of policy.
type Violation struct {
	Rule    string
	Message string
}

func (v *Violation) Error() string {
	return v.Rule + ": " + v.Message
}

// Guard enforces the policy.
type Guard struct {
	policy Policy
}

// New returns a guard for p. Zero or negative budgets are replaced by the
// defaults so every invocation has a strictly positive deadline.
func New(p Policy) *Guard {
	if p.EnhanceTimeout <= 0 {
		p.EnhanceTimeout = DefaultPolicy.EnhanceTimeout
	}
	if p.LearnTimeout <= 0 {
		p.LearnTimeout = DefaultPolicy.LearnTimeout
	}
	if len(p.LearnableTools) == 0 {
		p.LearnableTools = DefaultPolicy.LearnableTools
	}
	return &Guard{policy: p}
}

// Policy returns the guard's current policy configuration.
func (g *Guard) Policy() Policy {
	return g.policy
}

func (g *Guard) EnhanceTimeout() time.Duration { return g.policy.EnhanceTimeout }
func (g *Guard) LearnTimeout() time.Duration   { return g.policy.LearnTimeout }

// CheckTool verifies the tool is one whose output may be learned from.
func (g *Guard) CheckTool(tool string) *Violation {
	for _, allow := range g.policy.LearnableTools {
		if allow == tool {
			return nil
		}
	}
	return &Violation{Rule: "learnable_tools", Message: "tool not learnable: " + tool}
}

// CheckPath rejects files matching one of the ignore globs. An empty path
// always passes.
func (g *Guard) CheckPath(path string) *Violation {
	if path == "" {
		return nil
	}
	candidate := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, pattern := range g.policy.IgnoreGlobs {
		if match, err := doublestar.Match(pattern, candidate); err == nil && match {
			return &Violation{Rule: "ignore", Message: "path ignored by " + pattern + ": " + path}
		}
	}
	return nil
}

// CheckContent rejects blank content and content too large to be passed as
// a single process argument.
func (g *Guard) CheckContent(content string) *Violation {
	if strings.TrimSpace(content) == "" {
		return &Violation{Rule: "content", Message: "content is empty"}
	}
	if max := g.policy.MaxContentBytes; max > 0 && len(content) > max {
		return &Violation{Rule: "max_content_bytes", Message: fmt.Sprintf("content is %d bytes, limit %d", len(content), max)}
	}
	return nil
}
