package hookio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/mnemo/internal/learn"
)

func TestReadPrompt(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"raw text", "add a login page", "add a login page"},
		{"raw multiline", "line one\nline two\n", "line one\nline two\n"},
		{"empty", "", ""},
		{"host payload", `{"session_id":"abc","hook_event_name":"UserPromptSubmit","prompt":"add a login page"}`, "add a login page"},
		{"json without prompt", `{"text":"hi"}`, `{"text":"hi"}`},
		{"json with non-string prompt", `{"prompt": 42}`, `{"prompt": 42}`},
		{"brace but invalid json", "{ not json", "{ not json"},
		{"json array", `["prompt"]`, `["prompt"]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadPrompt(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stdin closed") }

func TestReadPrompt_ReadError(t *testing.T) {
	_, err := ReadPrompt(failingReader{})
	assert.ErrorContains(t, err, "stdin closed")
}

func TestParseToolUse(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  learn.ToolUseEvent
	}{
		{
			name:  "host edit",
			input: `{"hook_event_name":"PostToolUse","tool_name":"Edit","tool_input":{"file_path":"/src/app.py","old_string":"pass","new_string":"def foo(): pass"}}`,
			want:  learn.ToolUseEvent{Kind: learn.Edit, Content: "def foo(): pass", FilePath: "/src/app.py"},
		},
		{
			name:  "host write",
			input: `{"tool_name":"Write","tool_input":{"file_path":"main.go","content":"package main\n"}}`,
			want:  learn.ToolUseEvent{Kind: learn.Write, Content: "package main\n", FilePath: "main.go"},
		},
		{
			name:  "host bash",
			input: `{"tool_name":"Bash","tool_input":{"command":"ls"}}`,
			want:  learn.ToolUseEvent{Kind: learn.Other},
		},
		{
			name:  "host multiedit",
			input: `{"tool_name":"MultiEdit","tool_input":{"file_path":"a.go","edits":[{"new_string":"x"}]}}`,
			want:  learn.ToolUseEvent{Kind: learn.Other, FilePath: "a.go"},
		},
		{
			name:  "compact form",
			input: `{"tool_kind":"Edit","content":"def foo(): pass"}`,
			want:  learn.ToolUseEvent{Kind: learn.Edit, Content: "def foo(): pass"},
		},
		{
			name:  "compact other",
			input: `{"tool_kind":"Other","content":"x"}`,
			want:  learn.ToolUseEvent{Kind: learn.Other, Content: "x"},
		},
		{name: "malformed", input: `{"tool_name":`, want: learn.ToolUseEvent{Kind: learn.Other}},
		{name: "not an object", input: `"Edit"`, want: learn.ToolUseEvent{Kind: learn.Other}},
		{name: "empty", input: ``, want: learn.ToolUseEvent{Kind: learn.Other}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseToolUse([]byte(tc.input)))
		})
	}
}

func TestReadToolUse(t *testing.T) {
	ev, err := ReadToolUse(strings.NewReader(`{"tool_kind":"Write","content":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, learn.Write, ev.Kind)

	ev, err = ReadToolUse(failingReader{})
	assert.Error(t, err)
	assert.Equal(t, learn.Other, ev.Kind)
}

func TestWritePrompt(t *testing.T) {
	testCases := map[string]string{
		"add a login page":                           "add a login page\n",
		"add a login page\n":                         "add a login page\n",
		"add a login page\n[context: uses JWT auth]": "add a login page\n[context: uses JWT auth]\n",
		"": "\n",
	}
	for in, want := range testCases {
		var buf bytes.Buffer
		require.NoError(t, WritePrompt(&buf, in))
		assert.Equal(t, want, buf.String())
	}
}
