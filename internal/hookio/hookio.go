// Package hookio decodes what the host writes to a hook's stdin and encodes
// what the prompt hook writes back.
package hookio

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/felixgeelhaar/mnemo/internal/learn"
)

// MaxPayloadBytes caps how much of stdin is read.
const MaxPayloadBytes = 4 << 20

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("reading hook input: %w", err)
	}
	return data, nil
}

// ReadPrompt returns the user prompt. The input is taken verbatim unless it
// is a JSON object carrying a string "prompt" field, as the host sends for
// prompt-submit events.
func ReadPrompt(r io.Reader) (string, error) {
	data, err := readAll(r)
	if err != nil {
		return "", err
	}
	if p, ok := promptFromJSON(data); ok {
		return p, nil
	}
	return string(data), nil
}

func promptFromJSON(data []byte) (string, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !gjson.ValidBytes(trimmed) {
		return "", false
	}
	p := gjson.GetBytes(trimmed, "prompt")
	if p.Type != gjson.String {
		return "", false
	}
	return p.String(), true
}

// ReadToolUse decodes a post-tool-use event. Two shapes are accepted: the
// host's payload with tool_name and tool_input, and the compact
// {"tool_kind", "content", "file_path"} form. Anything else decodes to an
// Other event, which the learner ignores.
func ReadToolUse(r io.Reader) (learn.ToolUseEvent, error) {
	data, err := readAll(r)
	if err != nil {
		return learn.ToolUseEvent{Kind: learn.Other}, err
	}
	return ParseToolUse(data), nil
}

// ParseToolUse is ReadToolUse on an in-memory payload.
func ParseToolUse(data []byte) learn.ToolUseEvent {
	if !gjson.ValidBytes(data) {
		return learn.ToolUseEvent{Kind: learn.Other}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return learn.ToolUseEvent{Kind: learn.Other}
	}

	if name := doc.Get("tool_name"); name.Exists() {
		kind := learn.ParseToolKind(name.String())
		input := doc.Get("tool_input")
		ev := learn.ToolUseEvent{
			Kind:     kind,
			FilePath: input.Get("file_path").String(),
		}
		switch kind {
		case learn.Edit:
			ev.Content = input.Get("new_string").String()
		case learn.Write:
			ev.Content = input.Get("content").String()
		}
		return ev
	}

	return learn.ToolUseEvent{
		Kind:     learn.ParseToolKind(doc.Get("tool_kind").String()),
		Content:  doc.Get("content").String(),
		FilePath: doc.Get("file_path").String(),
	}
}

// WritePrompt writes the prompt the host should process, terminated by a
// single newline.
func WritePrompt(w io.Writer, prompt string) error {
	prompt = strings.TrimRight(prompt, "\n")
	if _, err := io.WriteString(w, prompt+"\n"); err != nil {
		return fmt.Errorf("writing prompt: %w", err)
	}
	return nil
}
