// Package settings registers the mnemo hooks in the host's settings.json.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Host hook event names.
const (
	EventPromptSubmit = "UserPromptSubmit"
	EventPostToolUse  = "PostToolUse"
)

// LearnMatcher restricts the learn hook to the tools it can use.
const LearnMatcher = "Edit|Write"

// InstallResult is the outcome of Install.
type InstallResult int

const (
	InstallSuccess InstallResult = iota
	InstallAlreadyConfigured
	InstallError
)

func (r InstallResult) String() string {
	switch r {
	case InstallSuccess:
		return "success"
	case InstallAlreadyConfigured:
		return "already_configured"
	default:
		return "error"
	}
}

type InstallOptions struct {
	// SettingsPath defaults to ~/.claude/settings.json.
	SettingsPath string
	// Binary is the absolute path of the mnemo executable.
	Binary string
	// PromptTimeoutSec and LearnTimeoutSec are the host-side kill limits
	// for each hook. They sit above mnemo's own budgets.
	PromptTimeoutSec int
	LearnTimeoutSec  int
}

type InstallOutput struct {
	Result   InstallResult
	Messages []string
	Err      error
}

// DefaultSettingsPath returns the host's user settings file.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "settings.json")
}

// PromptCommand and LearnCommand are the hook command lines for binary.
func PromptCommand(binary string) string { return strconv.Quote(binary) + " hook prompt" }
func LearnCommand(binary string) string  { return strconv.Quote(binary) + " hook learn" }

type hookSpec struct {
	event   string
	matcher string
	command string
	timeout int
}

// Install adds the prompt and learn hooks to the settings file, leaving
// every other key untouched.
//
// Behaviour:
//   - File not found: creates it with just the hooks.
//   - Malformed JSON: writes a .bak copy and returns an error.
//   - Hooks already registered for this binary: InstallAlreadyConfigured.
//   - Otherwise: appends the missing entries and rewrites atomically.
func Install(opts InstallOptions) InstallOutput {
	path := opts.SettingsPath
	if path == "" {
		path = DefaultSettingsPath()
	}
	if opts.Binary == "" {
		return InstallOutput{Result: InstallError, Err: errors.New("binary path is required")}
	}
	if opts.PromptTimeoutSec <= 0 {
		opts.PromptTimeoutSec = 10
	}
	if opts.LearnTimeoutSec <= 0 {
		opts.LearnTimeoutSec = 5
	}

	data, err := os.ReadFile(path)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		data = []byte("{}")
		created = true
	case errors.Is(err, fs.ErrPermission):
		return InstallOutput{Result: InstallError, Err: fmt.Errorf("permission denied reading %s", path)}
	default:
		return InstallOutput{Result: InstallError, Err: fmt.Errorf("reading settings file: %w", err)}
	}

	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		bakPath := path + ".bak"
		if bakErr := os.WriteFile(bakPath, data, 0o644); bakErr != nil {
			return InstallOutput{
				Result: InstallError,
				Err:    fmt.Errorf("settings file contains invalid JSON and backup failed: %w", bakErr),
			}
		}
		return InstallOutput{
			Result:   InstallError,
			Err:      fmt.Errorf("settings file contains invalid JSON (backup saved to %s)", bakPath),
			Messages: []string{"Backup saved to " + bakPath},
		}
	}

	if hooks := gjson.GetBytes(data, "hooks"); hooks.Exists() && !hooks.IsObject() {
		return InstallOutput{Result: InstallError, Err: fmt.Errorf("%s: \"hooks\" is not an object", path)}
	}

	indent := "  "
	if !created {
		indent = detectIndent(data)
	}

	specs := []hookSpec{
		{event: EventPromptSubmit, command: PromptCommand(opts.Binary), timeout: opts.PromptTimeoutSec},
		{event: EventPostToolUse, matcher: LearnMatcher, command: LearnCommand(opts.Binary), timeout: opts.LearnTimeoutSec},
	}

	var messages []string
	for _, spec := range specs {
		if hasCommand(data, spec.event, spec.command) {
			continue
		}
		data, err = addHook(data, spec)
		if err != nil {
			return InstallOutput{Result: InstallError, Err: err}
		}
		messages = append(messages, fmt.Sprintf("Added %s hook: %s", spec.event, spec.command))
	}

	if len(messages) == 0 {
		return InstallOutput{
			Result:   InstallAlreadyConfigured,
			Messages: []string{"mnemo hooks are already registered"},
		}
	}

	if created {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return InstallOutput{Result: InstallError, Err: fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)}
		}
		messages = append([]string{"Created " + path}, messages...)
	}

	formatted := pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: indent})
	if err := writeAtomic(path, formatted); err != nil {
		return InstallOutput{Result: InstallError, Err: fmt.Errorf("writing settings file: %w", err)}
	}

	return InstallOutput{Result: InstallSuccess, Messages: messages}
}

// hasCommand reports whether any matcher group under event already runs
// command.
func hasCommand(data []byte, event, command string) bool {
	found := false
	gjson.GetBytes(data, "hooks."+event).ForEach(func(_, group gjson.Result) bool {
		group.Get("hooks").ForEach(func(_, hook gjson.Result) bool {
			if hook.Get("command").String() == command {
				found = true
			}
			return !found
		})
		return !found
	})
	return found
}

func addHook(data []byte, spec hookSpec) ([]byte, error) {
	hook, err := sjson.Set(`{"type":"command"}`, "command", spec.command)
	if err != nil {
		return nil, err
	}
	if hook, err = sjson.Set(hook, "timeout", spec.timeout); err != nil {
		return nil, err
	}

	group := `{}`
	if spec.matcher != "" {
		if group, err = sjson.Set(group, "matcher", spec.matcher); err != nil {
			return nil, err
		}
	}
	if group, err = sjson.SetRaw(group, "hooks", "["+hook+"]"); err != nil {
		return nil, err
	}

	path := "hooks." + spec.event
	existing := gjson.GetBytes(data, path)
	switch {
	case !existing.Exists():
		return sjson.SetRawBytes(data, path, []byte("["+group+"]"))
	case existing.IsArray():
		return sjson.SetRawBytes(data, path+".-1", []byte(group))
	default:
		return nil, fmt.Errorf("hooks.%s is not an array", spec.event)
	}
}

// writeAtomic replaces path through a temp file in the same directory,
// keeping the original file mode when there is one.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".settings-*.json.tmp")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("permission denied writing to %s", dir)
		}
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	_ = os.Chmod(tmpPath, mode)

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	tmpPath = ""
	return nil
}
