// Package config resolves the hooks' settings from defaults, the YAML file,
// values stored with `mnemo config set`, and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/mnemo/internal/guard"
)

const (
	// EnvHome overrides the ~/.mnemo base directory.
	EnvHome = "MNEMO_HOME"
	// EnvEngine overrides engine.path.
	EnvEngine = "MNEMO_ENGINE"
)

type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
	Learn   LearnConfig   `yaml:"learn"`
}

type EngineConfig struct {
	Path           string        `yaml:"path"`
	EnhanceTimeout time.Duration `yaml:"enhance_timeout"`
	LearnTimeout   time.Duration `yaml:"learn_timeout"`
}

type LogConfig struct {
	Verbose bool   `yaml:"verbose"`
	JSON    bool   `yaml:"json"`
	File    string `yaml:"file"` // diagnostics are appended here instead of stderr when set
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LearnConfig struct {
	Ignore          []string `yaml:"ignore"`
	MaxContentBytes int      `yaml:"max_content_bytes"`
}

// LoadResult carries the resolved config and any non-fatal problems found
// while resolving it.
type LoadResult struct {
	Config   Config
	Path     string
	Warnings []string
}

// HomeDir returns the mnemo base directory.
func HomeDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mnemo"
	}
	return filepath.Join(home, ".mnemo")
}

// DefaultPath is the config file location.
func DefaultPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() Config {
	home := HomeDir()
	return Config{
		Engine: EngineConfig{
			Path:           filepath.Join(home, "bin", "mnemo-engine"),
			EnhanceTimeout: guard.DefaultPolicy.EnhanceTimeout,
			LearnTimeout:   guard.DefaultPolicy.LearnTimeout,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(home, "mnemo.db"),
		},
		Learn: LearnConfig{
			Ignore:          append([]string(nil), guard.DefaultPolicy.IgnoreGlobs...),
			MaxContentBytes: guard.DefaultPolicy.MaxContentBytes,
		},
	}
}

// Load reads the file at path (DefaultPath when empty), then applies the
// stored overrides and the environment. A missing file is not an error.
func Load(path string, overrides map[string]string) (*LoadResult, error) {
	if path == "" {
		path = DefaultPath()
	}
	result := &LoadResult{Config: Default(), Path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &result.Config, result); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := result.Config.Set(k, overrides[k]); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("stored override ignored: %v", err))
		}
	}

	if p := os.Getenv(EnvEngine); p != "" {
		result.Config.Engine.Path = p
	}

	result.Warnings = append(result.Warnings, result.Config.normalize()...)
	return result, nil
}

func decode(data []byte, cfg *Config, result *LoadResult) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	known := map[string]bool{"engine": true, "log": true, "journal": true, "learn": true}
	for key := range raw {
		if !known[key] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
		}
	}
	sort.Strings(result.Warnings)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// normalize replaces unusable values with defaults and reports each one.
func (c *Config) normalize() []string {
	var warnings []string
	def := Default()

	if c.Engine.EnhanceTimeout <= 0 {
		warnings = append(warnings, fmt.Sprintf("engine.enhance_timeout must be positive, using %s", def.Engine.EnhanceTimeout))
		c.Engine.EnhanceTimeout = def.Engine.EnhanceTimeout
	}
	if c.Engine.LearnTimeout <= 0 {
		warnings = append(warnings, fmt.Sprintf("engine.learn_timeout must be positive, using %s", def.Engine.LearnTimeout))
		c.Engine.LearnTimeout = def.Engine.LearnTimeout
	}
	if c.Engine.Path == "" {
		warnings = append(warnings, "engine.path is empty, using "+def.Engine.Path)
		c.Engine.Path = def.Engine.Path
	}
	if c.Journal.Path == "" {
		c.Journal.Path = def.Journal.Path
	}
	if c.Learn.MaxContentBytes < 0 {
		warnings = append(warnings, "learn.max_content_bytes must not be negative, using no limit")
		c.Learn.MaxContentBytes = 0
	}
	return warnings
}

// Keys lists every key accepted by Set.
var Keys = []string{
	"engine.path",
	"engine.enhance_timeout",
	"engine.learn_timeout",
	"log.verbose",
	"log.json",
	"log.file",
	"journal.enabled",
	"learn.ignore",
	"learn.max_content_bytes",
}

// ErrUnknownKey is returned by Set for keys not in Keys.
var ErrUnknownKey = errors.New("unknown config key")

// Set assigns a single dotted key from its string form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch key {
	case "engine.path":
		c.Engine.Path = value
	case "engine.enhance_timeout":
		c.Engine.EnhanceTimeout, err = time.ParseDuration(value)
	case "engine.learn_timeout":
		c.Engine.LearnTimeout, err = time.ParseDuration(value)
	case "log.verbose":
		c.Log.Verbose, err = strconv.ParseBool(value)
	case "log.json":
		c.Log.JSON, err = strconv.ParseBool(value)
	case "log.file":
		c.Log.File = value
	case "journal.enabled":
		c.Journal.Enabled, err = strconv.ParseBool(value)
	case "learn.ignore":
		c.Learn.Ignore = splitList(value)
	case "learn.max_content_bytes":
		c.Learn.MaxContentBytes, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

// Policy converts the config into the guard policy the hooks enforce.
func (c Config) Policy() guard.Policy {
	p := guard.DefaultPolicy
	p.EnhanceTimeout = c.Engine.EnhanceTimeout
	p.LearnTimeout = c.Engine.LearnTimeout
	p.IgnoreGlobs = c.Learn.Ignore
	p.MaxContentBytes = c.Learn.MaxContentBytes
	return p
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
