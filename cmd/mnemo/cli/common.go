package cli

import (
	"io"
	"os"

	"github.com/felixgeelhaar/mnemo/internal/config"
	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/store"
)

// environment is everything a command needs, resolved once per process.
type environment struct {
	Config   config.Config
	Path     string
	Warnings []string
	Observer *observe.Observer
	Store    store.Storage // nil when the database could not be opened
	logFile  *os.File
}

// loadEnvironment resolves config, opens the store and builds the observer.
// It never fails: every problem degrades to defaults and is reported as a
// warning on the diagnostic channel.
func loadEnvironment(diag io.Writer) *environment {
	env := &environment{}

	base, err := config.Load(configPath, nil)
	if err != nil {
		env.Warnings = append(env.Warnings, "config ignored: "+err.Error())
		base = &config.LoadResult{Config: config.Default(), Path: configPath}
	}

	var overrides map[string]string
	if s, err := store.NewSQLiteStore(base.Config.Journal.Path); err != nil {
		env.Warnings = append(env.Warnings, "store unavailable: "+err.Error())
	} else {
		env.Store = s
		if overrides, err = s.ListConfig(); err != nil {
			env.Warnings = append(env.Warnings, "stored config ignored: "+err.Error())
		}
	}

	result := base
	if len(overrides) > 0 {
		if merged, err := config.Load(configPath, overrides); err == nil {
			result = merged
		}
	}
	env.Config = result.Config
	env.Path = result.Path
	env.Warnings = append(env.Warnings, result.Warnings...)

	out := diag
	if env.Config.Log.File != "" {
		if f, err := os.OpenFile(env.Config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			env.logFile = f
			out = f
		} else {
			env.Warnings = append(env.Warnings, "log file unavailable: "+err.Error())
		}
	}

	v := verbose || env.Config.Log.Verbose
	if jsonLogs || env.Config.Log.JSON {
		env.Observer = observe.NewJSON(out, v)
	} else {
		env.Observer = observe.New(out, v)
	}

	for _, w := range env.Warnings {
		env.Observer.Log().Warn().Msg(w)
	}
	return env
}

func (e *environment) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
	e.Observer.Close()
	if e.logFile != nil {
		e.logFile.Close()
	}
}
