package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/mnemo/internal/engine"
	"github.com/felixgeelhaar/mnemo/internal/ui"
)

// probePrompt is sent to the engine by the doctor's enhance check.
const probePrompt = "mnemo doctor probe"

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and engine reachability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := loadEnvironment(cmd.ErrOrStderr())
		defer env.Close()

		cfg := env.Config
		report := ui.NewReport(cmd.OutOrStdout())

		report.Title("mnemo doctor")
		report.Field("config", env.Path)
		report.Field("engine", cfg.Engine.Path)
		report.Field("enhance budget", cfg.Engine.EnhanceTimeout.String())
		report.Field("learn budget", cfg.Engine.LearnTimeout.String())
		report.Field("journal", journalState(env))

		for _, w := range env.Warnings {
			report.Check(false, "config", w)
		}

		execOK, execDetail := checkExecutable(cfg.Engine.Path)
		report.Check(execOK, "engine executable", execDetail)

		port := engine.NewProcessPort(engine.NewInvoker(cfg.Engine.Path))
		res := port.Enhance(cmd.Context(), probePrompt, cfg.Engine.EnhanceTimeout)
		fault := res.Fault(true)
		detail := fmt.Sprintf("%s in %s", res.Outcome, res.Duration.Round(time.Millisecond))
		if fault != engine.FaultNone {
			detail = string(fault) + ", " + detail
			if d := res.Detail(); d != "" {
				detail += ": " + d
			}
		}
		report.Check(fault == engine.FaultNone, "enhance probe", detail)

		if !execOK || fault != engine.FaultNone {
			return fmt.Errorf("engine not healthy")
		}
		return nil
	},
}

func journalState(env *environment) string {
	switch {
	case !env.Config.Journal.Enabled:
		return "disabled"
	case env.Store == nil:
		return "unavailable (" + env.Config.Journal.Path + ")"
	default:
		return env.Config.Journal.Path
	}
}

func checkExecutable(path string) (bool, string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return false, err.Error()
	case info.IsDir():
		return false, "is a directory"
	case info.Mode().Perm()&0o111 == 0:
		return false, "not executable"
	}
	return true, ""
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
