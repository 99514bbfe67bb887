package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	jsonLogs   bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Memory hooks for coding assistants",
	Long: `mnemo connects a coding assistant's hooks to an external memory engine.
Prompts are enriched with recalled context before the assistant sees them, and
completed edits are handed to the engine to learn from. Every call is bounded by
a short deadline and fails open: the assistant never waits long and never sees
an error from the memory side.`,
	SilenceUsage: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $MNEMO_HOME/config.yaml or ~/.mnemo/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Write diagnostics as JSON")
}
