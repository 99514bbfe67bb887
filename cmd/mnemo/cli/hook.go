package cli

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/mnemo/internal/engine"
	"github.com/felixgeelhaar/mnemo/internal/guard"
	"github.com/felixgeelhaar/mnemo/internal/store"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Hook entry points called by the host",
	Long: `Hook entry points called by the host.

Both subcommands always exit 0. Engine problems are reported on stderr (or the
configured log file) and never change what the host sees.`,
}

var hookPromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Enhance the prompt read from stdin and print it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, done := newHookRunner(cmd)
		defer done()
		r.Prompt(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		return nil
	},
}

var hookLearnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Learn from the tool-use event read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, done := newHookRunner(cmd)
		defer done()
		r.Learn(cmd.Context(), cmd.InOrStdin())
		return nil
	},
}

func newHookRunner(cmd *cobra.Command) (*Runner, func()) {
	env := loadEnvironment(cmd.ErrOrStderr())

	var journal store.Storage
	if env.Config.Journal.Enabled {
		journal = env.Store
	}

	port := engine.NewProcessPort(engine.NewInvoker(env.Config.Engine.Path))
	r := NewRunner(env.Observer, journal, port, guard.New(env.Config.Policy()))
	return r, env.Close
}

func init() {
	RootCmd.AddCommand(hookCmd)
	hookCmd.AddCommand(hookPromptCmd)
	hookCmd.AddCommand(hookLearnCmd)
}
