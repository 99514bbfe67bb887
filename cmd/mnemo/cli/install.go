package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/mnemo/internal/settings"
)

var (
	installSettings string
	installBinary   string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the mnemo hooks in the host settings",
	Long: `Register the prompt and learn hooks in the host's settings.json.

Existing settings are preserved. Running install twice is a no-op.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bin := installBinary
		if bin == "" {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolving mnemo binary: %w", err)
			}
			if resolved, err := filepath.EvalSymlinks(exe); err == nil {
				exe = resolved
			}
			bin = exe
		}

		out := settings.Install(settings.InstallOptions{
			SettingsPath: installSettings,
			Binary:       bin,
		})
		for _, msg := range out.Messages {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
		return out.Err
	},
}

func init() {
	installCmd.Flags().StringVar(&installSettings, "settings", "", "Settings file (default ~/.claude/settings.json)")
	installCmd.Flags().StringVar(&installBinary, "binary", "", "mnemo executable to register (default: this binary)")
	RootCmd.AddCommand(installCmd)
}
