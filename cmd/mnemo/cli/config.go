package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/mnemo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage stored configuration overrides.

Stored values take precedence over config.yaml; MNEMO_ENGINE takes precedence
over both. Keys: ` + strings.Join(config.Keys, ", "),
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		probe := config.Default()
		if err := probe.Set(key, value); err != nil {
			return err
		}

		env := loadEnvironment(cmd.ErrOrStderr())
		defer env.Close()
		if env.Store == nil {
			return errors.New("configuration store unavailable")
		}

		if err := env.Store.SetConfig(key, value); err != nil {
			return fmt.Errorf("failed to set config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved: %s\n", key)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env := loadEnvironment(cmd.ErrOrStderr())
		defer env.Close()
		if env.Store == nil {
			return errors.New("configuration store unavailable")
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			values, err := env.Store.ListConfig()
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s=%s\n", k, values[k])
			}
			return nil
		}

		val, err := env.Store.GetConfig(args[0])
		if err != nil {
			return err
		}
		if val == "" {
			fmt.Fprintln(out, "(not set)")
		} else {
			fmt.Fprintln(out, val)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}
