package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/mnemo/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent engine invocations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := loadEnvironment(cmd.ErrOrStderr())
		defer env.Close()
		if env.Store == nil {
			return errors.New("journal unavailable")
		}

		invs, err := env.Store.ListInvocations(historyLimit)
		if err != nil {
			return err
		}

		report := ui.NewReport(cmd.OutOrStdout())
		if len(invs) == 0 {
			report.Empty("no invocations recorded")
			return nil
		}

		rows := make([][]string, 0, len(invs))
		for _, inv := range invs {
			rows = append(rows, []string{
				inv.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				inv.Operation,
				inv.Outcome,
				inv.Fault,
				strconv.Itoa(inv.ExitCode),
				strconv.FormatInt(inv.DurationMs, 10) + "ms",
				inv.Detail,
			})
		}
		report.Table([]string{"TIME", "OP", "OUTCOME", "FAULT", "EXIT", "DURATION", "DETAIL"}, rows, 3)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of rows to show")
	RootCmd.AddCommand(historyCmd)
}
