package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cashmonitor/internal/core"
	"cashmonitor/internal/export"
)

func (r *runner) exportCommand() *cobra.Command {
	var (
		output string
		from   string
		to     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheets, err := r.app.Store.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			sheets, err = monthRange(sheets, from, to)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := export.WriteCSV(cmd.OutOrStdout(), sheets)
				return err
			}
			n, err := export.WriteFile(output, sheets)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%d Buchungen nach %s exportiert", n, output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "target file, - for stdout")
	cmd.Flags().StringVar(&from, "from", "", "first month, YYYY-MM")
	cmd.Flags().StringVar(&to, "to", "", "last month, YYYY-MM")
	return cmd
}

// monthRange keeps the sheets between from and to, both inclusive and
// optional.
func monthRange(sheets []*core.MonthSheet, from, to string) ([]*core.MonthSheet, error) {
	var lo, hi *core.MonthKey
	if from != "" {
		k, err := core.ParseMonthKey(from)
		if err != nil {
			return nil, err
		}
		lo = &k
	}
	if to != "" {
		k, err := core.ParseMonthKey(to)
		if err != nil {
			return nil, err
		}
		hi = &k
	}
	if lo != nil && hi != nil && lo.After(*hi) {
		return nil, fmt.Errorf("--from %s is after --to %s", lo, hi)
	}
	out := sheets[:0:0]
	for _, s := range sheets {
		if lo != nil && s.Key.Before(*lo) {
			continue
		}
		if hi != nil && s.Key.After(*hi) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
