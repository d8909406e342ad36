package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cashmonitor/internal/core"
)

func (r *runner) overviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Summarize every stored month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trend, err := r.app.Ledger.Overview(cmd.Context())
			if err != nil {
				return err
			}
			renderTrend(cmd.OutOrStdout(), trend)
			return nil
		},
	}
}

func (r *runner) prognosisCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prognosis",
		Short: "Project a month from the active recurring items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := r.app.Ledger.Prognosis()
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, titleStyle.Render("Prognose pro Monat"))
			_, _ = fmt.Fprintf(w, "Einnahmen: %s\nAusgaben:  %s\nSaldo:     %s\n",
				euro(p.Income), euro(p.Expense), euro(p.Balance))
			return nil
		},
	}
}

func (r *runner) categoriesCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List suggested categories, including ones already used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := core.ParseKind(kind)
			if err != nil {
				return err
			}
			sheets, err := r.app.Store.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range r.app.Categories.WithUsed(sheets).For(k) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "expense", "expense or income")
	return cmd
}
