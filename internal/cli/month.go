package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cashmonitor/internal/core"
	"cashmonitor/internal/services"
)

type txFlags struct {
	date        string
	kind        string
	category    string
	amount      string
	description string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "booking date, YYYY-MM-DD or DD.MM.YYYY (default today)")
	cmd.Flags().StringVarP(&f.kind, "type", "t", "expense", "expense or income")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "amount, e.g. 12,50")
	cmd.Flags().StringVar(&f.description, "description", "", "free text")
}

// apply overwrites the fields of tx whose flags were set.
func (f *txFlags) apply(cmd *cobra.Command, tx core.Transaction, today core.Date) (core.Transaction, error) {
	changed := cmd.Flags().Changed
	if changed("date") {
		d, err := parseDateArg(f.date, today)
		if err != nil {
			return tx, err
		}
		tx.Date = d
	}
	if changed("type") {
		k, err := core.ParseKind(f.kind)
		if err != nil {
			return tx, err
		}
		tx.Kind = k
	}
	if changed("category") {
		tx.Category = strings.TrimSpace(f.category)
	}
	if changed("amount") {
		m, err := core.ParseMoney(f.amount)
		if err != nil {
			return tx, fmt.Errorf("amount %q: %w", f.amount, err)
		}
		tx.Amount = m
	}
	if changed("description") {
		tx.Description = strings.TrimSpace(f.description)
	}
	return tx, nil
}

func (r *runner) monthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show and edit monthly ledgers",
	}
	cmd.AddCommand(
		r.monthListCommand(),
		r.monthShowCommand(),
		r.monthAddCommand(),
		r.monthEditCommand(),
		r.monthDeleteCommand(),
	)
	return cmd
}

func (r *runner) monthListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List months with stored data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := r.app.Store.ListAvailableMonths(cmd.Context())
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				printInfof(cmd.OutOrStdout(), "Noch keine Monate gespeichert")
				return nil
			}
			for _, k := range keys {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", k, monthTitle(k))
			}
			return nil
		},
	}
}

func (r *runner) monthShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [YYYY-MM]",
		Short: "Open a month, booking due recurring items and the carry-over",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseMonthArg(firstArg(args), r.today())
			if err != nil {
				return err
			}
			sheet, err := r.app.Ledger.OpenMonth(cmd.Context(), key.Year, key.Month)
			if err != nil {
				return err
			}
			var prognosis *services.Prognosis
			if r.app.Ledger.IsFuture(key) {
				p := r.app.Ledger.Prognosis()
				prognosis = &p
			}
			renderMonth(cmd.OutOrStdout(), sheet, prognosis)
			return nil
		},
	}
}

func (r *runner) monthAddCommand() *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Book a transaction into the month of its date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateArg(f.date, r.today())
			if err != nil {
				return err
			}
			kind, err := core.ParseKind(f.kind)
			if err != nil {
				return err
			}
			amount, err := core.ParseMoney(f.amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", f.amount, err)
			}
			tx := core.NewTransaction(date, kind, f.category, amount, f.description)
			if err := r.app.Ledger.AddTransaction(cmd.Context(), tx); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s %s %s in %s gebucht [%s]",
				kindWord(tx.Kind), euro(tx.Amount), tx.Category, tx.Date.Key(), shortID(tx.ID)))
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (r *runner) monthEditCommand() *cobra.Command {
	var (
		f     txFlags
		month string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a transaction; a new date moves it to that month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := parseMonthArg(month, r.today())
			if err != nil {
				return err
			}
			if err := r.requirePIN(ctx); err != nil {
				return err
			}
			sheet, err := r.app.Store.LoadMonth(ctx, key.Year, key.Month)
			if err != nil {
				return err
			}
			old, err := resolveID(sheet, args[0])
			if err != nil {
				return err
			}
			if old.IsRollover {
				return fmt.Errorf("the carry-over line is maintained automatically")
			}
			updated, err := f.apply(cmd, old, r.today())
			if err != nil {
				return err
			}
			ok, err := r.app.Ledger.UpdateTransaction(ctx, key, old.ID, updated)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no transaction %q in %s", args[0], key)
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Buchung %s aktualisiert", shortID(old.ID)))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&month, "month", "m", "", "month holding the transaction, YYYY-MM (default current)")
	return cmd
}

func (r *runner) monthDeleteCommand() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := parseMonthArg(month, r.today())
			if err != nil {
				return err
			}
			if err := r.requirePIN(ctx); err != nil {
				return err
			}
			sheet, err := r.app.Store.LoadMonth(ctx, key.Year, key.Month)
			if err != nil {
				return err
			}
			tx, err := resolveID(sheet, args[0])
			if err != nil {
				return err
			}
			ok, err := r.confirm(cmd, fmt.Sprintf("%s %s %s vom %s löschen?",
				kindWord(tx.Kind), euro(tx.Amount), tx.Category, tx.Date.Format("02.01.2006")))
			if err != nil {
				return err
			}
			if !ok {
				printInfof(cmd.OutOrStdout(), "Abgebrochen")
				return nil
			}
			if _, err := r.app.Ledger.DeleteTransaction(ctx, key, tx.ID); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Buchung %s gelöscht", shortID(tx.ID)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month holding the transaction, YYYY-MM (default current)")
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func kindWord(k core.Kind) string {
	if k == core.Income {
		return "Einnahme"
	}
	return "Ausgabe"
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
