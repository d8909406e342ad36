package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cashmonitor/internal/core"
)

type recurringFlags struct {
	day         int
	kind        string
	category    string
	amount      string
	description string
}

func (f *recurringFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.day, "day", 1, "day of month, 1-28")
	cmd.Flags().StringVarP(&f.kind, "type", "t", "expense", "expense or income")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "amount, e.g. 12,50")
	cmd.Flags().StringVar(&f.description, "description", "", "free text")
}

func (f *recurringFlags) apply(cmd *cobra.Command, item core.RecurringItem) (core.RecurringItem, error) {
	changed := cmd.Flags().Changed
	if changed("day") {
		item.Day = core.ClampDay(f.day)
	}
	if changed("type") {
		k, err := core.ParseKind(f.kind)
		if err != nil {
			return item, err
		}
		item.Kind = k
	}
	if changed("category") {
		item.Category = strings.TrimSpace(f.category)
	}
	if changed("amount") {
		m, err := core.ParseMoney(f.amount)
		if err != nil {
			return item, fmt.Errorf("amount %q: %w", f.amount, err)
		}
		item.Amount = m
	}
	if changed("description") {
		item.Description = strings.TrimSpace(f.description)
	}
	return item, nil
}

func (r *runner) recurringCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rec"},
		Short:   "Manage monthly recurring transactions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List recurring templates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				renderRecurring(cmd.OutOrStdout(), r.app.Recurring.Items())
				return nil
			},
		},
		r.recurringAddCommand(),
		r.recurringEditCommand(),
		r.recurringDeleteCommand(),
		r.recurringToggleCommand(),
	)
	return cmd
}

func (r *runner) recurringID(prefix string) (string, error) {
	items := r.app.Recurring.Items()
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return matchID("recurring item", prefix, ids)
}

func (r *runner) recurringAddCommand() *cobra.Command {
	var f recurringFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recurring template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := core.ParseKind(f.kind)
			if err != nil {
				return err
			}
			amount, err := core.ParseMoney(f.amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", f.amount, err)
			}
			item := core.NewRecurringItem(f.day, kind, f.category, amount, f.description)
			if err := r.app.Recurring.Add(cmd.Context(), item); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s %s am %d. jedes Monats [%s]",
				item.Category, euro(item.Amount), item.Day, shortID(item.ID)))
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (r *runner) recurringEditCommand() *cobra.Command {
	var f recurringFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a recurring template; booked months stay as they are",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := r.requirePIN(ctx); err != nil {
				return err
			}
			id, err := r.recurringID(args[0])
			if err != nil {
				return err
			}
			item, _ := r.app.Recurring.Get(id)
			updated, err := f.apply(cmd, item)
			if err != nil {
				return err
			}
			if err := r.app.Recurring.Update(ctx, id, updated); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Vorlage %s aktualisiert", shortID(id)))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (r *runner) recurringDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recurring template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := r.requirePIN(ctx); err != nil {
				return err
			}
			id, err := r.recurringID(args[0])
			if err != nil {
				return err
			}
			item, _ := r.app.Recurring.Get(id)
			ok, err := r.confirm(cmd, fmt.Sprintf("Vorlage %s %s löschen?", item.Category, euro(item.Amount)))
			if err != nil {
				return err
			}
			if !ok {
				printInfof(cmd.OutOrStdout(), "Abgebrochen")
				return nil
			}
			if err := r.app.Recurring.Delete(ctx, id); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Vorlage %s gelöscht", shortID(id)))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (r *runner) recurringToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pause or resume a recurring template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := r.recurringID(args[0])
			if err != nil {
				return err
			}
			active, err := r.app.Recurring.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := "pausiert"
			if active {
				state = "aktiv"
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Vorlage %s ist jetzt %s", shortID(id), state))
			return nil
		},
	}
}
