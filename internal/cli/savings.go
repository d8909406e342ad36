package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cashmonitor/internal/core"
)

func (r *runner) savingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "savings",
		Aliases: []string{"goals"},
		Short:   "Manage savings goals",
	}
	cmd.AddCommand(
		r.savingsListCommand(),
		r.savingsAddCommand(),
		r.savingsDeleteCommand(),
		r.savingsDepositCommand(),
	)
	return cmd
}

func (r *runner) goalID(prefix string) (string, error) {
	goals := r.app.Savings.Goals()
	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	return matchID("savings goal", prefix, ids)
}

func (r *runner) savingsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show goals with their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var views []goalView
			for _, g := range r.app.Savings.Goals() {
				p, err := r.app.Savings.Progress(cmd.Context(), g)
				if err != nil {
					return err
				}
				views = append(views, goalView{Goal: g, Progress: p})
			}
			renderGoals(cmd.OutOrStdout(), views)
			return nil
		},
	}
}

func (r *runner) savingsAddCommand() *cobra.Command {
	var (
		name     string
		target   string
		category string
		icon     string
		color    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a goal tracked by an expense category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseMoney(target)
			if err != nil {
				return fmt.Errorf("target %q: %w", target, err)
			}
			goal := core.NewSavingsGoal(name, amount, category, icon)
			if color != "" {
				goal.Color = color
			}
			if err := r.app.Savings.Add(cmd.Context(), goal); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Sparziel %s über %s angelegt [%s]",
				goal.Name, euro(goal.TargetAmount), shortID(goal.ID)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "goal name")
	cmd.Flags().StringVar(&target, "target", "", "target amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "expense category counted towards the goal")
	cmd.Flags().StringVar(&icon, "icon", "", "icon shown next to the goal")
	cmd.Flags().StringVar(&color, "color", "", "progress bar color, e.g. #10b981")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (r *runner) savingsDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a goal; booked deposits stay in the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := r.requirePIN(ctx); err != nil {
				return err
			}
			id, err := r.goalID(args[0])
			if err != nil {
				return err
			}
			goal, _ := r.app.Savings.Get(id)
			ok, err := r.confirm(cmd, fmt.Sprintf("Sparziel %s löschen?", goal.Name))
			if err != nil {
				return err
			}
			if !ok {
				printInfof(cmd.OutOrStdout(), "Abgebrochen")
				return nil
			}
			if err := r.app.Savings.Delete(ctx, id); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Sparziel %s gelöscht", goal.Name))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (r *runner) savingsDepositCommand() *cobra.Command {
	var (
		amount      string
		date        string
		description string
	)
	cmd := &cobra.Command{
		Use:   "deposit <id>",
		Short: "Book an expense in the goal's category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := r.goalID(args[0])
			if err != nil {
				return err
			}
			d, err := parseDateArg(date, r.today())
			if err != nil {
				return err
			}
			m, err := core.ParseMoney(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}
			tx, err := r.app.Savings.Deposit(cmd.Context(), id, d, m, description, r.app.Ledger)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s auf %s gebucht (%s)", euro(tx.Amount), tx.Category, tx.Date.Key()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount to put aside")
	cmd.Flags().StringVarP(&date, "date", "d", "", "booking date (default today)")
	cmd.Flags().StringVar(&description, "description", "Sparen", "free text")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
