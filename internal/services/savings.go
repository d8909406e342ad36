package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cashmonitor/internal/core"
	"cashmonitor/internal/ledger"
	"cashmonitor/internal/log"
)

// Progress is the computed state of a savings goal.
type Progress struct {
	Current  core.Money
	Percent  int // may exceed 100
	Complete bool
}

// CategoryTotaler sums expenses of one category over the whole history.
type CategoryTotaler interface {
	TotalExpensesForCategory(ctx context.Context, category string) (core.Money, error)
}

// TransactionAdder books a transaction into the month owning its date.
type TransactionAdder interface {
	AddTransaction(ctx context.Context, tx core.Transaction) error
}

// SavingsManager owns the savings goals, persisted as the "savings" record.
type SavingsManager struct {
	store  *ledger.Store
	totals CategoryTotaler
	goals  []core.SavingsGoal
	logger *log.Logger
}

// NewSavingsManager loads the goals. A missing or unreadable record starts
// with an empty list and is logged.
func NewSavingsManager(ctx context.Context, store *ledger.Store, logger *log.Logger) *SavingsManager {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	m := &SavingsManager{store: store, totals: store, logger: logger.WithComponent(log.ComponentSavings)}
	var goals []core.SavingsGoal
	if _, err := store.ReadRecord(ctx, ledger.RecordSavings, &goals); err != nil {
		m.logger.WarnContext(ctx, "Savings goals unreadable, starting empty",
			log.FieldRecord, ledger.RecordSavings, log.FieldError, err)
		goals = nil
	}
	m.goals = goals
	return m
}

func (m *SavingsManager) Goals() []core.SavingsGoal {
	return append([]core.SavingsGoal(nil), m.goals...)
}

func (m *SavingsManager) Get(id string) (core.SavingsGoal, bool) {
	if i := m.index(id); i >= 0 {
		return m.goals[i], true
	}
	return core.SavingsGoal{}, false
}

func (m *SavingsManager) index(id string) int {
	for i, g := range m.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (m *SavingsManager) Add(ctx context.Context, goal core.SavingsGoal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("add savings goal: %w", err)
	}
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if goal.Icon == "" {
		goal.Icon = core.DefaultGoalIcon
	}
	if goal.Color == "" {
		goal.Color = core.DefaultGoalColor
	}
	m.goals = append(m.goals, goal)
	if err := m.save(ctx); err != nil {
		m.goals = m.goals[:len(m.goals)-1]
		return err
	}
	m.logger.InfoContext(ctx, "Savings goal added", log.FieldGoalID, goal.ID, log.FieldCategory, goal.Category)
	return nil
}

// Update replaces the goal with the given id, keeping the id.
func (m *SavingsManager) Update(ctx context.Context, id string, goal core.SavingsGoal) error {
	i := m.index(id)
	if i < 0 {
		return ErrGoalNotFound
	}
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	goal.ID = id
	prev := m.goals[i]
	m.goals[i] = goal
	if err := m.save(ctx); err != nil {
		m.goals[i] = prev
		return err
	}
	return nil
}

// Delete removes the goal. Expenses booked under its category stay.
func (m *SavingsManager) Delete(ctx context.Context, id string) error {
	i := m.index(id)
	if i < 0 {
		return ErrGoalNotFound
	}
	prev := m.Goals()
	m.goals = append(m.goals[:i], m.goals[i+1:]...)
	if err := m.save(ctx); err != nil {
		m.goals = prev
		return err
	}
	return nil
}

func (m *SavingsManager) save(ctx context.Context) error {
	goals := m.goals
	if goals == nil {
		goals = []core.SavingsGoal{}
	}
	if err := m.store.WriteRecord(ctx, ledger.RecordSavings, goals); err != nil {
		return fmt.Errorf("save savings goals: %w", err)
	}
	return nil
}

// Progress sums every expense booked under the goal's category.
func (m *SavingsManager) Progress(ctx context.Context, goal core.SavingsGoal) (Progress, error) {
	current, err := m.totals.TotalExpensesForCategory(ctx, goal.Category)
	if err != nil {
		return Progress{}, fmt.Errorf("goal progress: %w", err)
	}
	return ComputeProgress(current, goal.TargetAmount), nil
}

// ComputeProgress derives percent and completion. Percent is floored and not
// clamped; a zero target yields 0 percent.
func ComputeProgress(current, target core.Money) Progress {
	p := Progress{Current: current, Complete: current.Cents >= target.Cents}
	if target.Cents > 0 {
		p.Percent = int(current.Cents * 100 / target.Cents)
	}
	return p
}

// Deposit books an expense in the goal's category. The transaction lands in
// the month owning date.
func (m *SavingsManager) Deposit(ctx context.Context, goalID string, date core.Date, amount core.Money, description string, to TransactionAdder) (core.Transaction, error) {
	goal, ok := m.Get(goalID)
	if !ok {
		return core.Transaction{}, ErrGoalNotFound
	}
	if amount.IsZero() {
		return core.Transaction{}, errors.New("deposit amount must be positive")
	}
	tx := core.NewTransaction(date, core.Expense, goal.Category, amount, description)
	if err := to.AddTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("deposit: %w", err)
	}
	m.logger.InfoContext(ctx, "Savings deposit booked",
		log.FieldGoalID, goal.ID, log.FieldAmountCents, amount.Cents, log.FieldMonthKey, date.Key().String())
	return tx, nil
}
