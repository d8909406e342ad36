package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cashmonitor/internal/core"
	"cashmonitor/internal/log"
)

// RolloverEngine keeps the carry-over line of a month in sync with the
// stored balance of the month before it.
type RolloverEngine struct {
	months MonthStore
	logger *log.Logger
}

func NewRolloverEngine(months MonthStore, logger *log.Logger) *RolloverEngine {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RolloverEngine{months: months, logger: logger.WithComponent(log.ComponentRollover)}
}

// ApplyRollover replaces the sheet's carry-over transaction with one derived
// from the previous month's stored balance and persists the sheet. Without a
// persisted previous month, or with a zero balance, the sheet ends up with no
// carry-over line. Only the immediately preceding month is read.
func (e *RolloverEngine) ApplyRollover(ctx context.Context, sheet *core.MonthSheet) error {
	prevKey := sheet.Key.Prev()
	has, err := e.months.HasMonth(ctx, prevKey)
	if err != nil {
		return fmt.Errorf("apply rollover: %w", err)
	}

	old, hadOld := sheet.Rollover()
	sheet.RemoveRollovers()

	if has {
		prev, err := e.months.LoadMonth(ctx, prevKey.Year, prevKey.Month)
		if err != nil {
			return fmt.Errorf("apply rollover: load %s: %w", prevKey, err)
		}
		if balance := prev.Balance(); !balance.IsZero() {
			tx := rolloverTransaction(sheet.Key, prevKey, balance)
			if hadOld {
				tx.ID = old.ID
			}
			sheet.Transactions = append([]core.Transaction{tx}, sheet.Transactions...)
			sheet.SortByDate()
		}
	}

	if err := e.months.SaveMonth(ctx, sheet); err != nil {
		return fmt.Errorf("apply rollover: %w", err)
	}

	cur, ok := sheet.Rollover()
	e.logger.DebugContext(ctx, "Rollover applied",
		log.FieldOperation, log.OpRollover,
		log.FieldMonthKey, sheet.Key.String(),
		"previous_found", has,
		"carried", ok,
		log.FieldAmountCents, cur.Signed().Cents)
	return nil
}

func rolloverTransaction(key, prevKey core.MonthKey, balance core.Money) core.Transaction {
	kind, category := core.Income, core.RolloverCategoryPositive
	if balance.IsNegative() {
		kind, category = core.Expense, core.RolloverCategoryNegative
	}
	return core.Transaction{
		ID:          uuid.NewString(),
		Date:        key.FirstDay(),
		Kind:        kind,
		Category:    category,
		Amount:      balance.Abs(),
		Description: "Saldo " + prevKey.String(),
		IsRollover:  true,
	}
}
