package services

import (
	"context"
	"fmt"
	"time"

	"cashmonitor/internal/core"
	"cashmonitor/internal/ledger"
	"cashmonitor/internal/log"
)

// LedgerOptions configures a LedgerService.
type LedgerOptions struct {
	// Cascade re-runs rollover for every later persisted month after a
	// mutation. Without it only the month being opened is refreshed.
	Cascade bool
	Events  EventPublisher
	Now     func() time.Time
	Logger  *log.Logger
}

// LedgerService is the entry point for front ends: it opens months with
// recurring items and rollover applied and funnels every mutation through
// the ledger store.
type LedgerService struct {
	store     *ledger.Store
	recurring *RecurringManager
	engine    *RecurringEngine
	rollover  *RolloverEngine
	events    EventPublisher
	cascade   bool
	now       func() time.Time
	logger    *log.Logger
}

func NewLedgerService(store *ledger.Store, recurring *RecurringManager, opts LedgerOptions) *LedgerService {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &LedgerService{
		store:     store,
		recurring: recurring,
		engine:    NewRecurringEngine(store, MonthlyChecker{}, logger),
		rollover:  NewRolloverEngine(store, logger),
		events:    opts.Events,
		cascade:   opts.Cascade,
		now:       now,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

func (s *LedgerService) Store() *ledger.Store              { return s.store }
func (s *LedgerService) Recurring() *RecurringManager      { return s.recurring }
func (s *LedgerService) Rollover() *RolloverEngine         { return s.rollover }
func (s *LedgerService) RecurringEngine() *RecurringEngine { return s.engine }

// Today returns the service clock truncated to a date.
func (s *LedgerService) Today() core.Date {
	return core.DateOf(s.now())
}

// OpenMonth loads a month, materializes due recurring items (not for future
// months) and refreshes its carry-over line. A changed balance is cascaded
// into later months like any other mutation.
func (s *LedgerService) OpenMonth(ctx context.Context, year, month int) (*core.MonthSheet, error) {
	sheet, err := s.store.LoadMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	before := sheet.Balance()
	added, err := s.engine.Materialize(ctx, sheet, s.recurring.ActiveItems(), s.Today())
	if err != nil {
		return nil, err
	}
	if err := s.rollover.ApplyRollover(ctx, sheet); err != nil {
		return nil, err
	}
	if added > 0 || sheet.Balance() != before {
		if err := s.afterMutation(ctx, sheet.Key, ReasonRollover); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

// AddTransaction books tx into the month owning its date.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) error {
	key := tx.Date.Key()
	sheet, err := s.store.LoadMonth(ctx, key.Year, key.Month)
	if err != nil {
		return err
	}
	if err := s.store.AddTransaction(ctx, sheet, tx); err != nil {
		return err
	}
	return s.afterMutation(ctx, key, ReasonAdd)
}

// UpdateTransaction replaces transaction id of month key. When the new date
// falls into another month the transaction moves there. It reports false
// when id is unknown.
func (s *LedgerService) UpdateTransaction(ctx context.Context, key core.MonthKey, id string, newTx core.Transaction) (bool, error) {
	if err := newTx.Validate(); err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}
	sheet, err := s.store.LoadMonth(ctx, key.Year, key.Month)
	if err != nil {
		return false, err
	}

	target := newTx.Date.Key()
	if target == key {
		ok, err := s.store.UpdateTransaction(ctx, sheet, id, newTx)
		if err != nil || !ok {
			return ok, err
		}
		return true, s.afterMutation(ctx, key, ReasonUpdate)
	}

	if _, found := sheet.Find(id); !found {
		return false, nil
	}
	dest, err := s.store.LoadMonth(ctx, target.Year, target.Month)
	if err != nil {
		return false, err
	}
	newTx.ID = id
	// A moved booking no longer counts as the template's instance.
	newTx.RecurringID = ""
	if err := s.store.AddTransaction(ctx, dest, newTx); err != nil {
		return false, err
	}
	if _, err := s.store.DeleteTransaction(ctx, sheet, id); err != nil {
		return false, err
	}
	first := key
	if target.Before(first) {
		first = target
	}
	s.publish(ctx, target, ReasonUpdate)
	return true, s.afterMutation(ctx, first, ReasonUpdate)
}

// DeleteTransaction removes transaction id from month key. It reports false
// when id is unknown.
func (s *LedgerService) DeleteTransaction(ctx context.Context, key core.MonthKey, id string) (bool, error) {
	sheet, err := s.store.LoadMonth(ctx, key.Year, key.Month)
	if err != nil {
		return false, err
	}
	ok, err := s.store.DeleteTransaction(ctx, sheet, id)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.afterMutation(ctx, key, ReasonDelete)
}

func (s *LedgerService) afterMutation(ctx context.Context, key core.MonthKey, reason string) error {
	s.publish(ctx, key, reason)
	if !s.cascade {
		return nil
	}
	return s.Cascade(ctx, key)
}

// Cascade re-runs rollover, oldest first, for every persisted month after
// from so each carry-over equals the stored balance of its predecessor.
func (s *LedgerService) Cascade(ctx context.Context, from core.MonthKey) error {
	keys, err := s.store.ListAvailableMonths(ctx)
	if err != nil {
		return fmt.Errorf("cascade rollover: %w", err)
	}
	updated := 0
	for _, k := range keys {
		if !k.After(from) {
			continue
		}
		sheet, err := s.store.LoadMonth(ctx, k.Year, k.Month)
		if err != nil {
			return fmt.Errorf("cascade rollover: %w", err)
		}
		before, hadBefore := sheet.Rollover()
		if err := s.rollover.ApplyRollover(ctx, sheet); err != nil {
			return fmt.Errorf("cascade rollover: %w", err)
		}
		after, hasAfter := sheet.Rollover()
		if hadBefore != hasAfter || before.Signed() != after.Signed() {
			s.publish(ctx, k, ReasonRollover)
			updated++
		}
	}
	if updated > 0 {
		s.logger.InfoContext(ctx, "Rollover cascaded",
			log.FieldOperation, log.OpCascade,
			log.FieldMonthKey, from.String(),
			log.FieldCount, updated)
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, key core.MonthKey, reason string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishMonthChanged(ctx, key, reason); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish month change",
			log.FieldOperation, log.OpPublish,
			log.FieldMonthKey, key.String(),
			log.FieldError, err)
	}
}

// Prognosis is the projection shown for future months.
type Prognosis struct {
	Income  core.Money
	Expense core.Money
	Balance core.Money
}

// Prognosis sums the active recurring items.
func (s *LedgerService) Prognosis() Prognosis {
	income, expense := ProjectedTotals(s.recurring.Items())
	return Prognosis{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// IsFuture reports whether key lies after the current month.
func (s *LedgerService) IsFuture(key core.MonthKey) bool {
	return IsFutureMonth(key, s.Today())
}

// Overview summarizes every persisted month.
func (s *LedgerService) Overview(ctx context.Context) (core.Trend, error) {
	sheets, err := s.store.LoadAll(ctx)
	if err != nil {
		return core.Trend{}, fmt.Errorf("overview: %w", err)
	}
	return core.BuildTrend(sheets), nil
}
