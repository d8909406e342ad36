package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cashmonitor/internal/core"
	"cashmonitor/internal/ledger"
	"cashmonitor/internal/log"
)

// RecurringManager owns the list of recurring templates, persisted as the
// single "recurring" record.
type RecurringManager struct {
	store  *ledger.Store
	items  []core.RecurringItem
	logger *log.Logger
}

// NewRecurringManager loads the templates. A missing record yields an empty
// list; a corrupt one is returned as *ledger.CorruptDataError.
func NewRecurringManager(ctx context.Context, store *ledger.Store, logger *log.Logger) (*RecurringManager, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	m := &RecurringManager{store: store, logger: logger.WithComponent(log.ComponentRecurring)}
	var items []core.RecurringItem
	if _, err := store.ReadRecord(ctx, ledger.RecordRecurring, &items); err != nil {
		return nil, fmt.Errorf("load recurring items: %w", err)
	}
	for i := range items {
		items[i].Day = core.ClampDay(items[i].Day)
	}
	m.items = items
	return m, nil
}

// Items returns a copy of all templates in insertion order.
func (m *RecurringManager) Items() []core.RecurringItem {
	return append([]core.RecurringItem(nil), m.items...)
}

// ActiveItems returns the templates that are switched on.
func (m *RecurringManager) ActiveItems() []core.RecurringItem {
	out := make([]core.RecurringItem, 0, len(m.items))
	for _, it := range m.items {
		if it.Active {
			out = append(out, it)
		}
	}
	return out
}

func (m *RecurringManager) Get(id string) (core.RecurringItem, bool) {
	if i := m.index(id); i >= 0 {
		return m.items[i], true
	}
	return core.RecurringItem{}, false
}

func (m *RecurringManager) index(id string) int {
	for i, it := range m.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (m *RecurringManager) Add(ctx context.Context, item core.RecurringItem) error {
	item.Day = core.ClampDay(item.Day)
	if err := item.Validate(); err != nil {
		return fmt.Errorf("add recurring item: %w", err)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	m.items = append(m.items, item)
	if err := m.save(ctx); err != nil {
		m.items = m.items[:len(m.items)-1]
		return err
	}
	m.logger.InfoContext(ctx, "Recurring item added",
		log.FieldRecurringID, item.ID, log.FieldCategory, item.Category, log.FieldAmountCents, item.Amount.Cents)
	return nil
}

// Update replaces the template with the given id, keeping the id.
func (m *RecurringManager) Update(ctx context.Context, id string, item core.RecurringItem) error {
	i := m.index(id)
	if i < 0 {
		return ErrItemNotFound
	}
	item.ID = id
	item.Day = core.ClampDay(item.Day)
	if err := item.Validate(); err != nil {
		return fmt.Errorf("update recurring item: %w", err)
	}
	prev := m.items[i]
	m.items[i] = item
	if err := m.save(ctx); err != nil {
		m.items[i] = prev
		return err
	}
	return nil
}

// Delete removes the template. Transactions it generated stay untouched.
func (m *RecurringManager) Delete(ctx context.Context, id string) error {
	i := m.index(id)
	if i < 0 {
		return ErrItemNotFound
	}
	prev := m.Items()
	m.items = append(m.items[:i], m.items[i+1:]...)
	if err := m.save(ctx); err != nil {
		m.items = prev
		return err
	}
	m.logger.InfoContext(ctx, "Recurring item deleted", log.FieldRecurringID, id)
	return nil
}

// Toggle flips the Active flag and returns the new state.
func (m *RecurringManager) Toggle(ctx context.Context, id string) (bool, error) {
	i := m.index(id)
	if i < 0 {
		return false, ErrItemNotFound
	}
	m.items[i].Active = !m.items[i].Active
	if err := m.save(ctx); err != nil {
		m.items[i].Active = !m.items[i].Active
		return false, err
	}
	return m.items[i].Active, nil
}

func (m *RecurringManager) save(ctx context.Context) error {
	items := m.items
	if items == nil {
		items = []core.RecurringItem{}
	}
	if err := m.store.WriteRecord(ctx, ledger.RecordRecurring, items); err != nil {
		return fmt.Errorf("save recurring items: %w", err)
	}
	return nil
}

// RecurringEngine turns recurring templates into concrete transactions.
type RecurringEngine struct {
	months  MonthStore
	dueness DuenessChecker
	logger  *log.Logger
}

func NewRecurringEngine(months MonthStore, dueness DuenessChecker, logger *log.Logger) *RecurringEngine {
	if dueness == nil {
		dueness = MonthlyChecker{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RecurringEngine{months: months, dueness: dueness, logger: logger.WithComponent(log.ComponentRecurring)}
}

// Materialize adds one transaction per due item that the sheet does not
// already carry, then sorts and persists once. Calling it again on the same
// sheet adds nothing. It returns the number of transactions added.
func (e *RecurringEngine) Materialize(ctx context.Context, sheet *core.MonthSheet, items []core.RecurringItem, today core.Date) (int, error) {
	if IsFutureMonth(sheet.Key, today) {
		return 0, nil
	}

	added := 0
	for _, item := range items {
		if !e.dueness.IsDue(item, sheet.Key, today) || sheet.HasRecurring(item.ID) {
			continue
		}
		sheet.Transactions = append(sheet.Transactions, item.TransactionFor(sheet.Key))
		added++
	}
	if added == 0 {
		return 0, nil
	}

	sheet.SortByDate()
	if err := e.months.SaveMonth(ctx, sheet); err != nil {
		return added, fmt.Errorf("materialize recurring items: %w", err)
	}
	e.logger.InfoContext(ctx, "Recurring items materialized",
		log.FieldOperation, log.OpMaterialize,
		log.FieldMonthKey, sheet.Key.String(),
		log.FieldCount, added)
	return added, nil
}

// ProjectedTotals sums the active templates by kind. Future months show these
// instead of materialized transactions.
func ProjectedTotals(items []core.RecurringItem) (income, expense core.Money) {
	for _, it := range items {
		if !it.Active {
			continue
		}
		switch it.Kind {
		case core.Income:
			income = income.Add(it.Amount)
		case core.Expense:
			expense = expense.Add(it.Amount)
		}
	}
	return income, expense
}
