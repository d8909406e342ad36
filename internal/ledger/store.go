// Package ledger persists MonthSheets and the auxiliary records (recurring
// templates, savings goals, settings) on top of a storage backend.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cashmonitor/internal/core"
	"cashmonitor/internal/log"
	"cashmonitor/internal/storage"
)

// Store is the Ledger Store. It owns every persisted month record.
type Store struct {
	docs   storage.Store
	logger *log.Logger
}

func NewStore(docs storage.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{docs: docs, logger: logger.WithComponent(log.ComponentLedger)}
}

// LoadMonth returns the persisted sheet, or a fresh empty one when nothing
// is stored for the month. An unparsable record yields *CorruptDataError.
func (s *Store) LoadMonth(ctx context.Context, year, month int) (*core.MonthSheet, error) {
	key := core.MonthKey{Year: year, Month: month}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	data, err := s.docs.Read(ctx, key.String())
	if errors.Is(err, storage.ErrNotFound) {
		return core.NewMonthSheet(year, month), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load month %s: %w", key, err)
	}
	sheet, err := decodeMonth(key, data)
	if err != nil {
		s.logger.ErrorContext(ctx, "Corrupt month record",
			log.FieldRecord, key.String(), log.FieldError, err)
		return nil, &CorruptDataError{Record: key.String(), Err: err}
	}
	return sheet, nil
}

// SaveMonth overwrites the whole month record.
func (s *Store) SaveMonth(ctx context.Context, sheet *core.MonthSheet) error {
	data, err := encodeMonth(sheet)
	if err != nil {
		return fmt.Errorf("encode month %s: %w", sheet.Key, err)
	}
	if err := s.docs.Write(ctx, sheet.Key.String(), data); err != nil {
		return fmt.Errorf("save month %s: %w", sheet.Key, err)
	}
	s.logger.DebugContext(ctx, "Month saved",
		log.FieldMonthKey, sheet.Key.String(), log.FieldCount, len(sheet.Transactions))
	return nil
}

// AddTransaction validates tx, appends it, re-sorts by date and persists.
func (s *Store) AddTransaction(ctx context.Context, sheet *core.MonthSheet, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("add transaction: %w", err)
	}
	sheet.Transactions = append(sheet.Transactions, tx)
	sheet.SortByDate()
	if err := s.SaveMonth(ctx, sheet); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction added", log.NewFields().
		WithMonth(sheet.Year(), sheet.Month()).
		WithTransaction(tx.ID, tx.Kind.String(), tx.Category, tx.Amount.Cents).
		ToSlice()...)
	return nil
}

// UpdateTransaction replaces the transaction with the given id by newTx,
// keeping the id. It reports false when no such transaction exists.
func (s *Store) UpdateTransaction(ctx context.Context, sheet *core.MonthSheet, id string, newTx core.Transaction) (bool, error) {
	if err := newTx.Validate(); err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}
	i := sheet.Index(id)
	if i < 0 {
		return false, nil
	}
	newTx.ID = id
	sheet.Transactions[i] = newTx
	sheet.SortByDate()
	if err := s.SaveMonth(ctx, sheet); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "Transaction updated", log.NewFields().
		WithMonth(sheet.Year(), sheet.Month()).
		WithTransaction(id, newTx.Kind.String(), newTx.Category, newTx.Amount.Cents).
		ToSlice()...)
	return true, nil
}

// DeleteTransaction removes the transaction with the given id. It reports
// false when no such transaction exists.
func (s *Store) DeleteTransaction(ctx context.Context, sheet *core.MonthSheet, id string) (bool, error) {
	i := sheet.Index(id)
	if i < 0 {
		return false, nil
	}
	sheet.Transactions = append(sheet.Transactions[:i], sheet.Transactions[i+1:]...)
	if err := s.SaveMonth(ctx, sheet); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldMonthKey, sheet.Key.String(), log.FieldTxID, id)
	return true, nil
}

// ListAvailableMonths returns every month with a persisted record in
// ascending order. Auxiliary records are skipped.
func (s *Store) ListAvailableMonths(ctx context.Context) ([]core.MonthKey, error) {
	names, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	keys := make([]core.MonthKey, 0, len(names))
	for _, name := range names {
		key, err := core.ParseMonthKey(name)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	core.SortMonthKeys(keys)
	return keys, nil
}

// HasMonth reports whether a record is persisted for key.
func (s *Store) HasMonth(ctx context.Context, key core.MonthKey) (bool, error) {
	_, err := s.docs.Read(ctx, key.String())
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check month %s: %w", key, err)
	}
	return true, nil
}

// TotalExpensesForCategory scans every persisted month and sums the expenses
// booked under category.
func (s *Store) TotalExpensesForCategory(ctx context.Context, category string) (core.Money, error) {
	keys, err := s.ListAvailableMonths(ctx)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, key := range keys {
		sheet, err := s.LoadMonth(ctx, key.Year, key.Month)
		if err != nil {
			return core.Money{}, err
		}
		if amount, ok := sheet.ExpenseByCategory().Get(category); ok {
			total = total.Add(amount)
		}
	}
	return total, nil
}

// LoadAll loads every persisted month in ascending order.
func (s *Store) LoadAll(ctx context.Context) ([]*core.MonthSheet, error) {
	keys, err := s.ListAvailableMonths(ctx)
	if err != nil {
		return nil, err
	}
	sheets := make([]*core.MonthSheet, 0, len(keys))
	for _, key := range keys {
		sheet, err := s.LoadMonth(ctx, key.Year, key.Month)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// ReadRecord decodes the named auxiliary record into v. It reports false when
// the record does not exist; a record that does not decode yields
// *CorruptDataError.
func (s *Store) ReadRecord(ctx context.Context, name string, v any) (bool, error) {
	data, err := s.docs.Read(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, &CorruptDataError{Record: name, Err: err}
	}
	return true, nil
}

// WriteRecord replaces the named auxiliary record with v.
func (s *Store) WriteRecord(ctx context.Context, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.docs.Write(ctx, name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
