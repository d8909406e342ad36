package ledger

import (
	"encoding/json"
	"fmt"

	"cashmonitor/internal/core"
)

// Names of the auxiliary records kept next to the month records.
const (
	RecordRecurring = "recurring"
	RecordSavings   = "savings"
	RecordSettings  = "settings"
)

// monthRecord is the persisted form of a MonthSheet.
type monthRecord struct {
	Month        string             `json:"month"`
	Transactions []core.Transaction `json:"transactions"`
}

func encodeMonth(s *core.MonthSheet) ([]byte, error) {
	rec := monthRecord{Month: s.Key.String(), Transactions: s.Transactions}
	if rec.Transactions == nil {
		rec.Transactions = []core.Transaction{}
	}
	return json.MarshalIndent(rec, "", "  ")
}

func decodeMonth(key core.MonthKey, data []byte) (*core.MonthSheet, error) {
	var rec monthRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Month != "" {
		stored, err := core.ParseMonthKey(rec.Month)
		if err != nil {
			return nil, err
		}
		if stored != key {
			return nil, fmt.Errorf("record holds month %s", stored)
		}
	}
	sheet := &core.MonthSheet{Key: key, Transactions: rec.Transactions}
	if sheet.Transactions == nil {
		sheet.Transactions = []core.Transaction{}
	}
	for i, t := range sheet.Transactions {
		if t.ID == "" {
			return nil, fmt.Errorf("transaction %d has no id", i)
		}
		if err := t.Date.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if !t.Kind.Valid() {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, core.ErrInvalidKind)
		}
		if t.Amount.IsNegative() {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, core.ErrNegativeAmount)
		}
	}
	return sheet, nil
}
