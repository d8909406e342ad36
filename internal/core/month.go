package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month int // 1-12
}

// NewMonthKey normalizes out-of-range months (13 -> January next year).
func NewMonthKey(year, month int) MonthKey {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return MonthKey{Year: t.Year(), Month: int(t.Month())}
}

// KeyOf returns the month containing t.
func KeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: int(t.Month())}
}

// ParseMonthKey parses the "YYYY-MM" form used for record names.
func ParseMonthKey(s string) (MonthKey, error) {
	year, month, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || len(year) != 4 || len(month) != 2 || !digits(year) || !digits(month) {
		return MonthKey{}, fmt.Errorf("invalid month key %q", s)
	}
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	k := MonthKey{Year: y, Month: m}
	if err := k.Validate(); err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return k, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

func (k MonthKey) Validate() error {
	if k.Month < 1 || k.Month > 12 || k.Year < 1 || k.Year > 9999 {
		return fmt.Errorf("invalid month %d-%d", k.Year, k.Month)
	}
	return nil
}

// Prev returns the preceding month; January wraps to December of the prior year.
func (k MonthKey) Prev() MonthKey {
	if k.Month == 1 {
		return MonthKey{Year: k.Year - 1, Month: 12}
	}
	return MonthKey{Year: k.Year, Month: k.Month - 1}
}

// Next returns the following month.
func (k MonthKey) Next() MonthKey {
	if k.Month == 12 {
		return MonthKey{Year: k.Year + 1, Month: 1}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Compare returns -1, 0 or 1 in chronological order.
func (k MonthKey) Compare(o MonthKey) int {
	switch {
	case k.Year != o.Year:
		if k.Year < o.Year {
			return -1
		}
		return 1
	case k.Month < o.Month:
		return -1
	case k.Month > o.Month:
		return 1
	}
	return 0
}

func (k MonthKey) Before(o MonthKey) bool { return k.Compare(o) < 0 }
func (k MonthKey) After(o MonthKey) bool  { return k.Compare(o) > 0 }

// FirstDay returns the 1st of the month.
func (k MonthKey) FirstDay() Date {
	return NewDate(k.Year, k.Month, 1)
}

// SortMonthKeys sorts keys in ascending chronological order.
func SortMonthKeys(keys []MonthKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
}

// MonthSheet holds all transactions of one calendar month, sorted by date.
type MonthSheet struct {
	Key          MonthKey
	Transactions []Transaction
}

// NewMonthSheet returns an empty sheet for the given month.
func NewMonthSheet(year, month int) *MonthSheet {
	return &MonthSheet{Key: MonthKey{Year: year, Month: month}, Transactions: []Transaction{}}
}

func (s *MonthSheet) Year() int  { return s.Key.Year }
func (s *MonthSheet) Month() int { return s.Key.Month }

// Incomes returns the income transactions in sheet order.
func (s *MonthSheet) Incomes() []Transaction {
	return s.filter(Income)
}

// Expenses returns the expense transactions in sheet order.
func (s *MonthSheet) Expenses() []Transaction {
	return s.filter(Expense)
}

func (s *MonthSheet) filter(kind Kind) []Transaction {
	out := make([]Transaction, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

func (s *MonthSheet) TotalIncome() Money {
	return s.total(Income)
}

func (s *MonthSheet) TotalExpense() Money {
	return s.total(Expense)
}

// Balance is TotalIncome minus TotalExpense.
func (s *MonthSheet) Balance() Money {
	return s.TotalIncome().Sub(s.TotalExpense())
}

func (s *MonthSheet) total(kind Kind) Money {
	var sum Money
	for _, t := range s.Transactions {
		if t.Kind == kind {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// ExpenseByCategory folds expenses by category in first-seen order.
func (s *MonthSheet) ExpenseByCategory() *CategoryTotals {
	return s.byCategory(Expense)
}

// IncomeByCategory folds incomes by category in first-seen order.
func (s *MonthSheet) IncomeByCategory() *CategoryTotals {
	return s.byCategory(Income)
}

func (s *MonthSheet) byCategory(kind Kind) *CategoryTotals {
	totals := NewCategoryTotals()
	for _, t := range s.Transactions {
		if t.Kind == kind {
			totals.Add(t.Category, t.Amount)
		}
	}
	return totals
}

// Index returns the position of the transaction with the given id, or -1.
func (s *MonthSheet) Index(id string) int {
	for i, t := range s.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the transaction with the given id.
func (s *MonthSheet) Find(id string) (Transaction, bool) {
	if i := s.Index(id); i >= 0 {
		return s.Transactions[i], true
	}
	return Transaction{}, false
}

// HasRecurring reports whether a transaction generated by the template exists.
func (s *MonthSheet) HasRecurring(recurringID string) bool {
	for _, t := range s.Transactions {
		if t.RecurringID == recurringID {
			return true
		}
	}
	return false
}

// Rollover returns the carry-over transaction, if any.
func (s *MonthSheet) Rollover() (Transaction, bool) {
	for _, t := range s.Transactions {
		if t.IsRollover {
			return t, true
		}
	}
	return Transaction{}, false
}

// RemoveRollovers drops every carry-over line and reports how many were removed.
func (s *MonthSheet) RemoveRollovers() int {
	kept := s.Transactions[:0]
	removed := 0
	for _, t := range s.Transactions {
		if t.IsRollover {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.Transactions = kept
	return removed
}

// SortByDate orders transactions by date; same-date entries keep their
// relative order.
func (s *MonthSheet) SortByDate() {
	sort.SliceStable(s.Transactions, func(i, j int) bool {
		return s.Transactions[i].Date.Before(s.Transactions[j].Date.Time)
	})
}

// Clone returns a deep copy of the sheet.
func (s *MonthSheet) Clone() *MonthSheet {
	out := &MonthSheet{Key: s.Key, Transactions: make([]Transaction, len(s.Transactions))}
	copy(out.Transactions, s.Transactions)
	return out
}
