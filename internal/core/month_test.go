package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(date string, kind Kind, category string, cents int64) Transaction {
	d, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return NewTransaction(d, kind, category, Cents(cents), "")
}

func TestMonthKeyNavigation(t *testing.T) {
	jan := MonthKey{Year: 2026, Month: 1}
	assert.Equal(t, MonthKey{Year: 2025, Month: 12}, jan.Prev())
	assert.Equal(t, MonthKey{Year: 2026, Month: 2}, jan.Next())
	assert.Equal(t, MonthKey{Year: 2027, Month: 1}, MonthKey{Year: 2026, Month: 12}.Next())
	assert.Equal(t, MonthKey{Year: 2027, Month: 1}, NewMonthKey(2026, 13))
	assert.True(t, jan.Before(jan.Next()))
	assert.True(t, jan.After(jan.Prev()))
	assert.Equal(t, 0, jan.Compare(MonthKey{Year: 2026, Month: 1}))
	assert.Equal(t, "2026-01-01", jan.FirstDay().String())
}

func TestParseMonthKey(t *testing.T) {
	k, err := ParseMonthKey("2026-03")
	require.NoError(t, err)
	assert.Equal(t, MonthKey{Year: 2026, Month: 3}, k)
	assert.Equal(t, "2026-03", k.String())

	for _, bad := range []string{"recurring", "savings", "2026-13", "2026-3", "26-03", "2026_03", "", "0000-01", "+123-01", "-123-01", "2026-+1", "2026-00"} {
		_, err := ParseMonthKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestSortMonthKeys(t *testing.T) {
	keys := []MonthKey{{2026, 2}, {2025, 12}, {2026, 1}}
	SortMonthKeys(keys)
	assert.Equal(t, []MonthKey{{2025, 12}, {2026, 1}, {2026, 2}}, keys)
}

func TestMonthSheetAggregates(t *testing.T) {
	s := NewMonthSheet(2026, 1)
	s.Transactions = []Transaction{
		tx("2026-01-01", Income, "Gehalt", 200000),
		tx("2026-01-03", Expense, "Miete", 80000),
		tx("2026-01-05", Expense, "Einkauf", 4550),
		tx("2026-01-09", Expense, "Miete", 1),
		tx("2026-01-20", Income, "Zinsen", 33),
	}

	assert.Equal(t, Cents(200033), s.TotalIncome())
	assert.Equal(t, Cents(84551), s.TotalExpense())
	assert.Equal(t, s.TotalIncome().Sub(s.TotalExpense()), s.Balance())
	assert.Len(t, s.Incomes(), 2)
	assert.Len(t, s.Expenses(), 3)

	byCat := s.ExpenseByCategory()
	assert.Equal(t, []string{"Miete", "Einkauf"}, byCat.Names())
	rent, ok := byCat.Get("Miete")
	require.True(t, ok)
	assert.Equal(t, Cents(80001), rent)
	assert.Equal(t, s.TotalExpense(), byCat.Total())

	inc := s.IncomeByCategory()
	assert.Equal(t, []CategoryAmount{{"Gehalt", Cents(200000)}, {"Zinsen", Cents(33)}}, inc.Entries())
}

func TestMonthSheetSortByDateIsStable(t *testing.T) {
	s := NewMonthSheet(2026, 1)
	a := tx("2026-01-10", Expense, "A", 1)
	b := tx("2026-01-05", Expense, "B", 2)
	c := tx("2026-01-10", Expense, "C", 3)
	d := tx("2026-01-01", Income, "D", 4)
	s.Transactions = []Transaction{a, b, c, d}

	s.SortByDate()

	got := make([]string, 0, 4)
	for _, t := range s.Transactions {
		got = append(got, t.Category)
	}
	assert.Equal(t, []string{"D", "B", "A", "C"}, got)
}

func TestMonthSheetLookups(t *testing.T) {
	s := NewMonthSheet(2026, 2)
	a := tx("2026-02-01", Income, "Gehalt", 100)
	r := tx("2026-02-01", Income, RolloverCategoryPositive, 50)
	r.IsRollover = true
	rec := tx("2026-02-03", Expense, "Miete", 80)
	rec.RecurringID = "tmpl-1"
	s.Transactions = []Transaction{r, a, rec}

	assert.Equal(t, 1, s.Index(a.ID))
	assert.Equal(t, -1, s.Index("missing"))
	found, ok := s.Find(rec.ID)
	require.True(t, ok)
	assert.Equal(t, rec, found)
	assert.True(t, s.HasRecurring("tmpl-1"))
	assert.False(t, s.HasRecurring("tmpl-2"))

	got, ok := s.Rollover()
	require.True(t, ok)
	assert.Equal(t, r.ID, got.ID)

	assert.Equal(t, 1, s.RemoveRollovers())
	_, ok = s.Rollover()
	assert.False(t, ok)
	assert.Len(t, s.Transactions, 2)
}

func TestMonthSheetClone(t *testing.T) {
	s := NewMonthSheet(2026, 2)
	s.Transactions = append(s.Transactions, tx("2026-02-01", Income, "Gehalt", 100))
	c := s.Clone()
	c.Transactions[0].Category = "changed"
	assert.Equal(t, "Gehalt", s.Transactions[0].Category)
}
