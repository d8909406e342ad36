package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryTotalsOrdering(t *testing.T) {
	c := NewCategoryTotals()
	c.Add("Einkauf", Cents(100))
	c.Add("Miete", Cents(800))
	c.Add("Freizeit", Cents(100))
	c.Add("Einkauf", Cents(50))

	assert.Equal(t, []string{"Einkauf", "Miete", "Freizeit"}, c.Names())
	assert.Equal(t, []CategoryAmount{
		{"Miete", Cents(800)},
		{"Einkauf", Cents(150)},
		{"Freizeit", Cents(100)},
	}, c.SortedByAmount())
	assert.Equal(t, Cents(1050), c.Total())
	assert.Equal(t, 3, c.Len())
}

func TestSavingsRate(t *testing.T) {
	assert.Equal(t, 0.0, SavingsRate(Cents(0), Cents(100)))
	assert.InDelta(t, 25.0, SavingsRate(Cents(200000), Cents(150000)), 1e-9)
	assert.InDelta(t, -50.0, SavingsRate(Cents(1000), Cents(1500)), 1e-9)
}

func TestBuildTrend(t *testing.T) {
	jan := NewMonthSheet(2026, 1)
	jan.Transactions = []Transaction{
		tx("2026-01-01", Income, "Gehalt", 200000),
		tx("2026-01-02", Expense, "Miete", 80000),
		tx("2026-01-03", Expense, "Einkauf", 70000),
	}
	feb := NewMonthSheet(2026, 2)
	feb.Transactions = []Transaction{
		tx("2026-02-01", Income, "Gehalt", 100000),
		tx("2026-02-02", Expense, "Einkauf", 20000),
		tx("2026-02-10", Expense, "Urlaub", 90000),
	}

	trend := BuildTrend([]*MonthSheet{jan, feb})

	assert.Len(t, trend.Months, 2)
	assert.Equal(t, Cents(300000), trend.TotalIncome)
	assert.Equal(t, Cents(260000), trend.TotalExpense)
	// (50000 + -10000) / 2
	assert.Equal(t, Cents(20000), trend.AverageBalance)
	assert.InDelta(t, (25.0+-10.0)/2, trend.AverageSavingsRate, 1e-9)
	assert.Equal(t, []CategoryAmount{
		{"Einkauf", Cents(90000)},
		{"Urlaub", Cents(90000)},
		{"Miete", Cents(80000)},
	}, trend.Categories)
	assert.Len(t, trend.TopCategories(2), 2)
	assert.Len(t, trend.TopCategories(10), 3)
}

func TestBuildTrendEmpty(t *testing.T) {
	trend := BuildTrend(nil)
	assert.Empty(t, trend.Months)
	assert.True(t, trend.AverageBalance.IsZero())
	assert.Empty(t, trend.Categories)
}
