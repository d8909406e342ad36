package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// CategoryTotals is an ordered category -> amount mapping. Iteration follows
// first insertion unless SortedByAmount is used.
type CategoryTotals struct {
	order []string
	sums  map[string]Money
}

func NewCategoryTotals() *CategoryTotals {
	return &CategoryTotals{sums: make(map[string]Money)}
}

// Add accumulates amount under name.
func (c *CategoryTotals) Add(name string, amount Money) {
	if _, ok := c.sums[name]; !ok {
		c.order = append(c.order, name)
	}
	c.sums[name] = c.sums[name].Add(amount)
}

// Merge adds every entry of o in o's order.
func (c *CategoryTotals) Merge(o *CategoryTotals) {
	for _, name := range o.order {
		c.Add(name, o.sums[name])
	}
}

func (c *CategoryTotals) Get(name string) (Money, bool) {
	m, ok := c.sums[name]
	return m, ok
}

func (c *CategoryTotals) Len() int {
	return len(c.order)
}

// Names returns the categories in insertion order.
func (c *CategoryTotals) Names() []string {
	return append([]string(nil), c.order...)
}

// Total sums every category.
func (c *CategoryTotals) Total() Money {
	var sum Money
	for _, m := range c.sums {
		sum = sum.Add(m)
	}
	return sum
}

// Entries returns the totals in insertion order.
func (c *CategoryTotals) Entries() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, CategoryAmount{Name: name, Amount: c.sums[name]})
	}
	return out
}

// SortedByAmount returns the totals by amount descending; equal amounts keep
// insertion order.
func (c *CategoryTotals) SortedByAmount() []CategoryAmount {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.Cents > out[j].Amount.Cents })
	return out
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Key         MonthKey
	Income      Money
	Expense     Money
	Balance     Money
	SavingsRate float64 // percent of income kept; 0 without income
	ByCategory  []CategoryAmount
}

// Overview summarizes a sheet.
func (s *MonthSheet) Overview() MonthOverview {
	income, expense := s.TotalIncome(), s.TotalExpense()
	return MonthOverview{
		Key:         s.Key,
		Income:      income,
		Expense:     expense,
		Balance:     income.Sub(expense),
		SavingsRate: SavingsRate(income, expense),
		ByCategory:  s.ExpenseByCategory().SortedByAmount(),
	}
}

// SavingsRate returns (income-expense)/income in percent, or 0 without income.
func SavingsRate(income, expense Money) float64 {
	if income.Cents <= 0 {
		return 0
	}
	return float64(income.Cents-expense.Cents) / float64(income.Cents) * 100
}

// Trend aggregates several months for reporting.
type Trend struct {
	Months             []MonthOverview
	TotalIncome        Money
	TotalExpense       Money
	AverageBalance     Money
	AverageSavingsRate float64
	Categories         []CategoryAmount // expenses across all months, largest first
}

// BuildTrend summarizes the given sheets in the order provided.
func BuildTrend(sheets []*MonthSheet) Trend {
	var t Trend
	cats := NewCategoryTotals()
	var balanceSum int64
	var rateSum float64
	for _, s := range sheets {
		o := s.Overview()
		t.Months = append(t.Months, o)
		t.TotalIncome = t.TotalIncome.Add(o.Income)
		t.TotalExpense = t.TotalExpense.Add(o.Expense)
		balanceSum += o.Balance.Cents
		rateSum += o.SavingsRate
		cats.Merge(s.ExpenseByCategory())
	}
	if n := len(sheets); n > 0 {
		t.AverageBalance = Money{Cents: balanceSum / int64(n)}
		t.AverageSavingsRate = rateSum / float64(n)
	}
	t.Categories = cats.SortedByAmount()
	return t
}

// TopCategories returns at most n of the largest expense categories.
func (t Trend) TopCategories(n int) []CategoryAmount {
	if n >= len(t.Categories) {
		return t.Categories
	}
	return t.Categories[:n]
}
