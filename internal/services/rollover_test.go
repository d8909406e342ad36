package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashmonitor/internal/core"
)

func TestRolloverScenarioA(t *testing.T) {
	ctx := context.Background()
	store := newLedger(t)
	seed(t, store, 2026, 1,
		txOn(t, "2026-01-01", core.Income, "Gehalt", "2000.00"),
		txOn(t, "2026-01-10", core.Expense, "Miete", "1500.00"),
	)
	engine := NewRolloverEngine(store, nil)

	feb, err := store.LoadMonth(ctx, 2026, 2)
	require.NoError(t, err)
	require.NoError(t, engine.ApplyRollover(ctx, feb))

	require.Len(t, feb.Transactions, 1)
	tx := feb.Transactions[0]
	assert.True(t, tx.IsRollover)
	assert.Equal(t, core.Income, tx.Kind)
	assert.Equal(t, "2026-02-01", tx.Date.String())
	assert.Equal(t, core.Cents(50000), tx.Amount)
	assert.Equal(t, core.RolloverCategoryPositive, tx.Category)

	stored, err := store.LoadMonth(ctx, 2026, 2)
	require.NoError(t, err)
	assert.Equal(t, feb.Transactions, stored.Transactions)
}

func TestRolloverDeficit(t *testing.T) {
	ctx := context.Background()
	store := newLedger(t)
	seed(t, store, 2025, 12,
		txOn(t, "2025-12-01", core.Income, "Gehalt", "100"),
		txOn(t, "2025-12-24", core.Expense, "Geschenke", "250.25"),
	)
	jan := seed(t, store, 2026, 1, txOn(t, "2026-01-01", core.Expense, "Miete", "800"))

	require.NoError(t, NewRolloverEngine(store, nil).ApplyRollover(ctx, jan))

	r, ok := jan.Rollover()
	require.True(t, ok)
	assert.Equal(t, core.Expense, r.Kind)
	assert.Equal(t, core.RolloverCategoryNegative, r.Category)
	assert.Equal(t, core.Cents(15025), r.Amount)
	assert.Equal(t, core.Cents(95025), jan.TotalExpense())
}

func TestRolloverIsExclusiveAndStable(t *testing.T) {
	ctx := context.Background()
	store := newLedger(t)
	seed(t, store, 2026, 3, txOn(t, "2026-03-02", core.Income, "Gehalt", "10"))
	stale1 := txOn(t, "2026-04-01", core.Income, core.RolloverCategoryPositive, "1")
	stale1.IsRollover = true
	stale2 := txOn(t, "2026-04-01", core.Expense, core.RolloverCategoryNegative, "2")
	stale2.IsRollover = true
	apr := seed(t, store, 2026, 4, stale1, stale2, txOn(t, "2026-04-01", core.Expense, "Einkauf", "3"))

	engine := NewRolloverEngine(store, nil)
	require.NoError(t, engine.ApplyRollover(ctx, apr))
	assert.Equal(t, 1, rollovers(apr))
	first, _ := apr.Rollover()
	assert.Equal(t, stale1.ID, first.ID, "existing carry-over keeps its id")

	require.NoError(t, engine.ApplyRollover(ctx, apr))
	assert.Equal(t, 1, rollovers(apr))
	again, _ := apr.Rollover()
	assert.Equal(t, first, again)
	assert.Len(t, apr.Transactions, 2)
}

func TestRolloverThresholdFlip(t *testing.T) {
	ctx := context.Background()
	store := newLedger(t)
	inc := txOn(t, "2026-05-01", core.Income, "Gehalt", "100")
	exp := txOn(t, "2026-05-02", core.Expense, "Einkauf", "99.99")
	may := seed(t, store, 2026, 5, inc, exp)
	engine := NewRolloverEngine(store, nil)

	jun, err := store.LoadMonth(ctx, 2026, 6)
	require.NoError(t, err)
	require.NoError(t, engine.ApplyRollover(ctx, jun))
	r, ok := jun.Rollover()
	require.True(t, ok)
	assert.Equal(t, core.Cents(1), r.Amount)

	// Balance flips to exactly zero: the carry-over disappears.
	exp.Amount = money(t, "100")
	ok, err = store.UpdateTransaction(ctx, may, exp.ID, exp)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, engine.ApplyRollover(ctx, jun))
	assert.Zero(t, rollovers(jun))
	assert.Empty(t, jun.Transactions)
}

func TestRolloverWithoutPreviousMonth(t *testing.T) {
	ctx := context.Background()
	store := newLedger(t)
	stale := txOn(t, "2026-01-01", core.Income, core.RolloverCategoryPositive, "500")
	stale.IsRollover = true
	jan := seed(t, store, 2026, 1, stale, txOn(t, "2026-01-03", core.Income, "Gehalt", "1"))

	require.NoError(t, NewRolloverEngine(store, nil).ApplyRollover(ctx, jan))
	assert.Zero(t, rollovers(jan))

	stored, err := store.LoadMonth(ctx, 2026, 1)
	require.NoError(t, err)
	assert.Zero(t, rollovers(stored))
	assert.Len(t, stored.Transactions, 1)
}

func TestRolloverReadsOnlyStoredPreviousBalance(t *testing.T) {
	ctx := context.Background()
	store := newLedger(t)
	seed(t, store, 2026, 1, txOn(t, "2026-01-01", core.Income, "Gehalt", "100"))
	// February carries nothing yet although January has a balance.
	seed(t, store, 2026, 2, txOn(t, "2026-02-05", core.Income, "Zinsen", "5"))

	mar := core.NewMonthSheet(2026, 3)
	require.NoError(t, NewRolloverEngine(store, nil).ApplyRollover(ctx, mar))
	r, ok := mar.Rollover()
	require.True(t, ok)
	assert.Equal(t, core.Cents(500), r.Amount)
}

func TestRolloverWrapsYear(t *testing.T) {
	ctx := context.Background()
	store := newLedger(t)
	seed(t, store, 2025, 12, txOn(t, "2025-12-01", core.Income, "Gehalt", "42"))

	jan := core.NewMonthSheet(2026, 1)
	require.NoError(t, NewRolloverEngine(store, nil).ApplyRollover(ctx, jan))
	r, ok := jan.Rollover()
	require.True(t, ok)
	assert.Equal(t, "2026-01-01", r.Date.String())
	assert.Equal(t, core.Cents(4200), r.Amount)
}

func TestRolloverSurfacesWriteFailure(t *testing.T) {
	ctx := context.Background()
	engine := NewRolloverEngine(failingMonths{newLedger(t)}, nil)
	err := engine.ApplyRollover(ctx, core.NewMonthSheet(2026, 1))
	assert.ErrorIs(t, err, errDiskFull)
}
