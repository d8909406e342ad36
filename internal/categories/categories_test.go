package categories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashmonitor/internal/core"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	set, err := Load(filepath.Join(t.TempDir(), "categories.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), set)
	assert.Equal(t, "Einkauf", set.For(core.Expense)[0])
	assert.Equal(t, "Gehalt", set.For(core.Income)[0])
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	body := "expense:\n  - Lebensmittel\n  - \" Miete \"\n  - Lebensmittel\n  - \"\"\nincome: []\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lebensmittel", "Miete"}, set.Expense)
	assert.Equal(t, Defaults().Income, set.Income)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("expense: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestWithUsed(t *testing.T) {
	sheet := core.NewMonthSheet(2026, 1)
	sheet.Transactions = []core.Transaction{
		{ID: "1", Date: core.NewDate(2026, 1, 1), Kind: core.Expense, Category: "Haustier"},
		{ID: "2", Date: core.NewDate(2026, 1, 1), Kind: core.Expense, Category: "Miete"},
		{ID: "3", Date: core.NewDate(2026, 1, 1), Kind: core.Income, Category: core.RolloverCategoryPositive, IsRollover: true},
		{ID: "4", Date: core.NewDate(2026, 1, 2), Kind: core.Income, Category: "Bonus"},
	}
	base := Defaults()
	set := base.WithUsed([]*core.MonthSheet{sheet})

	assert.Equal(t, "Haustier", set.Expense[len(set.Expense)-1])
	assert.Len(t, set.Expense, len(base.Expense)+1)
	assert.Equal(t, "Bonus", set.Income[len(set.Income)-1])
	assert.NotContains(t, set.Income, core.RolloverCategoryPositive)
	assert.Len(t, base.Expense, 15, "base set is not modified")
}
