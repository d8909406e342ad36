package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashmonitor/internal/core"
)

func TestWriteCSV(t *testing.T) {
	jan := core.NewMonthSheet(2026, 1)
	jan.Transactions = []core.Transaction{
		{ID: "a", Date: core.NewDate(2026, 1, 1), Kind: core.Income, Category: "Gehalt", Amount: core.Cents(250050)},
		{ID: "b", Date: core.NewDate(2026, 1, 3), Kind: core.Expense, Category: "Restaurant/Café", Amount: core.Cents(1990), Description: "Essen; mit Freunden"},
	}
	feb := core.NewMonthSheet(2026, 2)
	feb.Transactions = []core.Transaction{
		{ID: "c", Date: core.NewDate(2026, 2, 1), Kind: core.Expense, Category: "Miete", Amount: core.Cents(80000)},
	}

	var buf bytes.Buffer
	n, err := WriteCSV(&buf, []*core.MonthSheet{jan, feb})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	out := strings.TrimPrefix(buf.String(), "\uFEFF")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Monat;Datum;Typ;Kategorie;Betrag;Beschreibung", lines[0])
	assert.Equal(t, "2026-01;2026-01-01;Einnahme;Gehalt;2500,50;", lines[1])
	assert.Equal(t, `2026-01;2026-01-03;Ausgabe;Restaurant/Café;19,90;"Essen; mit Freunden"`, lines[2])
	assert.Equal(t, "2026-02;2026-02-01;Ausgabe;Miete;800,00;", lines[3])
}

func TestWriteFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	n, err := WriteFile(path, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\uFEFFMonat;Datum;Typ;Kategorie;Betrag;Beschreibung\n", string(data))
}

func TestWriteFileCreatesDirAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "export.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("alt;", 500)), 0o644))

	sheet := core.NewMonthSheet(2026, 3)
	sheet.Transactions = append(sheet.Transactions,
		core.NewTransaction(core.NewDate(2026, 3, 2), core.Expense, "Miete", core.Cents(80000), ""))
	n, err := WriteFile(path, []*core.MonthSheet{sheet})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "alt;")
	assert.Contains(t, string(data), "2026-03;2026-03-02;Ausgabe;Miete;800,00;")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	fresh := filepath.Join(dir, "a", "b", "export.csv")
	_, err = WriteFile(fresh, nil)
	require.NoError(t, err)
	assert.FileExists(t, fresh)
}

func TestWriteFileFailureLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "export.csv")
	require.NoError(t, os.Mkdir(target, 0o755))

	_, err := WriteFile(target, nil)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())
}
