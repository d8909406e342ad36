// Package sheets mirrors month sheets into an external spreadsheet.
package sheets

import (
	"context"

	"cashmonitor/internal/core"
	"cashmonitor/internal/export"
)

// MonthExporter replaces the remote copy of one month with the given sheet.
type MonthExporter interface {
	ExportMonth(ctx context.Context, sheet *core.MonthSheet) error
}

// Header is the first row of every exported tab.
var Header = []any{"Datum", "Typ", "Kategorie", "Betrag", "Beschreibung"}

// TabTitle names the tab that holds a month.
func TabTitle(key core.MonthKey) string {
	return key.String()
}

// MonthValues lays out a sheet as spreadsheet rows: the header, one row per
// transaction, an empty row, then income, expense and balance totals.
func MonthValues(sheet *core.MonthSheet) [][]any {
	values := make([][]any, 0, len(sheet.Transactions)+5)
	values = append(values, Header)
	for _, tx := range sheet.Transactions {
		values = append(values, []any{
			tx.Date.String(),
			export.KindLabel(tx.Kind),
			tx.Category,
			tx.Amount.Euros(),
			tx.Description,
		})
	}
	values = append(values,
		[]any{},
		[]any{"Einnahmen", "", "", sheet.TotalIncome().Euros(), ""},
		[]any{"Ausgaben", "", "", sheet.TotalExpense().Euros(), ""},
		[]any{"Saldo", "", "", sheet.Balance().Euros(), ""},
	)
	return values
}
