// Package export writes month sheets as flat CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"cashmonitor/internal/core"
)

// Delimiter matches the German spreadsheet default.
const Delimiter = ';'

// utf8BOM lets spreadsheet programs detect the encoding.
const utf8BOM = "\uFEFF"

// Row is one exported transaction.
type Row struct {
	Month       string `csv:"Monat"`
	Date        string `csv:"Datum"`
	Kind        string `csv:"Typ"`
	Category    string `csv:"Kategorie"`
	Amount      string `csv:"Betrag"`
	Description string `csv:"Beschreibung"`
}

// KindLabel renders the kind the way the export shows it.
func KindLabel(k core.Kind) string {
	if k == core.Income {
		return "Einnahme"
	}
	return "Ausgabe"
}

// Rows flattens sheets in the given order, keeping each sheet's order.
func Rows(sheets []*core.MonthSheet) []Row {
	var rows []Row
	for _, sheet := range sheets {
		for _, tx := range sheet.Transactions {
			rows = append(rows, Row{
				Month:       sheet.Key.String(),
				Date:        tx.Date.String(),
				Kind:        KindLabel(tx.Kind),
				Category:    tx.Category,
				Amount:      strings.Replace(tx.Amount.String(), ".", ",", 1),
				Description: tx.Description,
			})
		}
	}
	return rows
}

// WriteCSV writes a header plus one row per transaction.
func WriteCSV(w io.Writer, sheets []*core.MonthSheet) (int, error) {
	rows := Rows(sheets)
	if rows == nil {
		rows = []Row{}
	}
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(rows), nil
}

// WriteFile exports sheets to path, creating missing parent directories.
// The file is written next to path and renamed into place, so an existing
// export is only replaced by a complete one.
func WriteFile(path string, sheets []*core.MonthSheet) (int, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (int, error) {
		tmp.Close()
		os.Remove(tmpName)
		return 0, err
	}

	n, err := WriteCSV(tmp, sheets)
	if err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync export file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("replace export file: %w", err)
	}
	return n, nil
}
