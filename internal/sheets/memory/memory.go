// Package memory is an in-process MonthExporter for tests and dry runs.
package memory

import (
	"context"
	"sync"

	"cashmonitor/internal/core"
	"cashmonitor/internal/sheets"
)

var _ sheets.MonthExporter = (*Exporter)(nil)

// Exporter keeps the last exported layout per tab.
type Exporter struct {
	mu    sync.Mutex
	tabs  map[string][][]any
	calls int
	err   error
}

func New() *Exporter {
	return &Exporter{tabs: make(map[string][][]any)}
}

// FailWith makes subsequent exports return err; nil restores success.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

func (e *Exporter) ExportMonth(ctx context.Context, sheet *core.MonthSheet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return e.err
	}
	e.tabs[sheets.TabTitle(sheet.Key)] = sheets.MonthValues(sheet)
	return nil
}

// Tab returns the rows last written for title.
func (e *Exporter) Tab(title string) ([][]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.tabs[title]
	return v, ok
}

// Tabs returns the number of distinct tabs written.
func (e *Exporter) Tabs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tabs)
}

// Calls counts ExportMonth invocations, failed ones included.
func (e *Exporter) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
