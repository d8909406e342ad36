package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cashmonitor/internal/core"
	"cashmonitor/internal/ledger"
	"cashmonitor/internal/storage"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newLedger(t *testing.T) *ledger.Store {
	t.Helper()
	return ledger.NewStore(storage.NewMemoryStore(), nil)
}

func money(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseMoney(s)
	require.NoError(t, err)
	return m
}

func txOn(t *testing.T, date string, kind core.Kind, category, amount string) core.Transaction {
	t.Helper()
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	return core.NewTransaction(d, kind, category, money(t, amount), "")
}

// seed persists a sheet holding txs without going through the engines.
func seed(t *testing.T, store *ledger.Store, year, month int, txs ...core.Transaction) *core.MonthSheet {
	t.Helper()
	sheet := core.NewMonthSheet(year, month)
	sheet.Transactions = append(sheet.Transactions, txs...)
	sheet.SortByDate()
	require.NoError(t, store.SaveMonth(context.Background(), sheet))
	return sheet
}

func rollovers(sheet *core.MonthSheet) int {
	n := 0
	for _, tx := range sheet.Transactions {
		if tx.IsRollover {
			n++
		}
	}
	return n
}

type event struct {
	Key    core.MonthKey
	Reason string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (p *recordingPublisher) PublishMonthChanged(_ context.Context, key core.MonthKey, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{Key: key, Reason: reason})
	return p.err
}

// failingMonths wraps a MonthStore and fails every save.
type failingMonths struct {
	MonthStore
}

var errDiskFull = errors.New("disk full")

func (failingMonths) SaveMonth(context.Context, *core.MonthSheet) error { return errDiskFull }
