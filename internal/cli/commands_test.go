package cli

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashmonitor/internal/config"
	"cashmonitor/internal/core"
	"cashmonitor/internal/gate"
	"cashmonitor/internal/ledger"
	"cashmonitor/internal/storage"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type fakePrompter struct {
	pins    []string
	confirm bool
	asked   []string
}

func (p *fakePrompter) PIN(title string) (string, error) {
	p.asked = append(p.asked, title)
	if len(p.pins) == 0 {
		return "", errNoTerminal
	}
	pin := p.pins[0]
	p.pins = p.pins[1:]
	return pin, nil
}

func (p *fakePrompter) Confirm(question string) (bool, error) {
	p.asked = append(p.asked, question)
	return p.confirm, nil
}

type harness struct {
	t          *testing.T
	docs       *storage.MemoryStore
	dir        string
	prompter   *fakePrompter
	licenseKey []byte
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{t: t, docs: storage.NewMemoryStore(), dir: t.TempDir(), prompter: &fakePrompter{}}
}

func (h *harness) config() *config.Config {
	return &config.Config{
		DataBackend:       config.BackendMemory,
		DataDir:           h.dir,
		RolloverCascade:   true,
		ExportInterval:    15 * time.Minute,
		ExportConcurrency: 4,
		LicenseFile:       filepath.Join(h.dir, "license.json"),
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(Options{
		Out:        &out,
		Err:        &errOut,
		Now:        func() time.Time { return fixedNow },
		Prompter:   h.prompter,
		Config:     h.config(),
		Docs:       h.docs,
		LicenseKey: h.licenseKey,
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "cashmonitor %s", strings.Join(args, " "))
	return out
}

func (h *harness) month(year, month int) *core.MonthSheet {
	h.t.Helper()
	sheet, err := ledger.NewStore(h.docs, nil).LoadMonth(context.Background(), year, month)
	require.NoError(h.t, err)
	return sheet
}

func TestMonthAddAndShow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("month", "add", "--category", "Einkauf", "--amount", "12,50", "--date", "03.10.2026", "--description", "Wochenmarkt")
	assert.Contains(t, out, "12,50 €")
	assert.Contains(t, out, "2026-10")

	out = h.mustRun("month", "show")
	assert.Contains(t, out, "Oktober 2026")
	assert.Contains(t, out, "Wochenmarkt")
	assert.Contains(t, out, "Ausgaben: 12,50 €")

	sheet := h.month(2026, 10)
	require.Len(t, sheet.Transactions, 1)
	assert.Equal(t, core.Expense, sheet.Transactions[0].Kind)
	assert.Equal(t, core.Cents(1250), sheet.Transactions[0].Amount)

	out = h.mustRun("month", "list")
	assert.Contains(t, out, "2026-10")
}

func TestMonthAddRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "negative amount", args: []string{"--category", "Miete", "--amount", "-5"}},
		{name: "unknown type", args: []string{"--category", "Miete", "--amount", "5", "--type", "transfer"}},
		{name: "bad date", args: []string{"--category", "Miete", "--amount", "5", "--date", "31.02."}},
		{name: "missing category", args: []string{"--amount", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.run(append([]string{"month", "add"}, tt.args...)...)
			assert.Error(t, err)
			assert.Empty(t, h.month(2026, 10).Transactions)
		})
	}
}

func TestShowBooksRecurringAndCarryOver(t *testing.T) {
	h := newHarness(t)
	h.mustRun("month", "add", "--type", "income", "--category", "Gehalt", "--amount", "1000", "--date", "2026-09-01")
	h.mustRun("recurring", "add", "--day", "3", "--category", "Miete", "--amount", "800")

	out := h.mustRun("month", "show", "2026-10")
	assert.Contains(t, out, "Miete")
	assert.Contains(t, out, core.RolloverCategoryPositive)

	sheet := h.month(2026, 10)
	require.Len(t, sheet.Transactions, 2)
	carry, ok := sheet.Rollover()
	require.True(t, ok)
	assert.Equal(t, core.Cents(100000), carry.Amount)

	// Opening again books nothing twice.
	h.mustRun("month", "show", "2026-10")
	assert.Len(t, h.month(2026, 10).Transactions, 2)
}

func TestShowFutureMonthProjects(t *testing.T) {
	h := newHarness(t)
	h.mustRun("recurring", "add", "--day", "1", "--type", "income", "--category", "Gehalt", "--amount", "2500")
	h.mustRun("recurring", "add", "--day", "3", "--category", "Miete", "--amount", "800")

	out := h.mustRun("month", "show", "2027-01")
	assert.Contains(t, out, "Prognose")
	assert.Contains(t, out, "1.700,00 €")
	for _, tx := range h.month(2027, 1).Transactions {
		assert.Empty(t, tx.RecurringID, "future months are not materialized")
	}

	out = h.mustRun("prognosis")
	assert.Contains(t, out, "2.500,00 €")
	assert.Contains(t, out, "800,00 €")
}

func TestRecurringToggleAndDelete(t *testing.T) {
	h := newHarness(t)
	h.mustRun("recurring", "add", "--day", "31", "--category", "Streaming", "--amount", "9,99")

	items, err := newItems(h)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, core.MaxRecurringDay, items[0].Day)
	id := shortID(items[0].ID)

	out := h.mustRun("recurring", "toggle", id)
	assert.Contains(t, out, "pausiert")
	h.mustRun("month", "show")
	assert.Empty(t, h.month(2026, 10).Transactions)

	h.mustRun("recurring", "edit", id, "--amount", "12")
	items, err = newItems(h)
	require.NoError(t, err)
	assert.Equal(t, core.Cents(1200), items[0].Amount)

	h.mustRun("recurring", "delete", id, "--yes")
	items, err = newItems(h)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func newItems(h *harness) ([]core.RecurringItem, error) {
	var items []core.RecurringItem
	_, err := ledger.NewStore(h.docs, nil).ReadRecord(context.Background(), ledger.RecordRecurring, &items)
	return items, err
}

func TestEditMovesTransactionToNewMonth(t *testing.T) {
	h := newHarness(t)
	h.mustRun("month", "add", "--category", "Einkauf", "--amount", "50", "--date", "2026-10-10")
	id := h.month(2026, 10).Transactions[0].ID

	h.mustRun("month", "edit", shortID(id), "--date", "2026-11-02", "--amount", "60")

	assert.Empty(t, h.month(2026, 10).Transactions)
	nov := h.month(2026, 11)
	tx, ok := nov.Find(id)
	require.True(t, ok)
	assert.Equal(t, core.Cents(6000), tx.Amount)
	assert.Equal(t, "Einkauf", tx.Category)
}

func TestPINGatesDestructiveCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("month", "add", "--category", "Einkauf", "--amount", "50", "--date", "2026-10-10")
	id := shortID(h.month(2026, 10).Transactions[0].ID)

	h.mustRun("pin", "set", "1234")
	out := h.mustRun("pin", "status")
	assert.Contains(t, out, "PIN ist gesetzt")

	_, err := h.run("month", "delete", id, "--yes", "--pin", "9999")
	assert.ErrorIs(t, err, errWrongPIN)
	assert.Len(t, h.month(2026, 10).Transactions, 1)

	// Without --pin the prompter is asked.
	h.prompter.pins = []string{"1234"}
	h.prompter.confirm = false
	out = h.mustRun("month", "delete", id)
	assert.Contains(t, out, "Abgebrochen")
	assert.Len(t, h.month(2026, 10).Transactions, 1)

	h.prompter.confirm = true
	h.prompter.pins = []string{"1234"}
	h.mustRun("month", "delete", id)
	assert.Empty(t, h.month(2026, 10).Transactions)

	_, err = h.run("pin", "set", "12", "--pin", "1234")
	assert.ErrorIs(t, err, gate.ErrInvalidPIN)

	h.mustRun("pin", "reset", "--pin", "1234")
	out = h.mustRun("pin", "status")
	assert.Contains(t, out, "Keine PIN")
}

func TestSavingsDepositAndProgress(t *testing.T) {
	h := newHarness(t)
	h.mustRun("savings", "add", "--name", "Urlaub", "--target", "1000", "--category", "Sparen Urlaub")

	var goals []core.SavingsGoal
	_, err := ledger.NewStore(h.docs, nil).ReadRecord(context.Background(), ledger.RecordSavings, &goals)
	require.NoError(t, err)
	require.Len(t, goals, 1)

	h.mustRun("savings", "deposit", goals[0].ID[:6], "--amount", "250", "--date", "2026-09-15")
	sep := h.month(2026, 9)
	require.Len(t, sep.Transactions, 1)
	assert.Equal(t, "Sparen Urlaub", sep.Transactions[0].Category)

	out := h.mustRun("savings", "list")
	assert.Contains(t, out, "Urlaub")
	assert.Contains(t, out, "25%")
	assert.Contains(t, out, "250,00 €")

	h.mustRun("savings", "delete", goals[0].ID, "--yes")
	out = h.mustRun("savings", "list")
	assert.Contains(t, out, "Keine Sparziele")
	assert.Len(t, h.month(2026, 9).Transactions, 1, "deposits stay booked")
}

func TestOverviewAndCategories(t *testing.T) {
	h := newHarness(t)
	h.mustRun("month", "add", "--type", "income", "--category", "Gehalt", "--amount", "2000", "--date", "2026-09-01")
	h.mustRun("month", "add", "--category", "Katzenfutter", "--amount", "40", "--date", "2026-09-04")

	out := h.mustRun("overview")
	assert.Contains(t, out, "2026-09")
	assert.Contains(t, out, "Katzenfutter")
	assert.Contains(t, out, "98.0 %")

	out = h.mustRun("categories")
	assert.Contains(t, out, "Katzenfutter")
	assert.Contains(t, out, "Miete")
	out = h.mustRun("categories", "--type", "income")
	assert.Contains(t, out, "Gehalt")
	assert.NotContains(t, out, "Katzenfutter")
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t)
	h.mustRun("month", "add", "--type", "income", "--category", "Gehalt", "--amount", "2000", "--date", "2026-09-01")
	h.mustRun("month", "add", "--category", "Einkauf", "--amount", "12,5", "--date", "2026-10-03")

	out := h.mustRun("export", "--from", "2026-10")
	assert.Contains(t, out, "Monat;Datum;Typ;Kategorie;Betrag;Beschreibung")
	assert.Contains(t, out, "2026-10;2026-10-03;Ausgabe;Einkauf;12,50;")
	assert.NotContains(t, out, "Gehalt")

	path := filepath.Join(h.dir, "out", "export.csv")
	out = h.mustRun("export", "-o", path)
	assert.Contains(t, out, "2 Buchungen")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Gehalt")

	_, err = h.run("export", "--from", "2026-11", "--to", "2026-10")
	assert.Error(t, err)
}

func TestLicenseInstallAndShow(t *testing.T) {
	h := newHarness(t)
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	h.licenseKey = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	out := h.mustRun("license", "show")
	assert.Contains(t, out, "Keine gültige Lizenz")

	fields := map[string]any{"owner": "Anna Schmidt", "issued": "2026-10-01"}
	payload, err := gate.CanonicalJSON(fields)
	require.NoError(t, err)
	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	fields["signature"] = base64.StdEncoding.EncodeToString(sig)
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	src := filepath.Join(h.dir, "download.json")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	out = h.mustRun("license", "install", src)
	assert.Contains(t, out, "Lizenziert für: Anna Schmidt")
	out = h.mustRun("license", "show")
	assert.Contains(t, out, "Lizenziert für: Anna Schmidt")

	bad := filepath.Join(h.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"owner":"Mallory","signature":"AAAA"}`), 0o644))
	_, err = h.run("license", "install", bad)
	assert.ErrorIs(t, err, gate.ErrInvalidLicense)
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz"}
	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{prefix: "abc", want: "abc123"},
		{prefix: "xyz", want: "xyz"},
		{prefix: "ab", wantErr: true},
		{prefix: "q", wantErr: true},
		{prefix: " ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := matchID("item", tt.prefix, ids)
		if tt.wantErr {
			assert.Error(t, err, tt.prefix)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseDateArg(t *testing.T) {
	today := core.NewDate(2026, 10, 17)
	tests := []struct {
		in      string
		want    core.Date
		wantErr bool
	}{
		{in: "", want: today},
		{in: "2026-01-31", want: core.NewDate(2026, 1, 31)},
		{in: "05.03.2026", want: core.NewDate(2026, 3, 5)},
		{in: "2026/01/31", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseDateArg(tt.in, today)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.True(t, tt.want.Equal(got.Time), "%s: got %s", tt.in, got)
	}
}
