// Package google exports month sheets into a Google spreadsheet, one tab per
// month.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cashmonitor/internal/cache"
	"cashmonitor/internal/core"
	"cashmonitor/internal/log"
	"cashmonitor/internal/sheets"
)

const (
	tabCacheSize = 64
	tabCacheTTL  = 10 * time.Minute

	// exportColumns covers the layout written by sheets.MonthValues.
	exportColumns = "A:E"
)

var _ sheets.MonthExporter = (*Client)(nil)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// tab title -> sheet id
	tabs   *cache.LRUCache[int64]
	logger *log.Logger
}

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID string, logger *log.Logger) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tabs:          cache.NewLRUCache[int64](tabCacheSize, tabCacheTTL),
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// NewWithCredentials creates a client authenticated with a service account.
func NewWithCredentials(ctx context.Context, spreadsheetID string, credentialsJSON []byte, logger *log.Logger) (*Client, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID, logger)
}

// LoadCredentials returns inline JSON when set, otherwise the file contents.
func LoadCredentials(inlineJSON, file string) ([]byte, error) {
	if s := strings.TrimSpace(inlineJSON); s != "" {
		return []byte(s), nil
	}
	file = strings.TrimSpace(file)
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// TabCache exposes the tab lookup cache so a janitor can expire it.
func (c *Client) TabCache() *cache.LRUCache[int64] {
	return c.tabs
}

// ExportMonth clears the month's tab, creating it when missing, and writes
// the sheet layout from A1.
func (c *Client) ExportMonth(ctx context.Context, sheet *core.MonthSheet) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	title := sheets.TabTitle(sheet.Key)

	if err := c.ensureTab(ctx, title); err != nil {
		return err
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1(title, exportColumns), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		// The tab may have been removed by hand; look it up again next time.
		c.tabs.Delete(title)
		return fmt.Errorf("clear tab %s: %w", title, err)
	}

	vr := &gsheet.ValueRange{Values: sheets.MonthValues(sheet)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(title, "A1"), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		c.tabs.Delete(title)
		return fmt.Errorf("write tab %s: %w", title, err)
	}

	c.logger.InfoContext(ctx, "Month exported to spreadsheet",
		log.FieldMonthKey, sheet.Key.String(),
		log.FieldCount, len(sheet.Transactions))
	return nil
}

func (c *Client) ensureTab(ctx context.Context, title string) error {
	if _, ok := c.tabs.Get(title); ok {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	found := false
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		c.tabs.Set(s.Properties.Title, s.Properties.SheetId)
		if s.Properties.Title == title {
			found = true
		}
	}
	if found {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add tab %s: %w", title, err)
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		c.tabs.Set(title, resp.Replies[0].AddSheet.Properties.SheetId)
	}
	c.logger.InfoContext(ctx, "Spreadsheet tab created", "tab", title)
	return nil
}

// a1 quotes the tab title so names like 2026-10 are not read as formulas.
func a1(title, cells string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + cells
}
