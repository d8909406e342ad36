package cli

import (
	"fmt"
	"strings"
	"time"

	"cashmonitor/internal/core"
)

// parseMonthArg accepts YYYY-MM; empty means the current month.
func parseMonthArg(s string, today core.Date) (core.MonthKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return today.Key(), nil
	}
	return core.ParseMonthKey(s)
}

// parseDateArg accepts YYYY-MM-DD or DD.MM.YYYY; empty means today.
func parseDateArg(s string, today core.Date) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return today, nil
	}
	if d, err := core.ParseDate(s); err == nil {
		return d, nil
	}
	if t, err := time.Parse("02.01.2006", s); err == nil {
		return core.DateOf(t), nil
	}
	return core.Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or DD.MM.YYYY)", s)
}

// resolveID finds the transaction whose id equals or uniquely starts with
// prefix.
func resolveID(sheet *core.MonthSheet, prefix string) (core.Transaction, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return core.Transaction{}, fmt.Errorf("empty transaction id")
	}
	if tx, ok := sheet.Find(prefix); ok {
		return tx, nil
	}
	var matches []core.Transaction
	for _, tx := range sheet.Transactions {
		if strings.HasPrefix(tx.ID, prefix) {
			matches = append(matches, tx)
		}
	}
	switch len(matches) {
	case 0:
		return core.Transaction{}, fmt.Errorf("no transaction %q in %s", prefix, sheet.Key)
	case 1:
		return matches[0], nil
	default:
		return core.Transaction{}, fmt.Errorf("transaction id %q is ambiguous in %s", prefix, sheet.Key)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// matchID returns the id that equals or uniquely starts with prefix.
func matchID(what, prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty %s id", what)
	}
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no %s %q", what, prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous", what, prefix)
	}
}
