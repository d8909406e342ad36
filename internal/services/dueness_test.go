package services

import (
	"testing"

	"cashmonitor/internal/core"
)

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}
	today := core.NewDate(2026, 10, 17)

	tests := []struct {
		name   string
		day    int
		active bool
		month  core.MonthKey
		want   bool
	}{
		{"past month - due", 28, true, core.MonthKey{Year: 2026, Month: 9}, true},
		{"past year - due", 28, true, core.MonthKey{Year: 2025, Month: 12}, true},
		{"current month day reached - due", 17, true, core.MonthKey{Year: 2026, Month: 10}, true},
		{"current month day earlier - due", 1, true, core.MonthKey{Year: 2026, Month: 10}, true},
		{"current month day not reached - not due", 18, true, core.MonthKey{Year: 2026, Month: 10}, false},
		{"future month - not due", 1, true, core.MonthKey{Year: 2026, Month: 11}, false},
		{"inactive - not due", 1, false, core.MonthKey{Year: 2026, Month: 9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := core.RecurringItem{ID: "r", Day: tt.day, Kind: core.Expense, Category: "Miete", Active: tt.active}
			if got := checker.IsDue(item, tt.month, today); got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFutureMonth(t *testing.T) {
	today := core.NewDate(2026, 12, 31)
	if IsFutureMonth(core.MonthKey{Year: 2026, Month: 12}, today) {
		t.Error("current month reported as future")
	}
	if !IsFutureMonth(core.MonthKey{Year: 2027, Month: 1}, today) {
		t.Error("next month not reported as future")
	}
}
