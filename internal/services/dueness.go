package services

import "cashmonitor/internal/core"

// DuenessChecker decides whether a recurring item should be materialized into
// a month, given today's date.
type DuenessChecker interface {
	IsDue(item core.RecurringItem, month core.MonthKey, today core.Date) bool
}

// MonthlyChecker books an item once per month on its day of month. Past
// months are always due, the current month only once the day has been
// reached, future months never.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(item core.RecurringItem, month core.MonthKey, today core.Date) bool {
	if !item.Active {
		return false
	}
	switch month.Compare(today.Key()) {
	case 1:
		return false
	case 0:
		return core.ClampDay(item.Day) <= today.Day()
	default:
		return true
	}
}

// IsFutureMonth reports whether month lies strictly after today's month.
func IsFutureMonth(month core.MonthKey, today core.Date) bool {
	return month.After(today.Key())
}
