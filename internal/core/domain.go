package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	// MinRecurringDay and MaxRecurringDay bound RecurringItem.Day so the day
	// exists in every month.
	MinRecurringDay = 1
	MaxRecurringDay = 28

	// Carry-over categories used by rollover transactions.
	RolloverCategoryPositive = "Übertrag Vormonat"
	RolloverCategoryNegative = "Defizit Vormonat"

	DefaultGoalIcon  = "💰"
	DefaultGoalColor = "#10b981"
)

type (
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string `json:"id"`
		Date        Date   `json:"date"`
		Kind        Kind   `json:"type"`
		Category    string `json:"category"`
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
		RecurringID string `json:"recurring_id,omitempty"` // template that generated it
		IsRollover  bool   `json:"is_rollover,omitempty"`
	}

	RecurringItem struct {
		ID          string `json:"id"`
		Day         int    `json:"day"`
		Kind        Kind   `json:"type"`
		Category    string `json:"category"`
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
		Active      bool   `json:"active"`
	}

	SavingsGoal struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		TargetAmount Money  `json:"target_amount"`
		Category     string `json:"category"`
		Icon         string `json:"icon"`
		Color        string `json:"color"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidKind     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidTarget   = errors.New("target amount must not be negative")
	ErrDescriptionSize = errors.New("description too long (max 200 characters)")
)

// Valid reports whether k is one of the known transaction kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts the persisted names plus the German labels used in exports.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "einnahme":
		return Income, nil
	case "expense", "ausgabe":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Key returns the month the date belongs to.
func (d Date) Key() MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Month()}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewTransaction builds a transaction with a fresh identifier.
func NewTransaction(date Date, kind Kind, category string, amount Money, description string) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Kind:        kind,
		Category:    strings.TrimSpace(category),
		Amount:      amount,
		Description: strings.TrimSpace(description),
	}
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrDescriptionSize
	}
	return nil
}

// Signed returns the amount with the sign implied by the kind.
func (t Transaction) Signed() Money {
	if t.Kind == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// ClampDay limits a day of month to the range every month can represent.
func ClampDay(day int) int {
	if day < MinRecurringDay {
		return MinRecurringDay
	}
	if day > MaxRecurringDay {
		return MaxRecurringDay
	}
	return day
}

// NewRecurringItem builds an active template with a fresh identifier.
func NewRecurringItem(day int, kind Kind, category string, amount Money, description string) RecurringItem {
	return RecurringItem{
		ID:          uuid.NewString(),
		Day:         ClampDay(day),
		Kind:        kind,
		Category:    strings.TrimSpace(category),
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Active:      true,
	}
}

func (r RecurringItem) Validate() error {
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if r.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if len(r.Description) > 200 {
		return ErrDescriptionSize
	}
	return nil
}

// TransactionFor materializes the template into the given month.
func (r RecurringItem) TransactionFor(key MonthKey) Transaction {
	tx := NewTransaction(NewDate(key.Year, key.Month, ClampDay(r.Day)), r.Kind, r.Category, r.Amount, r.Description)
	tx.RecurringID = r.ID
	return tx
}

// NewSavingsGoal builds a goal with a fresh identifier and default styling.
func NewSavingsGoal(name string, target Money, category, icon string) SavingsGoal {
	g := SavingsGoal{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		TargetAmount: target,
		Category:     strings.TrimSpace(category),
		Icon:         strings.TrimSpace(icon),
		Color:        DefaultGoalColor,
	}
	if g.Icon == "" {
		g.Icon = DefaultGoalIcon
	}
	return g
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.IsNegative() {
		return ErrInvalidTarget
	}
	if strings.TrimSpace(g.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
