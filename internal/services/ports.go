// Package services holds the reconciliation engines (recurring
// materialization, rollover) and the managers that orchestrate them on top
// of the ledger store.
package services

import (
	"context"
	"errors"

	"cashmonitor/internal/core"
)

var (
	ErrItemNotFound = errors.New("recurring item not found")
	ErrGoalNotFound = errors.New("savings goal not found")
)

// MonthStore is the part of the ledger store the engines depend on.
type MonthStore interface {
	LoadMonth(ctx context.Context, year, month int) (*core.MonthSheet, error)
	SaveMonth(ctx context.Context, sheet *core.MonthSheet) error
	HasMonth(ctx context.Context, key core.MonthKey) (bool, error)
}

// EventPublisher announces that a month record changed.
type EventPublisher interface {
	PublishMonthChanged(ctx context.Context, key core.MonthKey, reason string) error
}

// Reasons attached to month-changed events.
const (
	ReasonAdd      = "add"
	ReasonUpdate   = "update"
	ReasonDelete   = "delete"
	ReasonRollover = "rollover"
	ReasonDeposit  = "deposit"
)
