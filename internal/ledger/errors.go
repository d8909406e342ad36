package ledger

import "fmt"

// CorruptDataError reports a persisted record that exists but does not parse.
// The record is left untouched.
type CorruptDataError struct {
	Record string
	Err    error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt record %q: %v", e.Record, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }
