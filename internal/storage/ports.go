// Package storage holds the document backends the ledger persists to.
//
// A document is an opaque byte payload addressed by a short name such as
// "2026-01" or "recurring". Every Write replaces the whole document.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("document not found")

// Store is implemented by the directory, SQLite and memory backends.
type Store interface {
	// Read returns the document body or ErrNotFound.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the document. Readers never observe a partial body.
	Write(ctx context.Context, name string, data []byte) error
	// Delete removes the document; deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error
	// List returns all document names in ascending order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// ValidateName rejects names that could escape the storage root.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid document name %q", name)
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}
