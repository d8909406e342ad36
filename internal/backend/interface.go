// Package backend builds the document store selected by configuration.
package backend

import (
	"context"

	"cashmonitor/internal/storage"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the store and its cleanup function.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// dir specific
	DataDir string

	// sqlite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	DirBackend    BackendType = "dir"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case DirBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
