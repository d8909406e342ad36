package backend

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cashmonitor/internal/config"
)

// defaultDBName is used when only a data directory is configured.
const defaultDBName = "cashmonitor.db"

var types = []BackendType{DirBackend, SQLiteBackend, MemoryBackend}

// FromAppConfig picks the backend settings out of the application config.
// An sqlite backend without a database path lives in the data directory.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("app config is nil")
	}
	t := BackendType(strings.ToLower(strings.TrimSpace(cfg.DataBackend)))
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %q (want %s)", cfg.DataBackend, TypeList())
	}
	out := Config{Type: t, DataDir: cfg.DataDir, SQLiteDBPath: cfg.SQLiteDBPath}
	if t == SQLiteBackend && out.SQLiteDBPath == "" && out.DataDir != "" {
		out.SQLiteDBPath = filepath.Join(out.DataDir, defaultDBName)
	}
	return out, nil
}

// Validate checks that the settings the chosen backend needs are present.
func (c Config) Validate() error {
	switch c.Type {
	case DirBackend:
		if c.DataDir == "" {
			return errors.New("data directory is required for dir backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}

// Types lists the supported backends.
func Types() []BackendType {
	return append([]BackendType(nil), types...)
}

// TypeList renders Types for help and error texts, e.g. "dir|sqlite|memory".
func TypeList() string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}
