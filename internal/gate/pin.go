// Package gate implements the PIN and license checks the front end runs
// before edit and delete operations. The ledger itself never gates.
package gate

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"cashmonitor/internal/ledger"
	"cashmonitor/internal/log"
)

const (
	MinPINLength = 4
	MaxPINLength = 6

	pinHashKey = "pin_hash"
)

var (
	ErrInvalidPIN = errors.New("PIN must be 4 to 6 digits")
	ErrPINNotSet  = errors.New("no PIN set")
)

// ValidatePIN checks the PIN format.
func ValidatePIN(pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// PINStore keeps a bcrypt hash of the PIN in the "settings" record. Other
// keys of that record are preserved.
type PINStore struct {
	store  *ledger.Store
	cost   int
	logger *log.Logger
}

func NewPINStore(store *ledger.Store, logger *log.Logger) *PINStore {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &PINStore{store: store, cost: bcrypt.DefaultCost, logger: logger.WithComponent(log.ComponentGate)}
}

func (p *PINStore) settings(ctx context.Context) (map[string]json.RawMessage, error) {
	settings := map[string]json.RawMessage{}
	if _, err := p.store.ReadRecord(ctx, ledger.RecordSettings, &settings); err != nil {
		return nil, err
	}
	if settings == nil {
		settings = map[string]json.RawMessage{}
	}
	return settings, nil
}

func (p *PINStore) hash(ctx context.Context) (string, error) {
	settings, err := p.settings(ctx)
	if err != nil {
		return "", err
	}
	raw, ok := settings[pinHashKey]
	if !ok {
		return "", nil
	}
	var h string
	if err := json.Unmarshal(raw, &h); err != nil {
		return "", &ledger.CorruptDataError{Record: ledger.RecordSettings, Err: err}
	}
	return h, nil
}

func (p *PINStore) IsSet(ctx context.Context) (bool, error) {
	h, err := p.hash(ctx)
	return h != "", err
}

// Set stores a new PIN, replacing any previous one.
func (p *PINStore) Set(ctx context.Context, pin string) error {
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), p.cost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	return p.writeHash(ctx, string(h))
}

func (p *PINStore) writeHash(ctx context.Context, h string) error {
	settings, err := p.settings(ctx)
	if err != nil {
		return err
	}
	if h == "" {
		delete(settings, pinHashKey)
	} else {
		raw, _ := json.Marshal(h)
		settings[pinHashKey] = raw
	}
	if err := p.store.WriteRecord(ctx, ledger.RecordSettings, settings); err != nil {
		return fmt.Errorf("save pin: %w", err)
	}
	return nil
}

// Verify compares pin with the stored hash. Hex SHA-256 hashes written by
// older versions are accepted once and upgraded to bcrypt.
func (p *PINStore) Verify(ctx context.Context, pin string) (bool, error) {
	h, err := p.hash(ctx)
	if err != nil {
		return false, err
	}
	if h == "" {
		return false, ErrPINNotSet
	}

	if isLegacyHash(h) {
		sum := sha256.Sum256([]byte(pin))
		if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(h)) != 1 {
			return false, nil
		}
		if err := p.Set(ctx, pin); err != nil {
			p.logger.WarnContext(ctx, "Failed to upgrade legacy PIN hash", log.FieldError, err)
		}
		return true, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(h), []byte(pin))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify pin: %w", err)
	}
	return true, nil
}

// Reset removes the PIN.
func (p *PINStore) Reset(ctx context.Context) error {
	return p.writeHash(ctx, "")
}

func isLegacyHash(h string) bool {
	if len(h) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}
