package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"cashmonitor/internal/core"
)

// MonthChangedMessage announces that a month record was rewritten. It carries
// only the key; consumers reload the month from storage.
type MonthChangedMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMonthChangedMessage creates a message stamped with the current time.
func NewMonthChangedMessage(key core.MonthKey, reason string) *MonthChangedMessage {
	return &MonthChangedMessage{
		Year:      key.Year,
		Month:     key.Month,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *MonthChangedMessage) Key() core.MonthKey {
	return core.MonthKey{Year: m.Year, Month: m.Month}
}

// ToJSON converts the message to JSON bytes
func (m *MonthChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthChangedMessageFromJSON decodes and validates a message.
func MonthChangedMessageFromJSON(data []byte) (*MonthChangedMessage, error) {
	var msg MonthChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Key().Validate(); err != nil {
		return nil, fmt.Errorf("month changed message: %w", err)
	}
	return &msg, nil
}
