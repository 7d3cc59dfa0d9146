package amqp

import (
	"encoding/json"
	"time"

	"finbook/internal/core"
)

// Ledger event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEventMessage announces one committed ledger mutation. It carries a
// full snapshot of the transaction so consumers can act on deletes without
// a row to read back.
type LedgerEventMessage struct {
	Action      string    `json:"action"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Kind        string    `json:"kind"`
	Date        string    `json:"date"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewLedgerEventMessage snapshots a transaction into an event.
func NewLedgerEventMessage(action string, tx core.Transaction) *LedgerEventMessage {
	return &LedgerEventMessage{
		Action:      action,
		ID:          tx.ID,
		UserID:      tx.UserID,
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Kind:        string(tx.Kind),
		Date:        tx.Date.String(),
		Description: tx.Description,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
