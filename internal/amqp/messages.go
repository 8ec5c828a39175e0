package amqp

import (
	"encoding/json"
	"time"
)

// TransactionCreatedMessage announces a newly persisted ledger row to the
// export pipeline. It carries only the id; the worker fetches the full row
// from the database so the queue never holds ledger data.
type TransactionCreatedMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionCreatedMessage creates a message for the given transaction id.
func NewTransactionCreatedMessage(id string, version int64) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionCreatedMessageFromJSON creates a message from JSON bytes
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
