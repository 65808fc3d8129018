package event

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseChange announces a successful mutation on the expense table.
// It carries only the action and id; consumers fetch the row themselves.
type ExpenseChange struct {
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseChange creates a change message stamped with the current time.
func NewExpenseChange(action, id string) *ExpenseChange {
	return &ExpenseChange{
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseChange) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseChangeFromJSON creates a message from JSON bytes.
func ExpenseChangeFromJSON(data []byte) (*ExpenseChange, error) {
	var msg ExpenseChange
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
