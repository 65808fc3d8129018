package event

import (
	"testing"
	"time"
)

func TestExpenseChangeJSONRoundTrip(t *testing.T) {
	msg := NewExpenseChange(ActionCreated, "abc-123")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := ExpenseChangeFromJSON(data)
	if err != nil {
		t.Fatalf("ExpenseChangeFromJSON() error = %v", err)
	}
	if got.Action != ActionCreated {
		t.Errorf("Action = %v, want %v", got.Action, ActionCreated)
	}
	if got.ID != "abc-123" {
		t.Errorf("ID = %v, want abc-123", got.ID)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewExpenseChangeStampsCurrentTime(t *testing.T) {
	before := time.Now()
	msg := NewExpenseChange(ActionDeleted, "id")
	after := time.Now()

	if msg.Timestamp.Before(before) || msg.Timestamp.After(after) {
		t.Errorf("Timestamp %v outside [%v, %v]", msg.Timestamp, before, after)
	}
}

func TestExpenseChangeFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ExpenseChangeFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
