// Package persistence defines the uniform storage contract implemented by
// every backend, plus the change-notification mechanics shared between them.
package persistence

import (
	"context"

	"github.com/google/uuid"

	"simplefinance/internal/core"
)

// Service is the persistence contract. All backends expose the same
// operations; durability and ordering differ per backend and are documented
// on each implementation.
type Service interface {
	// Load refreshes the in-memory snapshot from the backend's true state.
	// On failure the snapshot is left unchanged.
	Load(ctx context.Context) error

	// GetAll returns the full collection in backend-defined order.
	GetAll(ctx context.Context) ([]core.Expense, error)

	// Add inserts a new record. The contract itself does not validate;
	// validation, where it exists, belongs to the backend.
	Add(ctx context.Context, e core.Expense) error

	// Update replaces the record matching e.ID.
	Update(ctx context.Context, e core.Expense) error

	// Delete removes one record by id.
	Delete(ctx context.Context, e core.Expense) error

	// DeleteMany removes every record whose id is in ids; ids with no
	// matching record are ignored.
	DeleteMany(ctx context.Context, ids []uuid.UUID) error

	// Expenses returns the last-known in-memory snapshot without touching
	// the backend.
	Expenses() []core.Expense

	// Subscribe registers for change events emitted after every successful
	// mutation. The returned func cancels the subscription.
	Subscribe() (<-chan Change, func())
}
