// Package localstore persists the collection as a single JSON-encoded array
// under one fixed key in an embedded key-value database. It is the cheapest
// backend: insertion-ordered, no validation, and mutations targeting a
// missing id are silent no-ops.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"simplefinance/internal/core"
	"simplefinance/internal/persistence"
)

const (
	bucketName  = "settings"
	expensesKey = "expenses_key"
)

type Store struct {
	persistence.Notifier

	db *bolt.DB

	mu       sync.Mutex
	expenses []core.Expense
}

// Open opens or creates the key-value database at path and hydrates the
// in-memory snapshot from it.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, core.StoreError("open local store", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, core.StoreError("create settings bucket", err)
	}

	s := &Store{db: db}
	// Hydrate the snapshot from the stored blob up front: saves rewrite the
	// whole blob from the snapshot, so a mutation before the first Load would
	// otherwise clobber every record a previous session stored.
	expenses, err := s.readAll()
	if err != nil {
		db.Close()
		return nil, err
	}
	s.expenses = expenses
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load refreshes the snapshot from the stored blob.
func (s *Store) Load(ctx context.Context) error {
	expenses, err := s.readAll()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.expenses = expenses
	s.mu.Unlock()

	slog.DebugContext(ctx, "Loaded expenses from local store", "count", len(expenses))
	s.Publish(persistence.Change{Op: persistence.OpReload})
	return nil
}

// GetAll reads the stored blob directly; a missing key is an empty
// collection, not an error.
func (s *Store) GetAll(ctx context.Context) ([]core.Expense, error) {
	return s.readAll()
}

func (s *Store) Add(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expenses = append(s.expenses, e)
	if err := s.saveLocked(); err != nil {
		s.expenses = s.expenses[:len(s.expenses)-1]
		return err
	}
	s.Publish(persistence.Change{Op: persistence.OpAdd, IDs: []uuid.UUID{e.ID}})
	return nil
}

// Update replaces the record matching e.ID. An unknown id is a silent no-op:
// this backend does not enforce existence.
func (s *Store) Update(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			prev := s.expenses[i]
			s.expenses[i] = e
			if err := s.saveLocked(); err != nil {
				s.expenses[i] = prev
				return err
			}
			s.Publish(persistence.Change{Op: persistence.OpUpdate, IDs: []uuid.UUID{e.ID}})
			return nil
		}
	}
	slog.DebugContext(ctx, "Update skipped, id not present", "id", e.ID)
	return nil
}

// Delete removes the record matching e.ID; unknown ids are silent no-ops.
func (s *Store) Delete(ctx context.Context, e core.Expense) error {
	return s.DeleteMany(ctx, []uuid.UUID{e.ID})
}

// DeleteMany removes the intersection of ids and stored records.
func (s *Store) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []uuid.UUID
	kept := s.expenses[:0:0]
	for _, e := range s.expenses {
		if _, ok := wanted[e.ID]; ok {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	if len(removed) == 0 {
		return nil
	}

	prev := s.expenses
	s.expenses = kept
	if err := s.saveLocked(); err != nil {
		s.expenses = prev
		return err
	}
	s.Publish(persistence.Change{Op: persistence.OpDelete, IDs: removed})
	return nil
}

func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

func (s *Store) readAll() ([]core.Expense, error) {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(expensesKey)); v != nil {
			blob = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, core.StoreError("read expenses blob", err)
	}
	if blob == nil {
		return nil, nil
	}

	var expenses []core.Expense
	if err := json.Unmarshal(blob, &expenses); err != nil {
		return nil, fmt.Errorf("%w: decode expenses blob: %v", core.ErrStore, err)
	}
	for i := range expenses {
		expenses[i] = expenses[i].NormalizeLocation()
	}
	return expenses, nil
}

func (s *Store) saveLocked() error {
	blob, err := json.Marshal(s.expenses)
	if err != nil {
		return fmt.Errorf("%w: encode expenses blob: %v", core.ErrStore, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(expensesKey), blob)
	})
	if err != nil {
		return core.StoreError("write expenses blob", err)
	}
	return nil
}
