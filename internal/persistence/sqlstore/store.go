// Package sqlstore is the embedded relational backend: one expenses table
// mirroring the domain shape with flattened attachment and location columns.
// The collection is ordered descending by date, mutations targeting a
// missing id fail with core.ErrNotFound, and the snapshot is kept consistent
// by an unconditional full reload after every successful mutation.
package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"simplefinance/internal/core"
	"simplefinance/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS expenses (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	type TEXT NOT NULL,
	amount REAL NOT NULL,
	date INTEGER NOT NULL,
	attachment_id TEXT,
	attachment_file_name TEXT,
	attachment_content_type TEXT,
	location_latitude REAL NOT NULL DEFAULT 0,
	location_longitude REAL NOT NULL DEFAULT 0,
	location_name TEXT
)`

type Store struct {
	persistence.Notifier

	db *sql.DB

	mu       sync.Mutex
	expenses []core.Expense
}

// Open opens the database at path and bootstraps the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, core.StoreError("open sqlite database", err)
	}
	// A single connection keeps ":memory:" databases coherent across the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.StoreError("ping database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, core.StoreError("create expenses table", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) error {
	expenses, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.expenses = expenses
	s.mu.Unlock()

	s.Publish(persistence.Change{Op: persistence.OpReload})
	return nil
}

// GetAll returns the collection ordered descending by date.
func (s *Store) GetAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, type, amount, date,
		       attachment_id, attachment_file_name, attachment_content_type,
		       location_latitude, location_longitude, location_name
		FROM expenses ORDER BY date DESC`)
	if err != nil {
		return nil, core.StoreError("query expenses", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, core.StoreError("scan expense row", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StoreError("iterate expense rows", err)
	}
	return expenses, nil
}

func (s *Store) Add(ctx context.Context, e core.Expense) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, title, type, amount, date,
			attachment_id, attachment_file_name, attachment_content_type,
			location_latitude, location_longitude, location_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		insertArgs(e)...)
	if err != nil {
		return core.StoreError("insert expense", err)
	}
	if err := s.reload(ctx); err != nil {
		return err
	}
	s.Publish(persistence.Change{Op: persistence.OpAdd, IDs: []uuid.UUID{e.ID}})
	return nil
}

func (s *Store) Update(ctx context.Context, e core.Expense) error {
	args := insertArgs(e)
	// id moves to the WHERE clause
	args = append(args[1:], args[0])
	res, err := s.db.ExecContext(ctx, `
		UPDATE expenses SET title = ?, type = ?, amount = ?, date = ?,
			attachment_id = ?, attachment_file_name = ?, attachment_content_type = ?,
			location_latitude = ?, location_longitude = ?, location_name = ?
		WHERE id = ?`, args...)
	if err != nil {
		return core.StoreError("update expense", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	if err := s.reload(ctx); err != nil {
		return err
	}
	s.Publish(persistence.Change{Op: persistence.OpUpdate, IDs: []uuid.UUID{e.ID}})
	return nil
}

func (s *Store) Delete(ctx context.Context, e core.Expense) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, e.ID.String())
	if err != nil {
		return core.StoreError("delete expense", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	if err := s.reload(ctx); err != nil {
		return err
	}
	s.Publish(persistence.Change{Op: persistence.OpDelete, IDs: []uuid.UUID{e.ID}})
	return nil
}

// DeleteMany removes the intersection of ids and stored records. It fails
// with core.ErrNotFound only when no id matched at all; present ids are
// removed and absent ones ignored.
func (s *Store) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return core.ErrNotFound
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return core.StoreError("delete expenses", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	if err := s.reload(ctx); err != nil {
		return err
	}
	s.Publish(persistence.Change{Op: persistence.OpDelete, IDs: ids})
	return nil
}

func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

func (s *Store) reload(ctx context.Context) error {
	expenses, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.expenses = expenses
	s.mu.Unlock()
	return nil
}

func insertArgs(e core.Expense) []any {
	var (
		attID, attName, attType sql.NullString
		locName                 sql.NullString
		lat, lon                float64
	)
	if e.Attachment != nil {
		attID = sql.NullString{String: e.Attachment.ID.String(), Valid: true}
		attName = sql.NullString{String: e.Attachment.FileName, Valid: true}
		attType = sql.NullString{String: e.Attachment.ContentType, Valid: true}
	}
	if e.Location != nil {
		lat, lon = e.Location.Latitude, e.Location.Longitude
		if e.Location.Name != "" {
			locName = sql.NullString{String: e.Location.Name, Valid: true}
		}
	}
	return []any{
		e.ID.String(), e.Title, e.Type.String(), e.Amount, e.Date.UTC().UnixMilli(),
		attID, attName, attType,
		lat, lon, locName,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                       core.Expense
		id                      string
		typ                     string
		millis                  int64
		attID, attName, attType sql.NullString
		lat, lon                float64
		locName                 sql.NullString
	)
	err := row.Scan(&id, &e.Title, &typ, &e.Amount, &millis,
		&attID, &attName, &attType, &lat, &lon, &locName)
	if err != nil {
		return core.Expense{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = parsed
	e.Type = core.ParseExpenseType(typ)
	e.Date = timeFromMillis(millis)

	if attID.Valid && attName.Valid && attType.Valid {
		aid, err := uuid.Parse(attID.String)
		if err == nil {
			e.Attachment = &core.AttachmentInfo{
				ID:          aid,
				FileName:    attName.String,
				ContentType: attType.String,
			}
		}
	}
	// (0,0) columns mean no location was recorded.
	if lat != 0 || lon != 0 {
		e.Location = &core.LocationInfo{Latitude: lat, Longitude: lon, Name: locName.String}
	}
	return e, nil
}

func timeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
