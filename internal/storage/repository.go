// Package storage owns the expense service's single table. Dates are stored
// as milliseconds since the Unix epoch, ids are server-generated opaque
// tokens, and the absent-location convention is three NULL columns.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"simplefinance/internal/core"
)

// ExpenseRow mirrors the Expense table.
type ExpenseRow struct {
	ID                string
	Title             string
	Type              string
	Amount            float64
	Date              float64
	LocationLatitude  sql.NullFloat64
	LocationLongitude sql.NullFloat64
	LocationName      sql.NullString
}

type Repository struct {
	db *sql.DB
}

// NewRepository opens the database at dbPath (":memory:" is fine) and runs
// migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One pooled connection, or each would get its own ":memory:" database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListExpenses returns every row in insertion order.
func (r *Repository) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, type, amount, date,
		       location_latitude, location_longitude, location_name
		FROM expense`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	out := []ExpenseRow{}
	for rows.Next() {
		var row ExpenseRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Type, &row.Amount, &row.Date,
			&row.LocationLatitude, &row.LocationLongitude, &row.LocationName); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}
	return out, nil
}

// GetExpense fetches one row by id, returning core.ErrNotFound if absent.
func (r *Repository) GetExpense(ctx context.Context, id string) (*ExpenseRow, error) {
	var row ExpenseRow
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, type, amount, date,
		       location_latitude, location_longitude, location_name
		FROM expense WHERE id = ?`, id).
		Scan(&row.ID, &row.Title, &row.Type, &row.Amount, &row.Date,
			&row.LocationLatitude, &row.LocationLongitude, &row.LocationName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense by id: %w", err)
	}
	return &row, nil
}

func (r *Repository) CreateExpense(ctx context.Context, row ExpenseRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expense (id, title, type, amount, date, location_latitude, location_longitude, location_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Title, row.Type, row.Amount, row.Date,
		row.LocationLatitude, row.LocationLongitude, row.LocationName)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// UpdateExpense replaces every column of the row matching id, returning
// core.ErrNotFound when nothing matched.
func (r *Repository) UpdateExpense(ctx context.Context, row ExpenseRow) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expense SET title = ?, type = ?, amount = ?, date = ?,
			location_latitude = ?, location_longitude = ?, location_name = ?
		WHERE id = ?`,
		row.Title, row.Type, row.Amount, row.Date,
		row.LocationLatitude, row.LocationLongitude, row.LocationName, row.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteExpense removes one row by id, returning core.ErrNotFound when
// nothing matched.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expense WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteExpenses removes every row whose id is in ids and reports how many
// actually matched.
func (r *Repository) DeleteExpenses(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM expense WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expenses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted expenses: %w", err)
	}
	return n, nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
