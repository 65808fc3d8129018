// Package remote is the HTTP client backend talking to the expense CRUD
// service. Reads re-fetch everything; mutations patch the in-memory snapshot
// directly from the service's response instead of reloading, saving one
// round trip per mutation.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"simplefinance/internal/core"
	"simplefinance/internal/dto"
	"simplefinance/internal/persistence"
)

type Store struct {
	persistence.Notifier

	baseURL string
	client  *http.Client

	mu       sync.Mutex
	expenses []core.Expense
}

// New builds a client backend for the service at baseURL. A nil client
// falls back to a default one with no timeout: a hung call blocks the
// operation until the transport gives up.
func New(baseURL string, client *http.Client) *Store {
	if client == nil {
		client = &http.Client{}
	}
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *Store) Load(ctx context.Context) error {
	expenses, err := s.fetchAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.expenses = expenses
	s.mu.Unlock()

	s.Publish(persistence.Change{Op: persistence.OpReload})
	return nil
}

func (s *Store) GetAll(ctx context.Context) ([]core.Expense, error) {
	return s.fetchAll(ctx)
}

// Add posts the expense and appends the row the service echoes back. The
// service assigns the id; the local one is discarded.
func (s *Store) Add(ctx context.Context, e core.Expense) error {
	created, err := s.send(ctx, http.MethodPost, s.baseURL+"/expenses", dto.ToRequest(e))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.expenses = append(s.expenses, *created)
	s.mu.Unlock()

	s.Publish(persistence.Change{Op: persistence.OpAdd, IDs: []uuid.UUID{created.ID}})
	return nil
}

func (s *Store) Update(ctx context.Context, e core.Expense) error {
	updated, err := s.send(ctx, http.MethodPut, s.baseURL+"/expenses/"+e.ID.String(), dto.ToRequest(e))
	if err != nil {
		return err
	}
	s.mu.Lock()
	for i := range s.expenses {
		if s.expenses[i].ID == updated.ID {
			s.expenses[i] = *updated
			break
		}
	}
	s.mu.Unlock()

	s.Publish(persistence.Change{Op: persistence.OpUpdate, IDs: []uuid.UUID{updated.ID}})
	return nil
}

func (s *Store) Delete(ctx context.Context, e core.Expense) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/expenses/"+e.ID.String(), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	if err := s.doExpectEmpty(req); err != nil {
		return err
	}
	s.removeFromSnapshot(e.ID)
	s.Publish(persistence.Change{Op: persistence.OpDelete, IDs: []uuid.UUID{e.ID}})
	return nil
}

// DeleteMany issues the batch delete. The service answers 404 only when no
// id matched; a partial match succeeds and absent ids are ignored.
func (s *Store) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	payload := dto.DeleteRequest{IDs: make([]string, len(ids))}
	for i, id := range ids {
		payload.IDs[i] = id.String()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode delete request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/expenses", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := s.doExpectEmpty(req); err != nil {
		return err
	}
	s.removeFromSnapshot(ids...)
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

func (s *Store) fetchAll(ctx context.Context) ([]core.Expense, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/expenses", nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, core.NetworkError("list expenses", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var rows []dto.Expense
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode expense rows: %v", core.ErrStore, err)
	}
	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = dto.ToDomain(row)
	}
	return expenses, nil
}

// send posts or puts the request body and decodes the echoed row.
func (s *Store) send(ctx context.Context, method, url string, payload dto.ExpenseRequest) (*core.Expense, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode expense request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build expense request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, core.NetworkError("send expense", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError(resp)
	}
	var echoed echoedExpense
	if err := json.NewDecoder(resp.Body).Decode(&echoed); err != nil {
		return nil, fmt.Errorf("%w: decode expense response: %v", core.ErrStore, err)
	}
	e := echoed.toDomain()
	return &e, nil
}

func (s *Store) doExpectEmpty(req *http.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return core.NetworkError("delete expenses", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}
	return nil
}

func (s *Store) removeFromSnapshot(ids ...uuid.UUID) {
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.expenses[:0:0]
	for _, e := range s.expenses {
		if _, ok := wanted[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	s.expenses = kept
}

// echoedExpense is the create/update response: like a row, except the
// location comes back nested exactly as submitted.
type echoedExpense struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Type         string        `json:"type"`
	Amount       float64       `json:"amount"`
	Date         float64       `json:"date"`
	LocationInfo *dto.Location `json:"locationInfo"`
}

func (e echoedExpense) toDomain() core.Expense {
	row := dto.Expense{
		ID:     e.ID,
		Title:  e.Title,
		Type:   e.Type,
		Amount: e.Amount,
		Date:   e.Date,
	}
	if e.LocationInfo != nil {
		row.LocationLatitude = &e.LocationInfo.Latitude
		row.LocationLongitude = &e.LocationInfo.Longitude
		row.LocationName = e.LocationInfo.Name
	}
	return dto.ToDomain(row)
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", core.ErrNotFound, body.Error)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", core.ErrValidation, body.Error)
	default:
		return fmt.Errorf("%w: %s (status %d)", core.ErrStore, body.Error, resp.StatusCode)
	}
}
