package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"simplefinance/internal/core"
	"simplefinance/internal/dto"
	"simplefinance/internal/event"
	"simplefinance/internal/storage"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	rows, err := s.repo.ListExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]dto.Expense, len(rows))
	for i, row := range rows {
		out[i] = rowToDTO(row)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	row, err := s.repo.GetExpense(r.Context(), r.PathValue("id"))
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get expense error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rowToDTO(*row))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExpenseRequest(w, r)
	if !ok {
		return
	}

	row := requestToRow(req)
	row.ID = uuid.NewString()
	if err := s.repo.CreateExpense(r.Context(), row); err != nil {
		slog.ErrorContext(r.Context(), "Create expense error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishChange(r.Context(), event.ActionCreated, row.ID)
	writeJSON(w, http.StatusCreated, echoResponse(row.ID, req))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExpenseRequest(w, r)
	if !ok {
		return
	}

	row := requestToRow(req)
	row.ID = r.PathValue("id")
	err := s.repo.UpdateExpense(r.Context(), row)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Update expense error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishChange(r.Context(), event.ActionUpdated, row.ID)
	writeJSON(w, http.StatusOK, echoResponse(row.ID, req))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.repo.DeleteExpense(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete expense error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishChange(r.Context(), event.ActionDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid input: Provide an array of IDs")
		return
	}

	matched, err := s.repo.DeleteExpenses(r.Context(), req.IDs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete expenses error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if matched == 0 {
		writeError(w, http.StatusNotFound, "No expenses found to delete")
		return
	}

	for _, id := range req.IDs {
		s.publishChange(r.Context(), event.ActionDeleted, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeExpenseRequest parses and validates a create/update body. Validation
// mirrors the service contract: title, type, amount and date are required,
// the type must be one of the fixed enumeration, and a zero amount counts as
// missing. No range checks beyond that.
func decodeExpenseRequest(w http.ResponseWriter, r *http.Request) (dto.ExpenseRequest, bool) {
	var req dto.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return req, false
	}
	if req.Title == "" || !core.ExpenseType(req.Type).IsValid() || req.Amount == 0 || req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return req, false
	}
	return req, true
}

// requestToRow flattens a request into a table row. Zero coordinates and an
// empty name collapse to NULL: that is how the absent-location convention is
// stored server-side.
func requestToRow(req dto.ExpenseRequest) storage.ExpenseRow {
	row := storage.ExpenseRow{
		Title:  req.Title,
		Type:   req.Type,
		Amount: req.Amount,
		Date:   float64(req.Date.UTC().UnixMilli()),
	}
	if loc := req.LocationInfo; loc != nil {
		if loc.Latitude != 0 {
			row.LocationLatitude = sql.NullFloat64{Float64: loc.Latitude, Valid: true}
		}
		if loc.Longitude != 0 {
			row.LocationLongitude = sql.NullFloat64{Float64: loc.Longitude, Valid: true}
		}
		if loc.Name != nil && *loc.Name != "" {
			row.LocationName = sql.NullString{String: *loc.Name, Valid: true}
		}
	}
	return row
}

func rowToDTO(row storage.ExpenseRow) dto.Expense {
	out := dto.Expense{
		ID:     row.ID,
		Title:  row.Title,
		Type:   row.Type,
		Amount: row.Amount,
		Date:   row.Date,
	}
	if row.LocationLatitude.Valid {
		out.LocationLatitude = &row.LocationLatitude.Float64
	}
	if row.LocationLongitude.Valid {
		out.LocationLongitude = &row.LocationLongitude.Float64
	}
	if row.LocationName.Valid {
		out.LocationName = &row.LocationName.String
	}
	return out
}

// expenseEcho is the create/update response: the submitted fields echoed
// back with the id and the date as epoch milliseconds, location nested as
// submitted.
type expenseEcho struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Type         string        `json:"type"`
	Amount       float64       `json:"amount"`
	Date         int64         `json:"date"`
	LocationInfo *dto.Location `json:"locationInfo,omitempty"`
}

func echoResponse(id string, req dto.ExpenseRequest) expenseEcho {
	return expenseEcho{
		ID:           id,
		Title:        req.Title,
		Type:         req.Type,
		Amount:       req.Amount,
		Date:         req.Date.UTC().UnixMilli(),
		LocationInfo: req.LocationInfo,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
