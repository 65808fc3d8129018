// Package server implements the expense CRUD HTTP service: JSON over HTTP,
// one table, no authentication. Bad input always gets a 4xx with a JSON
// error body; the service never crashes on it.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"simplefinance/internal/storage"
)

// ChangePublisher announces successful mutations to interested consumers.
type ChangePublisher interface {
	PublishExpenseChange(ctx context.Context, action, id string) error
}

type Server struct {
	http.Server

	repo   *storage.Repository
	events ChangePublisher
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. events may be nil; the service then runs without change
// notifications.
func NewServer(addr string, repo *storage.Repository, events ChangePublisher) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:   repo,
		events: events,
	}
	s.Server = http.Server{
		Addr:    addr,
		Handler: s.withRequestLog(mux),
	}

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("DELETE /expenses", s.handleDeleteExpenses)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	return s
}

// withRequestLog adds a request id and start/completion logs to every
// request.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// publishChange emits a change event when a publisher is configured.
// Failures are logged and never fail the request.
func (s *Server) publishChange(ctx context.Context, action, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseChange(ctx, action, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"error", err, "action", action, "id", id)
	}
}
