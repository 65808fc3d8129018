// Package viewmodel wraps the persistence contract for the UI layer. This
// is the error boundary: storage failures are logged and swallowed so the
// list stays at its last-known-good state instead of surfacing a dialog.
package viewmodel

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"simplefinance/internal/attachments"
	"simplefinance/internal/core"
	"simplefinance/internal/persistence"
)

// ListViewModel drives the expense list.
type ListViewModel struct {
	svc    persistence.Service
	files  attachments.Store
	logger *slog.Logger
}

func NewListViewModel(svc persistence.Service, files attachments.Store, logger *slog.Logger) *ListViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListViewModel{svc: svc, files: files, logger: logger}
}

// Expenses returns the last-known snapshot.
func (vm *ListViewModel) Expenses() []core.Expense {
	return vm.svc.Expenses()
}

// Subscribe exposes the backend's change events to the UI layer.
func (vm *ListViewModel) Subscribe() (<-chan persistence.Change, func()) {
	return vm.svc.Subscribe()
}

func (vm *ListViewModel) Load(ctx context.Context) {
	if err := vm.svc.Load(ctx); err != nil {
		vm.logger.ErrorContext(ctx, "Error loading expenses", "error", err)
	}
}

// Delete removes the expense and, best effort, its attachment file.
func (vm *ListViewModel) Delete(ctx context.Context, e core.Expense) {
	if err := vm.svc.Delete(ctx, e); err != nil {
		vm.logger.ErrorContext(ctx, "Error deleting expense", "error", err, "id", e.ID)
		return
	}
	vm.deleteAttachment(ctx, e)
}

// DeleteMany removes the selected records and their attachment files.
func (vm *ListViewModel) DeleteMany(ctx context.Context, ids []uuid.UUID) {
	// Grab attachment references before the records disappear.
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var doomed []core.Expense
	for _, e := range vm.svc.Expenses() {
		if _, ok := wanted[e.ID]; ok && e.Attachment != nil {
			doomed = append(doomed, e)
		}
	}

	if err := vm.svc.DeleteMany(ctx, ids); err != nil {
		vm.logger.ErrorContext(ctx, "Error deleting expenses", "error", err, "count", len(ids))
		return
	}
	for _, e := range doomed {
		vm.deleteAttachment(ctx, e)
	}
}

// deleteAttachment removes the physical file. Failures (file already gone,
// permissions) are logged and ignored; they never block the record mutation.
func (vm *ListViewModel) deleteAttachment(ctx context.Context, e core.Expense) {
	if e.Attachment == nil || vm.files == nil {
		return
	}
	if err := vm.files.Delete(e.Attachment.FileName); err != nil {
		vm.logger.WarnContext(ctx, "Error deleting attachment file", "error", err, "file", e.Attachment.FileName)
	}
}
