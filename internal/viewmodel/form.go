package viewmodel

import (
	"context"
	"log/slog"

	"simplefinance/internal/attachments"
	"simplefinance/internal/core"
	"simplefinance/internal/persistence"
)

// FormViewModel drives the create/edit form. It stages the attachment bytes
// in memory until Save, which writes the file first and then the record.
// The two writes are not transactional: a crash in between can orphan a
// file or dangle a reference, which is accepted for a single-user app.
type FormViewModel struct {
	Expense core.Expense

	svc      persistence.Service
	files    attachments.Store
	geocoder attachments.Geocoder
	logger   *slog.Logger

	isNew  bool
	staged *attachments.Picked
}

// NewForm starts a form for a fresh expense with a generated id.
func NewForm(svc persistence.Service, files attachments.Store, geocoder attachments.Geocoder, logger *slog.Logger) *FormViewModel {
	vm := editForm(svc, files, geocoder, logger)
	vm.Expense = core.NewExpense("", core.TypeFood, 0, timeNow())
	vm.isNew = true
	return vm
}

// EditForm starts a form editing an existing expense.
func EditForm(e core.Expense, svc persistence.Service, files attachments.Store, geocoder attachments.Geocoder, logger *slog.Logger) *FormViewModel {
	vm := editForm(svc, files, geocoder, logger)
	vm.Expense = e
	return vm
}

func editForm(svc persistence.Service, files attachments.Store, geocoder attachments.Geocoder, logger *slog.Logger) *FormViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormViewModel{svc: svc, files: files, geocoder: geocoder, logger: logger}
}

// StageImage stages captured image bytes as the expense's attachment under a
// generated file name. Nothing touches disk until Save.
func (vm *FormViewModel) StageImage(data []byte) {
	vm.stage(attachments.Picked{
		Data:        data,
		FileName:    attachments.GeneratedFileName("image/jpeg"),
		ContentType: "image/jpeg",
	})
}

// StageDocument stages a picked document, keeping its original file name.
func (vm *FormViewModel) StageDocument(fileName string, data []byte) {
	vm.stage(attachments.Picked{
		Data:        data,
		FileName:    fileName,
		ContentType: "application/pdf",
	})
}

func (vm *FormViewModel) stage(p attachments.Picked) {
	vm.staged = &p
	vm.Expense.Attachment = &core.AttachmentInfo{
		ID:          newUUID(),
		FileName:    p.FileName,
		ContentType: p.ContentType,
	}
}

// RemoveAttachment deletes the stored file, best effort, and clears the
// reference. An expense has at most one attachment.
func (vm *FormViewModel) RemoveAttachment(ctx context.Context) {
	if vm.Expense.Attachment == nil {
		return
	}
	if vm.staged == nil && vm.files != nil {
		if err := vm.files.Delete(vm.Expense.Attachment.FileName); err != nil {
			vm.logger.WarnContext(ctx, "Error deleting attachment file", "error", err, "file", vm.Expense.Attachment.FileName)
		}
	}
	vm.staged = nil
	vm.Expense.Attachment = nil
}

// SetLocation records the picked coordinate, resolving a display name when
// a geocoder is available. A (0,0) pick clears the location by convention.
func (vm *FormViewModel) SetLocation(ctx context.Context, latitude, longitude float64) {
	if latitude == 0 && longitude == 0 {
		vm.Expense.Location = nil
		return
	}
	loc := &core.LocationInfo{Latitude: latitude, Longitude: longitude}
	if vm.geocoder != nil {
		name, err := vm.geocoder.ReverseGeocode(ctx, latitude, longitude)
		if err != nil {
			vm.logger.WarnContext(ctx, "Reverse geocoding failed", "error", err)
		} else {
			loc.Name = name
		}
	}
	vm.Expense.Location = loc
}

// Save writes the staged attachment file, then inserts or replaces the
// record. Either failure is logged and swallowed; a failed file write drops
// the attachment reference so the record never points at a missing file.
func (vm *FormViewModel) Save(ctx context.Context) {
	if vm.staged != nil && vm.files != nil {
		if err := vm.files.Save(vm.staged.FileName, vm.staged.Data); err != nil {
			vm.logger.ErrorContext(ctx, "Error saving attachment", "error", err, "file", vm.staged.FileName)
			vm.Expense.Attachment = nil
		}
		vm.staged = nil
	}

	var err error
	if vm.isNew {
		err = vm.svc.Add(ctx, vm.Expense)
	} else {
		err = vm.svc.Update(ctx, vm.Expense)
	}
	if err != nil {
		vm.logger.ErrorContext(ctx, "Error saving expense", "error", err, "id", vm.Expense.ID)
		return
	}
	vm.isNew = false
}
