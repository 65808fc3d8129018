package viewmodel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplefinance/internal/core"
	"simplefinance/internal/persistence"
)

// fakeService records calls and can be told to fail every mutation.
type fakeService struct {
	persistence.Notifier

	expenses []core.Expense
	fail     error

	added   []core.Expense
	updated []core.Expense
	deleted []uuid.UUID
	loads   int
}

func (f *fakeService) Load(ctx context.Context) error {
	f.loads++
	return f.fail
}

func (f *fakeService) GetAll(ctx context.Context) ([]core.Expense, error) {
	return f.expenses, f.fail
}

func (f *fakeService) Add(ctx context.Context, e core.Expense) error {
	if f.fail != nil {
		return f.fail
	}
	f.added = append(f.added, e)
	f.expenses = append(f.expenses, e)
	return nil
}

func (f *fakeService) Update(ctx context.Context, e core.Expense) error {
	if f.fail != nil {
		return f.fail
	}
	f.updated = append(f.updated, e)
	return nil
}

func (f *fakeService) Delete(ctx context.Context, e core.Expense) error {
	return f.DeleteMany(ctx, []uuid.UUID{e.ID})
}

func (f *fakeService) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	if f.fail != nil {
		return f.fail
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeService) Expenses() []core.Expense {
	return f.expenses
}

// fakeFiles records file operations in memory.
type fakeFiles struct {
	saved    map[string][]byte
	removed  []string
	failSave error
}

func (f *fakeFiles) Save(fileName string, data []byte) error {
	if f.failSave != nil {
		return f.failSave
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[fileName] = data
	return nil
}

func (f *fakeFiles) Delete(fileName string) error {
	f.removed = append(f.removed, fileName)
	return nil
}

func (f *fakeFiles) Path(fileName string) string { return "/attachments/" + fileName }

type fakeGeocoder struct {
	name string
	err  error
}

func (g *fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	return g.name, g.err
}

func expenseWithAttachment(title string) core.Expense {
	e := core.NewExpense(title, core.TypeFood, 10, time.Now())
	e.Attachment = &core.AttachmentInfo{ID: uuid.New(), FileName: title + ".pdf", ContentType: "application/pdf"}
	return e
}

func TestListLoadSwallowsError(t *testing.T) {
	svc := &fakeService{fail: errors.New("backend down")}
	vm := NewListViewModel(svc, nil, nil)

	vm.Load(context.Background()) // must not panic or surface anything
	assert.Equal(t, 1, svc.loads)
}

func TestListDeleteRemovesAttachmentFile(t *testing.T) {
	e := expenseWithAttachment("receipt")
	svc := &fakeService{expenses: []core.Expense{e}}
	files := &fakeFiles{}
	vm := NewListViewModel(svc, files, nil)

	vm.Delete(context.Background(), e)

	assert.Equal(t, []uuid.UUID{e.ID}, svc.deleted)
	assert.Equal(t, []string{"receipt.pdf"}, files.removed)
}

func TestListDeleteFailureKeepsAttachmentFile(t *testing.T) {
	e := expenseWithAttachment("kept")
	svc := &fakeService{expenses: []core.Expense{e}, fail: errors.New("nope")}
	files := &fakeFiles{}
	vm := NewListViewModel(svc, files, nil)

	vm.Delete(context.Background(), e)

	assert.Empty(t, svc.deleted)
	assert.Empty(t, files.removed)
}

func TestListDeleteManyCollectsAttachmentsFirst(t *testing.T) {
	a := expenseWithAttachment("a")
	b := core.NewExpense("plain", core.TypeOther, 1, time.Now())
	c := expenseWithAttachment("c")
	svc := &fakeService{expenses: []core.Expense{a, b, c}}
	files := &fakeFiles{}
	vm := NewListViewModel(svc, files, nil)

	vm.DeleteMany(context.Background(), []uuid.UUID{a.ID, b.ID})

	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, svc.deleted)
	// Only a had an attachment among the deleted; c's file survives.
	assert.Equal(t, []string{"a.pdf"}, files.removed)
}

func TestFormSaveAddsThenUpdates(t *testing.T) {
	svc := &fakeService{}
	vm := NewForm(svc, nil, nil, nil)
	vm.Expense.Title = "Lunch"
	vm.Expense.Amount = 12

	ctx := context.Background()
	vm.Save(ctx)
	require.Len(t, svc.added, 1)

	// A second save on the same form is an update, not another insert.
	vm.Expense.Title = "Long lunch"
	vm.Save(ctx)
	assert.Len(t, svc.added, 1)
	require.Len(t, svc.updated, 1)
	assert.Equal(t, "Long lunch", svc.updated[0].Title)
}

func TestFormSaveSwallowsServiceError(t *testing.T) {
	svc := &fakeService{fail: errors.New("backend down")}
	vm := NewForm(svc, nil, nil, nil)
	vm.Expense.Title = "Doomed"

	vm.Save(context.Background())
	assert.Empty(t, svc.added)

	// The failed save keeps the form in insert mode.
	svc.fail = nil
	vm.Save(context.Background())
	assert.Len(t, svc.added, 1)
}

func TestFormStageImageWritesFileOnSave(t *testing.T) {
	svc := &fakeService{}
	files := &fakeFiles{}
	vm := NewForm(svc, files, nil, nil)
	vm.Expense.Title = "Receipt"

	vm.StageImage([]byte("jpeg bytes"))
	require.NotNil(t, vm.Expense.Attachment)
	assert.Equal(t, "image/jpeg", vm.Expense.Attachment.ContentType)
	assert.Empty(t, files.saved, "nothing on disk before save")

	vm.Save(context.Background())
	require.Len(t, svc.added, 1)
	require.NotNil(t, svc.added[0].Attachment)
	assert.Equal(t, []byte("jpeg bytes"), files.saved[svc.added[0].Attachment.FileName])
}

func TestFormFailedFileWriteDropsAttachmentReference(t *testing.T) {
	svc := &fakeService{}
	files := &fakeFiles{failSave: errors.New("disk full")}
	vm := NewForm(svc, files, nil, nil)
	vm.Expense.Title = "Receipt"

	vm.StageDocument("contract.pdf", []byte("pdf bytes"))
	vm.Save(context.Background())

	// The record still went in, but without a dangling file reference.
	require.Len(t, svc.added, 1)
	assert.Nil(t, svc.added[0].Attachment)
}

func TestFormRemoveAttachment(t *testing.T) {
	files := &fakeFiles{}
	e := expenseWithAttachment("stored")
	vm := EditForm(e, &fakeService{}, files, nil, nil)

	vm.RemoveAttachment(context.Background())
	assert.Nil(t, vm.Expense.Attachment)
	// The file was already on disk, so it gets removed.
	assert.Equal(t, []string{"stored.pdf"}, files.removed)
}

func TestFormRemoveStagedAttachmentTouchesNoFiles(t *testing.T) {
	files := &fakeFiles{}
	vm := NewForm(&fakeService{}, files, nil, nil)

	vm.StageImage([]byte("x"))
	vm.RemoveAttachment(context.Background())

	assert.Nil(t, vm.Expense.Attachment)
	assert.Empty(t, files.removed)
}

func TestFormSetLocation(t *testing.T) {
	vm := NewForm(&fakeService{}, nil, &fakeGeocoder{name: "Barcelona"}, nil)
	ctx := context.Background()

	vm.SetLocation(ctx, 41.38, 2.17)
	require.NotNil(t, vm.Expense.Location)
	assert.Equal(t, "Barcelona", vm.Expense.Location.Name)

	// A (0,0) pick clears the location.
	vm.SetLocation(ctx, 0, 0)
	assert.Nil(t, vm.Expense.Location)
}

func TestFormSetLocationSurvivesGeocoderFailure(t *testing.T) {
	vm := NewForm(&fakeService{}, nil, &fakeGeocoder{err: errors.New("offline")}, nil)

	vm.SetLocation(context.Background(), 41.38, 2.17)
	require.NotNil(t, vm.Expense.Location)
	assert.Empty(t, vm.Expense.Location.Name)
	assert.Equal(t, 41.38, vm.Expense.Location.Latitude)
}
