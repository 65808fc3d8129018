package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TypeFood          ExpenseType = "food"
	TypeTransport     ExpenseType = "transport"
	TypeEntertainment ExpenseType = "entertainment"
	TypeShopping      ExpenseType = "shopping"
	TypeUtilities     ExpenseType = "utilities"
	TypeOther         ExpenseType = "other"
)

type (
	// ExpenseType is the closed category enumeration.
	ExpenseType string

	// AttachmentInfo references a single stored file belonging to an expense.
	AttachmentInfo struct {
		ID          uuid.UUID `json:"id"`
		FileName    string    `json:"fileName"`
		ContentType string    `json:"contentType"`
	}

	// LocationInfo is a geographic point with an optional display name.
	// A point at (0,0) means "no location" by convention; an expense at the
	// literal equator/prime-meridian cannot be represented.
	LocationInfo struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name,omitempty"`
	}

	// Expense is one recorded financial transaction.
	Expense struct {
		ID         uuid.UUID       `json:"id"`
		Title      string          `json:"title"`
		Type       ExpenseType     `json:"type"`
		Amount     float64         `json:"amount"`
		Date       time.Time       `json:"date"`
		Attachment *AttachmentInfo `json:"attachment,omitempty"`
		Location   *LocationInfo   `json:"locationInfo,omitempty"`
	}
)

// Types lists every defined expense type in declaration order.
func Types() []ExpenseType {
	return []ExpenseType{TypeFood, TypeTransport, TypeEntertainment, TypeShopping, TypeUtilities, TypeOther}
}

// ParseExpenseType maps a string tag to its type, degrading to TypeOther for
// anything unrecognized. It never fails: unknown server-side categories must
// not break decoding.
func ParseExpenseType(tag string) ExpenseType {
	t := ExpenseType(tag)
	if t.IsValid() {
		return t
	}
	return TypeOther
}

// String implements fmt.Stringer
func (t ExpenseType) String() string {
	return string(t)
}

// IsValid returns true if the type is one of the defined categories.
func (t ExpenseType) IsValid() bool {
	switch t {
	case TypeFood, TypeTransport, TypeEntertainment, TypeShopping, TypeUtilities, TypeOther:
		return true
	default:
		return false
	}
}

// IsZero reports whether the point is the (0,0) "no location" sentinel.
func (l LocationInfo) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}

// NewExpense builds an expense with a freshly generated id.
func NewExpense(title string, t ExpenseType, amount float64, date time.Time) Expense {
	return Expense{
		ID:     uuid.New(),
		Title:  title,
		Type:   t,
		Amount: amount,
		Date:   date,
	}
}

func (e Expense) Validate() error {
	if e.ID == uuid.Nil {
		return validationError("id is required")
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return validationError("title is required")
	}
	if !e.Type.IsValid() {
		return validationError("unknown expense type " + string(e.Type))
	}
	if e.Amount == 0 {
		return validationError("amount is required")
	}
	if e.Date.IsZero() {
		return validationError("date is required")
	}
	return nil
}

// NormalizeLocation applies the (0,0)-means-absent convention, dropping a
// location whose coordinates are both zero.
func (e Expense) NormalizeLocation() Expense {
	if e.Location != nil && e.Location.IsZero() {
		e.Location = nil
	}
	return e
}
