package dto

import (
	"time"

	"github.com/google/uuid"

	"simplefinance/internal/core"
)

// ToDomain converts a wire row into the domain model. An unrecognized type
// tag degrades to core.TypeOther, a malformed id gets a fresh one, and a
// missing or (0,0) location decodes to no location at all.
func ToDomain(d Expense) core.Expense {
	e := core.Expense{
		Title:  d.Title,
		Type:   core.ParseExpenseType(d.Type),
		Amount: d.Amount,
		Date:   time.UnixMilli(int64(d.Date)).UTC(),
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		id = uuid.New()
	}
	e.ID = id

	if d.LocationLatitude != nil && d.LocationLongitude != nil {
		loc := core.LocationInfo{
			Latitude:  *d.LocationLatitude,
			Longitude: *d.LocationLongitude,
		}
		if d.LocationName != nil {
			loc.Name = *d.LocationName
		}
		if !loc.IsZero() {
			e.Location = &loc
		}
	}
	return e
}

// ToRequest converts a domain expense into the write-request shape. The id
// travels in the URL, never in the body.
func ToRequest(e core.Expense) ExpenseRequest {
	req := ExpenseRequest{
		Title:  e.Title,
		Type:   e.Type.String(),
		Amount: e.Amount,
		Date:   WireDate{Time: e.Date},
	}
	if e.Location != nil {
		req.LocationInfo = ToLocation(*e.Location)
	}
	return req
}

// ToLocation flattens a domain location into its wire shape.
func ToLocation(l core.LocationInfo) *Location {
	loc := &Location{Latitude: l.Latitude, Longitude: l.Longitude}
	if l.Name != "" {
		name := l.Name
		loc.Name = &name
	}
	return loc
}
