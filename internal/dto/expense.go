// Package dto holds the JSON shapes exchanged with the expense service and
// the mapping between them and the domain model.
//
// The two directions deliberately disagree on the date encoding: rows read
// from the service carry epoch milliseconds, while write requests carry
// ISO-8601 text. The service accepts both; see WireDate.
package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Expense is a row as returned by the service: string-tagged type, epoch
// milliseconds date, location flattened into three nullable columns.
type Expense struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Type              string   `json:"type"`
	Amount            float64  `json:"amount"`
	Date              float64  `json:"date"`
	LocationLatitude  *float64 `json:"locationLatitude"`
	LocationLongitude *float64 `json:"locationLongitude"`
	LocationName      *string  `json:"locationName"`
}

// Location is the nested shape used on write requests.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      *string `json:"name,omitempty"`
}

// ExpenseRequest is the body of POST /expenses and PUT /expenses/{id}.
type ExpenseRequest struct {
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Amount       float64   `json:"amount"`
	Date         WireDate  `json:"date"`
	LocationInfo *Location `json:"locationInfo,omitempty"`
}

// DeleteRequest is the body of the batch DELETE /expenses route.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// WireDate marshals as ISO-8601 text and unmarshals from ISO-8601 text
// (with or without time of day) or from epoch milliseconds.
type WireDate struct {
	time.Time
}

func (d WireDate) MarshalJSON() ([]byte, error) {
	// Fractional seconds keep the round trip stable to the millisecond.
	return json.Marshal(d.UTC().Format("2006-01-02T15:04:05.999Z07:00"))
}

func (d *WireDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.parseText(s)
	}
	millis, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", string(b), err)
	}
	d.Time = time.UnixMilli(int64(millis)).UTC()
	return nil
}

func (d *WireDate) parseText(s string) error {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse date %q: unrecognized format", s)
}
