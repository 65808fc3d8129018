package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplefinance/internal/core"
)

// roundTrip pushes a domain expense through the write request, replays it as
// the row the service would hand back, and decodes it again.
func roundTrip(t *testing.T, e core.Expense) core.Expense {
	t.Helper()
	req := ToRequest(e)
	row := Expense{
		ID:     e.ID.String(),
		Title:  req.Title,
		Type:   req.Type,
		Amount: req.Amount,
		Date:   float64(req.Date.UTC().UnixMilli()),
	}
	if req.LocationInfo != nil {
		row.LocationLatitude = &req.LocationInfo.Latitude
		row.LocationLongitude = &req.LocationInfo.Longitude
		row.LocationName = req.LocationInfo.Name
	}
	return ToDomain(row)
}

func TestRoundTripPreservesFields(t *testing.T) {
	date := time.Date(2024, 3, 15, 18, 30, 45, 0, time.UTC)
	for _, typ := range core.Types() {
		e := core.NewExpense("Groceries", typ, 42.99, date)
		e.Location = &core.LocationInfo{Latitude: 41.38, Longitude: 2.17, Name: "Barcelona"}

		got := roundTrip(t, e)
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, e.Title, got.Title)
		assert.Equal(t, e.Type, got.Type)
		assert.Equal(t, e.Amount, got.Amount)
		require.NotNil(t, got.Location)
		assert.Equal(t, *e.Location, *got.Location)
		assert.True(t, e.Date.Equal(got.Date), "date changed: %v -> %v", e.Date, got.Date)
	}
}

func TestRoundTripDateIsMillisecondStable(t *testing.T) {
	// Sub-millisecond precision may be lost; the millisecond must survive.
	date := time.Date(2024, 3, 15, 18, 30, 45, 123_456_789, time.UTC)
	e := core.NewExpense("Taxi", core.TypeTransport, 9.5, date)

	got := roundTrip(t, e)
	assert.Equal(t, date.UnixMilli(), got.Date.UnixMilli())
	assert.NotEqual(t, date.Nanosecond(), got.Date.Nanosecond())
}

func TestToDomainUnknownTypeDegradesToOther(t *testing.T) {
	got := ToDomain(Expense{ID: "not-a-uuid", Title: "x", Type: "subscription", Amount: 1, Date: 0})
	assert.Equal(t, core.TypeOther, got.Type)
	// A malformed id still yields a usable record.
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", got.ID.String())
}

func TestToDomainLocationHandling(t *testing.T) {
	lat, lon := 41.38, 2.17
	zero := 0.0
	name := "Somewhere"

	t.Run("both coordinates present", func(t *testing.T) {
		got := ToDomain(Expense{Type: "food", LocationLatitude: &lat, LocationLongitude: &lon, LocationName: &name})
		require.NotNil(t, got.Location)
		assert.Equal(t, name, got.Location.Name)
	})

	t.Run("missing coordinates mean no location", func(t *testing.T) {
		got := ToDomain(Expense{Type: "food", LocationLatitude: &lat})
		assert.Nil(t, got.Location)
	})

	t.Run("(0,0) means no location", func(t *testing.T) {
		got := ToDomain(Expense{Type: "food", LocationLatitude: &zero, LocationLongitude: &zero})
		assert.Nil(t, got.Location)
	})
}

func TestWireDateAsymmetry(t *testing.T) {
	// Writes serialize as ISO-8601 text.
	d := WireDate{Time: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-01T12:00:00Z"`, string(out))

	// Reads accept ISO-8601 with time, date-only, and epoch milliseconds.
	cases := []struct {
		raw  string
		want time.Time
	}{
		{`"2024-01-01T12:00:00Z"`, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{`"2024-01-01"`, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{`1704110400000`, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		var got WireDate
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &got), "raw=%s", tc.raw)
		assert.True(t, tc.want.Equal(got.Time), "raw=%s got=%v", tc.raw, got.Time)
	}

	var bad WireDate
	assert.Error(t, json.Unmarshal([]byte(`"not a date"`), &bad))
}

func TestToRequestOmitsIDAndEmptyName(t *testing.T) {
	e := core.NewExpense("Cinema", core.TypeEntertainment, 15, time.Now())
	e.Location = &core.LocationInfo{Latitude: 1, Longitude: 2}

	req := ToRequest(e)
	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(out), e.ID.String())
	assert.NotContains(t, string(out), `"name"`)
}
