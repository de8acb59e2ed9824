package normalize

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"showfinder/internal/payload"
)

func mustParse(t *testing.T, raw string) payload.Untrusted {
	t.Helper()
	p, err := payload.Parse(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("payload.Parse: %v", err)
	}
	return p
}

func TestParseEntryFee(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{name: "dollar amount", raw: "$5.00", want: floatPtr(5.00)},
		{name: "bare integer", raw: "5", want: floatPtr(5)},
		{name: "embedded in text", raw: "Admission: 12.50 at the door", want: floatPtr(12.50)},
		{name: "empty", raw: "", want: nil},
		{name: "no digits", raw: "free", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseEntryFee(tc.raw)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("ParseEntryFee(%q) = %v, want nil", tc.raw, *got)
			case tc.want != nil && got == nil:
				t.Fatalf("ParseEntryFee(%q) = nil, want %v", tc.raw, *tc.want)
			case tc.want != nil && *got != *tc.want:
				t.Fatalf("ParseEntryFee(%q) = %v, want %v", tc.raw, *got, *tc.want)
			}
		})
	}
}

func TestShow_Defaults(t *testing.T) {
	p := mustParse(t, `{"startDate": "2025-10-04"}`)

	n, err := Show(p)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if n.Title != "Untitled Show" {
		t.Errorf("Title = %q, want %q", n.Title, "Untitled Show")
	}
	if n.Location != "TBD" {
		t.Errorf("Location = %q, want %q", n.Location, "TBD")
	}
	if n.Address != "TBD" {
		t.Errorf("Address = %q, want %q", n.Address, "TBD")
	}
	if !n.EndDate.Equal(n.StartDate) {
		t.Errorf("EndDate = %v, want StartDate %v", n.EndDate, n.StartDate)
	}
	if n.CoordinateIssue != "missing coordinates" {
		t.Errorf("CoordinateIssue = %q, want %q", n.CoordinateIssue, "missing coordinates")
	}
	if n.EntryFee != nil {
		t.Errorf("EntryFee = %v, want nil", *n.EntryFee)
	}
}

func TestShow_NoStartDate(t *testing.T) {
	p := mustParse(t, `{"title": "Undated Show"}`)

	if _, err := Show(p); !errors.Is(err, ErrNoStartDate) {
		t.Fatalf("Show err = %v, want ErrNoStartDate", err)
	}
}

func TestShow_AddressFallback(t *testing.T) {
	p := mustParse(t, `{
		"title": "Tri-State Card Expo",
		"startDate": "2025-10-04",
		"venueName": "Expo Hall",
		"city": "Trenton",
		"state": "NJ"
	}`)

	n, err := Show(p)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if n.Location != "Expo Hall" {
		t.Errorf("Location = %q, want venue name", n.Location)
	}
	if n.Address != "Expo Hall, Trenton, NJ" {
		t.Errorf("Address = %q, want composed fallback", n.Address)
	}
}

func TestShow_ScheduleSpan(t *testing.T) {
	p := mustParse(t, `{
		"title": "National Convention",
		"dailySchedule": [
			{"date": "2025-10-05", "startTime": "09:00", "endTime": "17:00"},
			{"date": "2025-10-04", "startTime": "08:00", "endTime": "18:00"},
			{"date": "2025-10-06", "startTime": "10:00", "endTime": "20:00"}
		]
	}`)

	n, err := Show(p)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	wantStart := time.Date(2025, 10, 4, 8, 0, 0, 0, loc)
	wantEnd := time.Date(2025, 10, 6, 20, 0, 0, 0, loc)

	if !n.StartDate.Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", n.StartDate, wantStart)
	}
	if !n.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", n.EndDate, wantEnd)
	}
	if len(n.DailySchedule) != 3 {
		t.Fatalf("len(DailySchedule) = %d, want 3", len(n.DailySchedule))
	}
	if n.DailySchedule[0].Date != "2025-10-04" {
		t.Errorf("schedule not sorted, first date = %q", n.DailySchedule[0].Date)
	}
}

func TestShow_ScheduleBeatsTopLevelDates(t *testing.T) {
	p := mustParse(t, `{
		"startDate": "2025-01-01",
		"endDate": "2025-01-02",
		"dailySchedule": [{"date": "2025-10-04", "startTime": "08:00", "endTime": "16:00"}]
	}`)

	n, err := Show(p)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if n.StartDate.Year() != 2025 || n.StartDate.Month() != time.October {
		t.Errorf("StartDate = %v, want schedule-derived October date", n.StartDate)
	}
}

func TestShow_MixedTimezonesRejected(t *testing.T) {
	p := mustParse(t, `{
		"dailySchedule": [
			{"date": "2025-10-04", "timezone": "America/New_York"},
			{"date": "2025-10-05", "timezone": "America/Chicago"}
		]
	}`)

	if _, err := Show(p); !errors.Is(err, ErrMixedTimezones) {
		t.Fatalf("Show err = %v, want ErrMixedTimezones", err)
	}
}

func TestShow_UnusableScheduleFallsBack(t *testing.T) {
	p := mustParse(t, `{
		"startDate": "2025-10-04",
		"dailySchedule": [{"date": "not-a-date"}, {"startTime": "08:00"}]
	}`)

	n, err := Show(p)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(n.DailySchedule) != 0 {
		t.Errorf("DailySchedule = %v, want empty", n.DailySchedule)
	}
	if n.StartDate.Format("2006-01-02") != "2025-10-04" {
		t.Errorf("StartDate = %v, want top-level fallback", n.StartDate)
	}
}

func TestShow_FeatureCoercion(t *testing.T) {
	t.Run("array form", func(t *testing.T) {
		p := mustParse(t, `{"startDate": "2025-10-04", "features": ["autographs", "grading"]}`)
		n, err := Show(p)
		if err != nil {
			t.Fatalf("Show: %v", err)
		}
		if !n.Features["autographs"] || !n.Features["grading"] {
			t.Errorf("Features = %v, want both keys truthy", n.Features)
		}
	})

	t.Run("object form drops falsy", func(t *testing.T) {
		p := mustParse(t, `{"startDate": "2025-10-04", "features": {"autographs": true, "grading": false}}`)
		n, err := Show(p)
		if err != nil {
			t.Fatalf("Show: %v", err)
		}
		if !n.Features["autographs"] {
			t.Errorf("Features missing truthy key: %v", n.Features)
		}
		if _, ok := n.Features["grading"]; ok {
			t.Errorf("Features kept falsy key: %v", n.Features)
		}
	})
}

func TestShow_EntryFeeVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{name: "numeric", raw: `{"startDate": "2025-10-04", "entryFee": 5}`, want: floatPtr(5)},
		{name: "string with currency", raw: `{"startDate": "2025-10-04", "entryFee": "$5.00"}`, want: floatPtr(5)},
		{name: "snake case key", raw: `{"startDate": "2025-10-04", "entry_fee": "10"}`, want: floatPtr(10)},
		{name: "free text", raw: `{"startDate": "2025-10-04", "entryFee": "free"}`, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Show(mustParse(t, tc.raw))
			if err != nil {
				t.Fatalf("Show: %v", err)
			}
			switch {
			case tc.want == nil && n.EntryFee != nil:
				t.Fatalf("EntryFee = %v, want nil", *n.EntryFee)
			case tc.want != nil && n.EntryFee == nil:
				t.Fatalf("EntryFee = nil, want %v", *tc.want)
			case tc.want != nil && *n.EntryFee != *tc.want:
				t.Fatalf("EntryFee = %v, want %v", *n.EntryFee, *tc.want)
			}
		})
	}
}

func TestShow_Coordinates(t *testing.T) {
	t.Run("valid top-level", func(t *testing.T) {
		p := mustParse(t, `{"startDate": "2025-10-04", "latitude": 40.22, "longitude": -74.76}`)
		n, err := Show(p)
		if err != nil {
			t.Fatalf("Show: %v", err)
		}
		if n.Latitude == nil || *n.Latitude != 40.22 {
			t.Fatalf("Latitude = %v, want 40.22", n.Latitude)
		}
		if n.CoordinateIssue != "" {
			t.Errorf("CoordinateIssue = %q, want empty", n.CoordinateIssue)
		}
	})

	t.Run("nested coordinates object", func(t *testing.T) {
		p := mustParse(t, `{"startDate": "2025-10-04", "coordinates": {"latitude": 40.22, "longitude": -74.76}}`)
		n, err := Show(p)
		if err != nil {
			t.Fatalf("Show: %v", err)
		}
		if n.Latitude == nil || *n.Latitude != 40.22 {
			t.Fatalf("Latitude = %v, want nested value", n.Latitude)
		}
	})

	t.Run("out of range logged", func(t *testing.T) {
		p := mustParse(t, `{"startDate": "2025-10-04", "latitude": 123.0, "longitude": 10.0}`)
		n, err := Show(p)
		if err != nil {
			t.Fatalf("Show: %v", err)
		}
		if n.Latitude != nil {
			t.Errorf("Latitude = %v, want nil for out-of-range", *n.Latitude)
		}
		if n.CoordinateIssue == "" {
			t.Error("CoordinateIssue empty, want out-of-range message")
		}
	})
}

func TestApplyGeocoded(t *testing.T) {
	p := mustParse(t, `{"startDate": "2025-10-04"}`)
	n, err := Show(p)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}

	ApplyGeocoded(&n, json.RawMessage(`{"latitude": 40.22, "longitude": -74.76}`))

	if n.Latitude == nil || *n.Latitude != 40.22 {
		t.Fatalf("Latitude = %v, want geocoded value", n.Latitude)
	}
	if n.CoordinateIssue != "" {
		t.Errorf("CoordinateIssue = %q, want cleared", n.CoordinateIssue)
	}

	t.Run("does not overwrite payload coordinates", func(t *testing.T) {
		p := mustParse(t, `{"startDate": "2025-10-04", "latitude": 1.5, "longitude": 2.5}`)
		n, err := Show(p)
		if err != nil {
			t.Fatalf("Show: %v", err)
		}
		ApplyGeocoded(&n, json.RawMessage(`{"latitude": 40.22, "longitude": -74.76}`))
		if *n.Latitude != 1.5 {
			t.Errorf("Latitude = %v, want original 1.5", *n.Latitude)
		}
	})

	t.Run("malformed geocoded payload ignored", func(t *testing.T) {
		p := mustParse(t, `{"startDate": "2025-10-04"}`)
		n, err := Show(p)
		if err != nil {
			t.Fatalf("Show: %v", err)
		}
		ApplyGeocoded(&n, json.RawMessage(`[1, 2]`))
		if n.Latitude != nil {
			t.Errorf("Latitude = %v, want nil", *n.Latitude)
		}
	})
}

func floatPtr(v float64) *float64 { return &v }
