package resolver

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/citytransit/arrivals/gtfs"
	"github.com/citytransit/arrivals/gtfsrt"
)

func tod(t *testing.T, raw string) *gtfs.TimeOfDay {
	t.Helper()
	v, err := gtfs.ParseTimeOfDay(raw)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", raw, err)
	}
	return &v
}

// epochAt turns a time-of-day on the reference date into epoch seconds.
func epochAt(td gtfs.TimeOfDay) int64 {
	return time.Date(2026, 8, 28, 0, 0, td.Seconds(), 0, time.UTC).Unix()
}

var refTime = time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)

func newTestResolver(t *testing.T) *ArrivalResolver {
	t.Helper()
	trips := gtfs.NewTripIndex([]gtfs.Trip{
		{RouteID: "88", ServiceID: "WK", TripID: "T833", Headsign: "Airport"},
		{RouteID: "88", ServiceID: "WK", TripID: "T857", Headsign: "Airport"},
		{RouteID: "12", ServiceID: "SU", TripID: "SUNDAY1", Headsign: "Harbour"},
	})
	stops := gtfs.NewStopTripIndex([]gtfs.StopTime{
		{TripID: "T833", StopID: "STOP_1", StopSequence: 3, Arrival: tod(t, "08:33:00")},
		{TripID: "T857", StopID: "STOP_1", StopSequence: 3, Arrival: tod(t, "08:57:00")},
		{TripID: "SUNDAY1", StopID: "STOP_1", StopSequence: 1, Arrival: tod(t, "09:10:00")},
	})
	cal := gtfs.NewServiceCalendar([]gtfs.ServiceException{
		{ServiceID: "WK", Date: "20260828", Type: gtfs.ExceptionAdded},
		// SU never runs on the reference date.
		{ServiceID: "SU", Date: "20260830", Type: gtfs.ExceptionAdded},
	})
	return New(trips, stops, cal, time.UTC, nil)
}

func TestUnmatchedRecordNeverAttaches(t *testing.T) {
	r := newTestResolver(t)

	// A prediction on the same route and stop as the two scheduled trips,
	// but for a trip id matching neither. It must not annotate either entry
	// and must not surface as an entry of its own.
	r.UpdateRealtimeArrivals([]gtfsrt.ArrivalRecord{
		{TripID: "UNRELATED99", RouteID: "88", StopID: "STOP_1", Arrival: epochAt(*tod(t, "08:47:00"))},
	})

	got := r.GetArrivalsForStop("STOP_1", Online, refTime)
	want := []string{
		"08:33 | 88 - Airport",
		"08:57 | 88 - Airport",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("board mismatch (-want +got):\n%s", diff)
	}
	if r.RealtimeCount() != 0 {
		t.Errorf("snapshot holds %d records, want 0: unresolved records must be dropped", r.RealtimeCount())
	}
}

func TestMatchedRecordAnnotates(t *testing.T) {
	r := newTestResolver(t)

	r.UpdateRealtimeArrivals([]gtfsrt.ArrivalRecord{
		// Alternate spelling of T833, five minutes late.
		{TripID: "agency:t833", RouteID: "88", StopID: "STOP_1", Arrival: epochAt(*tod(t, "08:38:00"))},
		// T857 two minutes early.
		{TripID: "T857", RouteID: "88", StopID: "STOP_1", Arrival: epochAt(*tod(t, "08:55:00"))},
	})

	got := r.GetArrivalsForStop("STOP_1", Online, refTime)
	want := []string{
		"08:33 | 88 - Airport [+5 min]",
		"08:57 | 88 - Airport [-2 min]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("board mismatch (-want +got):\n%s", diff)
	}
}

func TestOfflineModeIgnoresSnapshot(t *testing.T) {
	r := newTestResolver(t)
	r.UpdateRealtimeArrivals([]gtfsrt.ArrivalRecord{
		{TripID: "T833", RouteID: "88", StopID: "STOP_1", Arrival: epochAt(*tod(t, "08:40:00"))},
	})

	got := r.GetArrivalsForStop("STOP_1", Offline, refTime)
	want := []string{
		"08:33 | 88 - Airport",
		"08:57 | 88 - Airport",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("offline board mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceDateFilter(t *testing.T) {
	r := newTestResolver(t)

	// SUNDAY1 serves STOP_1 but its service has no ADDED exception for the
	// reference date.
	got := r.GetArrivalsForStop("STOP_1", Online, refTime)
	for _, line := range got {
		if line == "09:10 | 12 - Harbour" {
			t.Fatal("trip outside its service dates appeared on the board")
		}
	}

	// Two days later only the Sunday service runs.
	sunday := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	got = r.GetArrivalsForStop("STOP_1", Online, sunday)
	want := []string{"09:10 | 12 - Harbour"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sunday board mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotReplacedWholesale(t *testing.T) {
	r := newTestResolver(t)
	r.UpdateRealtimeArrivals([]gtfsrt.ArrivalRecord{
		{TripID: "T833", RouteID: "88", StopID: "STOP_1", Arrival: epochAt(*tod(t, "08:36:00"))},
	})
	if r.RealtimeCount() != 1 {
		t.Fatalf("RealtimeCount = %d, want 1", r.RealtimeCount())
	}

	// The next refresh carries nothing; the previous prediction must not
	// survive the swap.
	r.UpdateRealtimeArrivals(nil)
	if r.RealtimeCount() != 0 {
		t.Errorf("RealtimeCount = %d after empty refresh, want 0", r.RealtimeCount())
	}
	got := r.GetArrivalsForStop("STOP_1", Online, refTime)
	for _, line := range got {
		if line != "08:33 | 88 - Airport" && line != "08:57 | 88 - Airport" {
			t.Errorf("stale annotation survived the swap: %q", line)
		}
	}
}

func TestMalformedRecordsDropped(t *testing.T) {
	r := newTestResolver(t)
	r.UpdateRealtimeArrivals([]gtfsrt.ArrivalRecord{
		{TripID: "T833", RouteID: "88", StopID: "", Arrival: epochAt(*tod(t, "08:36:00"))},
		{TripID: "T833", RouteID: "88", StopID: "STOP_1", Arrival: 0},
		{TripID: "", RouteID: "88", StopID: "STOP_1", Arrival: epochAt(*tod(t, "08:36:00"))},
	})
	if r.RealtimeCount() != 0 {
		t.Errorf("RealtimeCount = %d, want 0 for malformed input", r.RealtimeCount())
	}
}

func TestUnknownStopYieldsEmptyBoard(t *testing.T) {
	r := newTestResolver(t)
	if got := r.GetArrivalsForStop("NOWHERE", Online, refTime); len(got) != 0 {
		t.Errorf("unknown stop produced %d entries, want 0", len(got))
	}
}

func TestStopTimeHeadsignOverride(t *testing.T) {
	trips := gtfs.NewTripIndex([]gtfs.Trip{
		{RouteID: "5", ServiceID: "WK", TripID: "OV1", Headsign: "Depot"},
	})
	stops := gtfs.NewStopTripIndex([]gtfs.StopTime{
		{TripID: "OV1", StopID: "S", StopSequence: 1, Arrival: tod(t, "10:00:00"), Headsign: "Short Turn"},
	})
	cal := gtfs.NewServiceCalendar([]gtfs.ServiceException{
		{ServiceID: "WK", Date: "20260828", Type: gtfs.ExceptionAdded},
	})
	r := New(trips, stops, cal, time.UTC, nil)

	got := r.GetArrivalsForStop("S", Offline, refTime)
	want := []string{"10:00 | 5 - Short Turn"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("headsign override mismatch (-want +got):\n%s", diff)
	}
}

func TestDepartureFallbackKeepsOrder(t *testing.T) {
	trips := gtfs.NewTripIndex([]gtfs.Trip{
		{RouteID: "7", ServiceID: "WK", TripID: "D1", Headsign: "East"},
		{RouteID: "7", ServiceID: "WK", TripID: "D2", Headsign: "East"},
	})
	stops := gtfs.NewStopTripIndex([]gtfs.StopTime{
		// No arrival time; the departure stands in and must still sort
		// ahead of the later trip.
		{TripID: "D1", StopID: "S", StopSequence: 1, Departure: tod(t, "07:30:00")},
		{TripID: "D2", StopID: "S", StopSequence: 1, Arrival: tod(t, "07:45:00")},
	})
	cal := gtfs.NewServiceCalendar([]gtfs.ServiceException{
		{ServiceID: "WK", Date: "20260828", Type: gtfs.ExceptionAdded},
	})
	r := New(trips, stops, cal, time.UTC, nil)

	got := r.GetArrivalsForStop("S", Offline, refTime)
	want := []string{
		"07:30 | 7 - East",
		"07:45 | 7 - East",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fallback ordering mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("offline") != Offline {
		t.Error(`ParseMode("offline") != Offline`)
	}
	if ParseMode("online") != Online || ParseMode("") != Online {
		t.Error("ParseMode default is not Online")
	}
}
