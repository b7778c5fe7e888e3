package gtfs

import "testing"

func testTrips() []Trip {
	return []Trip{
		{RouteID: "88", ServiceID: "WK", TripID: "TRIP123", Headsign: "Central Station"},
		{RouteID: "88", ServiceID: "WK", TripID: "TRIP124", Headsign: "Airport"},
		{RouteID: "12", ServiceID: "SU", TripID: "AB-1", Headsign: "Harbour", ShortName: "Express"},
		{RouteID: "12", ServiceID: "SU", TripID: "XY1", Headsign: "Docks"},
	}
}

func TestTripIndexExactMatch(t *testing.T) {
	idx := NewTripIndex(testTrips())
	trip, ok := idx.MatchByTripID("TRIP123")
	if !ok {
		t.Fatal("expected exact match for TRIP123")
	}
	if trip.Headsign != "Central Station" {
		t.Errorf("matched wrong trip: %+v", trip)
	}
}

func TestTripIndexVariantMatch(t *testing.T) {
	idx := NewTripIndex(testTrips())
	tests := []struct {
		name   string
		id     string
		want   string
		wantOK bool
	}{
		{"case difference", "trip123", "TRIP123", true},
		{"namespace prefix", "agency:TRIP124", "TRIP124", true},
		{"digits hash prefix", "0#TRIP123", "TRIP123", true},
		{"separator swap", "AB_1", "AB-1", true},
		{"separators dropped", "X.Y-1", "XY1", true},
		{"unknown", "TRIP999", "", false},
		{"blank", "   ", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip, ok := idx.MatchByTripID(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("MatchByTripID(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if ok && trip.TripID != tt.want {
				t.Errorf("MatchByTripID(%q) = %q, want %q", tt.id, trip.TripID, tt.want)
			}
		})
	}
}

func TestTripIndexFirstInsertWins(t *testing.T) {
	trips := []Trip{
		{RouteID: "1", TripID: "DUP", Headsign: "First"},
		{RouteID: "2", TripID: "DUP", Headsign: "Second"},
		// Different raw id, same normalized form as DUP.
		{RouteID: "3", TripID: "agency:dup", Headsign: "Third"},
	}
	idx := NewTripIndex(trips)

	trip, ok := idx.MatchByTripID("DUP")
	if !ok || trip.Headsign != "First" {
		t.Errorf("exact lookup returned %+v, want the first-inserted trip", trip)
	}
	trip, ok = idx.MatchByTripID("dup")
	if !ok || trip.Headsign != "First" {
		t.Errorf("normalized lookup returned %+v, want the first-inserted trip", trip)
	}
}

func TestSearchByRouteOrHeadsign(t *testing.T) {
	idx := NewTripIndex(testTrips())
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"route id", "88", 2},
		{"headsign substring", "station", 1},
		{"short name", "express", 1},
		{"case insensitive", "AIRPORT", 1},
		{"no match", "tram", 0},
		{"blank", "  ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.SearchByRouteOrHeadsign(tt.query)
			if len(got) != tt.want {
				t.Errorf("SearchByRouteOrHeadsign(%q) returned %d trips, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}
