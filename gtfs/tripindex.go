package gtfs

import "strings"

// TripIndex resolves raw trip identifiers, in either the static or the
// realtime spelling, to Trip metadata. It keeps an exact-id map and a
// normalized-id map, both first-insert-wins: a later trip reusing an id is
// discarded, never merged.
type TripIndex struct {
	trips    []Trip
	byID     map[string]*Trip
	byNormID map[string]*Trip
}

// NewTripIndex builds the index from the full trip list. The list is copied;
// the caller's slice is not retained.
func NewTripIndex(trips []Trip) *TripIndex {
	idx := &TripIndex{
		trips:    make([]Trip, len(trips)),
		byID:     make(map[string]*Trip, len(trips)),
		byNormID: make(map[string]*Trip, len(trips)),
	}
	copy(idx.trips, trips)
	for i := range idx.trips {
		t := &idx.trips[i]
		if t.TripID == "" {
			continue
		}
		if _, dup := idx.byID[t.TripID]; !dup {
			idx.byID[t.TripID] = t
		}
		if norm, ok := Normalize(t.TripID); ok {
			if _, dup := idx.byNormID[norm]; !dup {
				idx.byNormID[norm] = t
			}
		}
	}
	return idx
}

// Len returns the number of trips the index was built from.
func (idx *TripIndex) Len() int { return len(idx.trips) }

// MatchByTripID resolves id to a trip: exact map first, then each spelling
// variant against the normalized map, in variant generation order. A blank id
// never matches.
func (idx *TripIndex) MatchByTripID(id string) (*Trip, bool) {
	if strings.TrimSpace(id) == "" {
		return nil, false
	}
	if t, ok := idx.byID[id]; ok {
		return t, true
	}
	for _, v := range Variants(id) {
		if t, ok := idx.byNormID[v]; ok {
			return t, true
		}
	}
	return nil, false
}

// SearchByRouteOrHeadsign returns every trip whose route id, headsign or short
// name contains query, case-insensitively. A blank query matches nothing.
// Result order is unspecified.
func (idx *TripIndex) SearchByRouteOrHeadsign(query string) []*Trip {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []*Trip
	for i := range idx.trips {
		t := &idx.trips[i]
		if strings.Contains(strings.ToLower(t.RouteID), q) ||
			strings.Contains(strings.ToLower(t.Headsign), q) ||
			strings.Contains(strings.ToLower(t.ShortName), q) {
			out = append(out, t)
		}
	}
	return out
}
