package gtfs

import (
	"sort"
	"strings"
)

// TripMatcher resolves a raw trip identifier to trip metadata. Satisfied by
// *TripIndex; injected so StopTripIndex never owns trip resolution itself.
type TripMatcher interface {
	MatchByTripID(id string) (*Trip, bool)
}

type stopSeqKey struct {
	tripKey      string
	stopSequence int
}

// StopTripIndex answers two static questions: which scheduled stop-time
// entries serve a stop, and which stop a trip is at for a given stop sequence.
// Per-stop lists are sorted ascending by arrival time with absent arrivals
// last (stable otherwise).
type StopTripIndex struct {
	byStop  map[string][]StopTime
	stopIDs map[string]struct{}

	// stopAt is keyed by the canonical trip id; stopAtAlt is a fallback keyed
	// by a simpler lowercased-trimmed form, for feeds whose ids reduce badly
	// under full normalization.
	stopAt    map[stopSeqKey]string
	stopAtAlt map[stopSeqKey]string
}

// NewStopTripIndex builds the index from the full stop-time list.
func NewStopTripIndex(stopTimes []StopTime) *StopTripIndex {
	idx := &StopTripIndex{
		byStop:    map[string][]StopTime{},
		stopIDs:   map[string]struct{}{},
		stopAt:    map[stopSeqKey]string{},
		stopAtAlt: map[stopSeqKey]string{},
	}
	for _, st := range stopTimes {
		if st.StopID == "" {
			continue
		}
		idx.stopIDs[st.StopID] = struct{}{}
		idx.byStop[st.StopID] = append(idx.byStop[st.StopID], st)

		if norm, ok := Normalize(st.TripID); ok {
			k := stopSeqKey{norm, st.StopSequence}
			if _, dup := idx.stopAt[k]; !dup {
				idx.stopAt[k] = st.StopID
			}
		}
		if alt := strings.ToLower(strings.TrimSpace(st.TripID)); alt != "" {
			k := stopSeqKey{alt, st.StopSequence}
			if _, dup := idx.stopAtAlt[k]; !dup {
				idx.stopAtAlt[k] = st.StopID
			}
		}
	}
	for stopID := range idx.byStop {
		list := idx.byStop[stopID]
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].Arrival, list[j].Arrival
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return *a < *b
			}
		})
	}
	return idx
}

// StopTimesFor returns the scheduled entries serving stopID, sorted ascending
// by arrival time. The returned slice is shared and must not be mutated. An
// unknown stop id yields nil.
func (idx *StopTripIndex) StopTimesFor(stopID string) []StopTime {
	return idx.byStop[stopID]
}

// TripsForStop resolves the trips serving stopID through matcher,
// de-duplicated by trip identity. Unknown stop ids and unresolvable trip ids
// contribute nothing; the result is never an error.
func (idx *StopTripIndex) TripsForStop(stopID string, matcher TripMatcher) []*Trip {
	var out []*Trip
	seen := map[string]struct{}{}
	for _, st := range idx.byStop[stopID] {
		trip, ok := matcher.MatchByTripID(st.TripID)
		if !ok {
			continue
		}
		if _, dup := seen[trip.TripID]; dup {
			continue
		}
		seen[trip.TripID] = struct{}{}
		out = append(out, trip)
	}
	return out
}

// StopForTripAt answers "which stop is this trip at, at this stop sequence".
// The primary lookup uses the canonical trip id; on a miss the simpler
// lowercased-trimmed key is tried.
func (idx *StopTripIndex) StopForTripAt(tripID string, stopSequence int) (string, bool) {
	if norm, ok := Normalize(tripID); ok {
		if stopID, ok := idx.stopAt[stopSeqKey{norm, stopSequence}]; ok {
			return stopID, true
		}
	}
	if alt := strings.ToLower(strings.TrimSpace(tripID)); alt != "" {
		if stopID, ok := idx.stopAtAlt[stopSeqKey{alt, stopSequence}]; ok {
			return stopID, true
		}
	}
	return "", false
}

// IsKnownStopID reports whether stopID appears anywhere in the stop-time
// source. This is independent of the Stop entity list: a stop id can be known
// to schedules without a Stop record, and vice versa.
func (idx *StopTripIndex) IsKnownStopID(stopID string) bool {
	_, ok := idx.stopIDs[stopID]
	return ok
}
