package gtfs

import (
	"sort"
	"strings"
)

// RouteTopology is a secondary query surface over trips and stop-times for
// route-level path reconstruction: representative trip selection, ordered
// stop sequences, headsign enumeration.
type RouteTopology struct {
	trips       []Trip
	byRoute     map[string][]*Trip
	stopTimes   map[string][]StopTime // trip id -> entries sorted by stop sequence
	stopRecords map[string]Stop
}

// NewRouteTopology builds the topology from the full entity lists. Stop
// records are optional; stop ids present in schedules but absent from the stop
// list are surfaced as bare Stop values carrying only the id.
func NewRouteTopology(trips []Trip, stopTimes []StopTime, stops []Stop) *RouteTopology {
	rt := &RouteTopology{
		trips:       make([]Trip, len(trips)),
		byRoute:     map[string][]*Trip{},
		stopTimes:   map[string][]StopTime{},
		stopRecords: make(map[string]Stop, len(stops)),
	}
	copy(rt.trips, trips)
	for i := range rt.trips {
		t := &rt.trips[i]
		rt.byRoute[t.RouteID] = append(rt.byRoute[t.RouteID], t)
	}
	for _, st := range stopTimes {
		rt.stopTimes[st.TripID] = append(rt.stopTimes[st.TripID], st)
	}
	for tripID := range rt.stopTimes {
		list := rt.stopTimes[tripID]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].StopSequence < list[j].StopSequence
		})
	}
	for _, s := range stops {
		if _, dup := rt.stopRecords[s.StopID]; !dup {
			rt.stopRecords[s.StopID] = s
		}
	}
	return rt
}

// RepresentativeTrip returns the first trip on routeID whose headsign equals
// headsign case-insensitively; an empty headsign matches any trip.
func (rt *RouteTopology) RepresentativeTrip(routeID, headsign string) (*Trip, bool) {
	for _, t := range rt.byRoute[routeID] {
		if headsign == "" || strings.EqualFold(t.Headsign, headsign) {
			return t, true
		}
	}
	return nil, false
}

// TripsForRoute returns all trips on routeID in encounter order.
func (rt *RouteTopology) TripsForRoute(routeID string) []*Trip {
	return rt.byRoute[routeID]
}

// OrderedStopsForTrip returns the stops served by tripID, ordered by stop
// sequence. Unknown trips and trips without stop-times yield an empty list.
func (rt *RouteTopology) OrderedStopsForTrip(tripID string) []Stop {
	entries := rt.stopTimes[tripID]
	out := make([]Stop, 0, len(entries))
	for _, st := range entries {
		if s, ok := rt.stopRecords[st.StopID]; ok {
			out = append(out, s)
		} else {
			out = append(out, Stop{StopID: st.StopID})
		}
	}
	return out
}

// StopsForRoute returns the ordered stops of the route's longest trip. With no
// direction given, the trip with the most stop-time entries stands in for the
// full route; ties keep the first-encountered trip.
func (rt *RouteTopology) StopsForRoute(routeID string) []Stop {
	return rt.longestTripStops(routeID, "")
}

// StopsForRouteAndHeadsign is StopsForRoute restricted to trips whose headsign
// matches case-insensitively.
func (rt *RouteTopology) StopsForRouteAndHeadsign(routeID, headsign string) []Stop {
	return rt.longestTripStops(routeID, headsign)
}

func (rt *RouteTopology) longestTripStops(routeID, headsign string) []Stop {
	var best *Trip
	bestCount := -1
	for _, t := range rt.byRoute[routeID] {
		if headsign != "" && !strings.EqualFold(t.Headsign, headsign) {
			continue
		}
		if n := len(rt.stopTimes[t.TripID]); n > bestCount {
			best = t
			bestCount = n
		}
	}
	if best == nil {
		return nil
	}
	return rt.OrderedStopsForTrip(best.TripID)
}

// HeadsignsForRoute returns the distinct headsigns across the route's trips.
// Order is unspecified.
func (rt *RouteTopology) HeadsignsForRoute(routeID string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, t := range rt.byRoute[routeID] {
		if t.Headsign == "" {
			continue
		}
		if _, dup := seen[t.Headsign]; dup {
			continue
		}
		seen[t.Headsign] = struct{}{}
		out = append(out, t.Headsign)
	}
	return out
}
