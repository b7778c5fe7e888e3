// Package gtfs holds the static side of the arrival board: the entity types
// loaded from a GTFS feed, the trip identifier normalizer that reconciles
// heterogeneous id namespaces, and the immutable lookup indices built from the
// loaded entities (TripIndex, StopTripIndex, ServiceCalendar, RouteTopology).
//
// Indices are built once from fully loaded entity lists and never mutated
// afterwards, so they are safe for unsynchronized concurrent reads.
package gtfs
