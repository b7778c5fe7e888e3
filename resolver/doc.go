// Package resolver merges the static timetable with the latest real-time
// snapshot into per-stop arrival boards.
//
// The static indices are read-only after construction. The real-time
// snapshot is the only mutable state: each refresh builds a complete new
// snapshot and publishes it with an atomic pointer swap, so concurrent
// readers always observe either the previous or the new snapshot in full.
package resolver
