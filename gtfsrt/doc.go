// Package gtfsrt fetches and decodes GTFS-Realtime protobuf feeds.
//
// It supports two feed types:
//   - Trip Updates: real-time arrival predictions per trip and stop
//   - Vehicle Positions: current vehicle locations
//
// Decoding flattens the protobuf messages into plain record slices; all
// trip ids are passed through as spelled by the provider and matched
// against the static timetable elsewhere.
package gtfsrt
