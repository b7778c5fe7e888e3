package gtfsrt

// ArrivalRecord is one real-time arrival prediction: a trip, as spelled by
// the feed provider, expected at a stop at an epoch instant.
type ArrivalRecord struct {
	TripID  string
	RouteID string
	StopID  string
	Arrival int64
}

// VehiclePosition is the current location of one vehicle. StopSequence
// points into the trip's static stop ordering when the feed supplies it.
type VehiclePosition struct {
	TripID       string
	VehicleID    string
	Latitude     float64
	Longitude    float64
	StopSequence int
}
