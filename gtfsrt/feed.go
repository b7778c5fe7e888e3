package gtfsrt

import (
	"fmt"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// DecodeTripUpdates parses a GTFS-RT FeedMessage and flattens every
// TripUpdate's stop-time updates into arrival records. Updates without a
// trip id, a stop id, or an arrival/departure prediction are skipped; an
// absent arrival falls back to the departure prediction.
func DecodeTripUpdates(b []byte) ([]ArrivalRecord, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("failed to decode trip updates feed: %w", err)
	}

	var records []ArrivalRecord
	for _, e := range fm.Entity {
		tu := e.TripUpdate
		if tu == nil || tu.Trip == nil || tu.Trip.TripId == nil {
			continue
		}
		tripID := tu.Trip.GetTripId()
		routeID := tu.Trip.GetRouteId()
		for _, stu := range tu.StopTimeUpdate {
			if stu.StopId == nil {
				continue
			}
			var when int64
			switch {
			case stu.Arrival != nil && stu.Arrival.Time != nil:
				when = stu.Arrival.GetTime()
			case stu.Departure != nil && stu.Departure.Time != nil:
				when = stu.Departure.GetTime()
			default:
				continue
			}
			records = append(records, ArrivalRecord{
				TripID:  tripID,
				RouteID: routeID,
				StopID:  stu.GetStopId(),
				Arrival: when,
			})
		}
	}
	return records, nil
}

// DecodeVehiclePositions parses a GTFS-RT FeedMessage into vehicle
// position records. Entities without a position are skipped.
func DecodeVehiclePositions(b []byte) ([]VehiclePosition, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("failed to decode vehicle positions feed: %w", err)
	}

	var positions []VehiclePosition
	for _, e := range fm.Entity {
		v := e.Vehicle
		if v == nil || v.Position == nil {
			continue
		}
		var pos VehiclePosition
		if v.Trip != nil {
			pos.TripID = v.Trip.GetTripId()
		}
		if v.Vehicle != nil {
			pos.VehicleID = v.Vehicle.GetId()
		}
		pos.Latitude = float64(v.Position.GetLatitude())
		pos.Longitude = float64(v.Position.GetLongitude())
		pos.StopSequence = int(v.GetCurrentStopSequence())
		positions = append(positions, pos)
	}
	return positions, nil
}

// FeedTimestamp returns the feed header timestamp, or zero when absent or
// the message does not decode.
func FeedTimestamp(b []byte) int64 {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return 0
	}
	if fm.Header == nil || fm.Header.Timestamp == nil {
		return 0
	}
	return int64(fm.Header.GetTimestamp())
}
