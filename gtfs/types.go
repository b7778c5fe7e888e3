package gtfs

import (
	"fmt"
	"strconv"
	"strings"
)

// Trip corresponds to a row of trips.txt. TripID is the stable identity.
type Trip struct {
	RouteID     string
	ServiceID   string
	TripID      string
	Headsign    string
	ShortName   string
	DirectionID int
	ShapeID     string
}

// StopTime corresponds to a row of stop_times.txt. Arrival and Departure are
// nil when the source row leaves them blank.
type StopTime struct {
	TripID           string
	Arrival          *TimeOfDay
	Departure        *TimeOfDay
	StopID           string
	StopSequence     int
	Headsign         string
	PickupType       int
	DropOffType      int
	DistanceTraveled float64
	Timepoint        bool
}

// Stop corresponds to a row of stops.txt. SyntheticLine marks rows that stand
// in for a line rather than a physical location; such rows carry no
// coordinates in the source feed.
type Stop struct {
	StopID        string
	Code          string
	Name          string
	Latitude      float64
	Longitude     float64
	SyntheticLine bool
}

// ExceptionType is the calendar_dates.txt exception_type enum.
type ExceptionType int

const (
	ExceptionAdded   ExceptionType = 1
	ExceptionRemoved ExceptionType = 2
)

// ServiceException corresponds to a row of calendar_dates.txt. Date is in
// YYYYMMDD form, as in the source feed.
type ServiceException struct {
	ServiceID string
	Date      string
	Type      ExceptionType
}

// TimeOfDay is a schedule time expressed as seconds after midnight. Source
// values past 24:00:00 (service running over midnight) are normalized modulo
// 24 hours at parse time, so a TimeOfDay is always in [0, 86400).
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM:SS" or "HH:MM" schedule time. Hours may
// exceed 23 and are wrapped modulo 24.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("malformed time of day %q", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("malformed hour in %q", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("malformed minute in %q", raw)
	}
	s := 0
	if len(parts) == 3 {
		s, err = strconv.Atoi(parts[2])
		if err != nil || s < 0 || s > 59 {
			return 0, fmt.Errorf("malformed second in %q", raw)
		}
	}
	return TimeOfDay(((h%24)*60+m)*60 + s), nil
}

func (t TimeOfDay) Hour() int    { return int(t) / 3600 }
func (t TimeOfDay) Minute() int  { return (int(t) / 60) % 60 }
func (t TimeOfDay) Second() int  { return int(t) % 60 }
func (t TimeOfDay) Seconds() int { return int(t) }

// Clock renders the time as "HH:MM", the form shown on arrival boards.
func (t TimeOfDay) Clock() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}
