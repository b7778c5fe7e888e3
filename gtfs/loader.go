package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// StaticData holds the entity lists loaded from a GTFS static feed. The lists
// feed the index constructors once at startup and are not touched afterwards.
type StaticData struct {
	Trips      []Trip
	StopTimes  []StopTime
	Stops      []Stop
	Exceptions []ServiceException
}

// LoadStaticZip reads trips.txt, stop_times.txt, stops.txt and
// calendar_dates.txt from a GTFS zip archive. A missing table yields an empty
// list; malformed rows are skipped with a diagnostic and never abort the load.
func LoadStaticZip(path string) (*StaticData, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open GTFS archive %s: %w", path, err)
	}
	defer zr.Close()

	data := &StaticData{}
	for _, f := range zr.File {
		name := strings.ToLower(filepath.Base(f.Name))
		if !isStaticTable(name) {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in %s: %w", f.Name, path, err)
		}
		err = data.consumeTable(name, r)
		r.Close()
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// LoadStaticDir reads the same tables from a directory of extracted .txt
// files. Missing files yield empty lists.
func LoadStaticDir(dir string) (*StaticData, error) {
	data := &StaticData{}
	for _, name := range []string{"trips.txt", "stop_times.txt", "stops.txt", "calendar_dates.txt"} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("open %s: %w", filepath.Join(dir, name), err)
		}
		err = data.consumeTable(name, f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// LoadStatic dispatches on path: a directory is read with LoadStaticDir,
// anything else as a zip archive.
func LoadStatic(path string) (*StaticData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat GTFS source %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadStaticDir(path)
	}
	return LoadStaticZip(path)
}

func isStaticTable(name string) bool {
	switch name {
	case "trips.txt", "stop_times.txt", "stops.txt", "calendar_dates.txt":
		return true
	}
	return false
}

func (d *StaticData) consumeTable(name string, r io.Reader) error {
	t, err := readTable(r, name)
	if err != nil {
		return err
	}
	switch name {
	case "trips.txt":
		d.Trips = parseTrips(t)
	case "stop_times.txt":
		d.StopTimes = parseStopTimes(t)
	case "stops.txt":
		d.Stops = parseStops(t)
	case "calendar_dates.txt":
		d.Exceptions = parseExceptions(t)
	}
	return nil
}

// table is a forgiving view over one CSV file: header columns are located
// case-insensitively and short rows read as blank fields rather than errors.
type table struct {
	src  string
	head []string
	rows [][]string
}

func readTable(r io.Reader, src string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src, err)
	}
	t := &table{src: src}
	if len(records) > 0 {
		t.head = records[0]
		t.rows = records[1:]
	}
	return t, nil
}

func (t *table) col(name string) int {
	for i, h := range t.head {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// line converts a row index to the 1-based source line for diagnostics.
func (t *table) line(rowIdx int) int { return rowIdx + 2 }

func parseTrips(t *table) []Trip {
	routeID := t.col("route_id")
	serviceID := t.col("service_id")
	tripID := t.col("trip_id")
	headsign := t.col("trip_headsign")
	shortName := t.col("trip_short_name")
	directionID := t.col("direction_id")
	shapeID := t.col("shape_id")

	var trips []Trip
	for i, row := range t.rows {
		id := field(row, tripID)
		if id == "" {
			log.Printf("%s:%d: skipping row without trip_id", t.src, t.line(i))
			continue
		}
		trip := Trip{
			RouteID:   field(row, routeID),
			ServiceID: field(row, serviceID),
			TripID:    id,
			Headsign:  field(row, headsign),
			ShortName: field(row, shortName),
			ShapeID:   field(row, shapeID),
		}
		if raw := field(row, directionID); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				log.Printf("%s:%d: skipping trip %q: bad direction_id %q", t.src, t.line(i), id, raw)
				continue
			}
			trip.DirectionID = v
		}
		trips = append(trips, trip)
	}
	return trips
}

func parseStopTimes(t *table) []StopTime {
	tripID := t.col("trip_id")
	arrival := t.col("arrival_time")
	departure := t.col("departure_time")
	stopID := t.col("stop_id")
	stopSequence := t.col("stop_sequence")
	headsign := t.col("stop_headsign")
	pickupType := t.col("pickup_type")
	dropOffType := t.col("drop_off_type")
	distTraveled := t.col("shape_dist_traveled")
	timepoint := t.col("timepoint")

	var stopTimes []StopTime
	for i, row := range t.rows {
		id := field(row, tripID)
		sid := field(row, stopID)
		if id == "" || sid == "" {
			log.Printf("%s:%d: skipping row without trip_id/stop_id", t.src, t.line(i))
			continue
		}
		seq, err := strconv.Atoi(field(row, stopSequence))
		if err != nil {
			log.Printf("%s:%d: skipping stop time for trip %q: bad stop_sequence %q",
				t.src, t.line(i), id, field(row, stopSequence))
			continue
		}
		st := StopTime{
			TripID:       id,
			StopID:       sid,
			StopSequence: seq,
			Headsign:     field(row, headsign),
		}
		st.Arrival, err = optionalTimeOfDay(field(row, arrival))
		if err != nil {
			log.Printf("%s:%d: skipping stop time for trip %q: %v", t.src, t.line(i), id, err)
			continue
		}
		st.Departure, err = optionalTimeOfDay(field(row, departure))
		if err != nil {
			log.Printf("%s:%d: skipping stop time for trip %q: %v", t.src, t.line(i), id, err)
			continue
		}
		if raw := field(row, pickupType); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				st.PickupType = v
			}
		}
		if raw := field(row, dropOffType); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				st.DropOffType = v
			}
		}
		if raw := field(row, distTraveled); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				st.DistanceTraveled = v
			}
		}
		st.Timepoint = field(row, timepoint) == "1"
		stopTimes = append(stopTimes, st)
	}
	return stopTimes
}

func optionalTimeOfDay(raw string) (*TimeOfDay, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseStops(t *table) []Stop {
	stopID := t.col("stop_id")
	code := t.col("stop_code")
	name := t.col("stop_name")
	lat := t.col("stop_lat")
	lon := t.col("stop_lon")

	var stops []Stop
	for i, row := range t.rows {
		id := field(row, stopID)
		if id == "" {
			log.Printf("%s:%d: skipping row without stop_id", t.src, t.line(i))
			continue
		}
		s := Stop{
			StopID: id,
			Code:   field(row, code),
			Name:   field(row, name),
		}
		latV, latErr := strconv.ParseFloat(field(row, lat), 64)
		lonV, lonErr := strconv.ParseFloat(field(row, lon), 64)
		if latErr != nil || lonErr != nil {
			// Rows without a location are line placeholders, not physical stops.
			s.SyntheticLine = true
		} else {
			s.Latitude = latV
			s.Longitude = lonV
		}
		stops = append(stops, s)
	}
	return stops
}

func parseExceptions(t *table) []ServiceException {
	serviceID := t.col("service_id")
	date := t.col("date")
	exceptionType := t.col("exception_type")

	var exceptions []ServiceException
	for i, row := range t.rows {
		id := field(row, serviceID)
		day := field(row, date)
		if id == "" || len(day) != 8 {
			log.Printf("%s:%d: skipping row with bad service_id/date", t.src, t.line(i))
			continue
		}
		if _, err := strconv.Atoi(day); err != nil {
			log.Printf("%s:%d: skipping row with non-numeric date %q", t.src, t.line(i), day)
			continue
		}
		typ, err := strconv.Atoi(field(row, exceptionType))
		if err != nil {
			log.Printf("%s:%d: skipping row with bad exception_type %q",
				t.src, t.line(i), field(row, exceptionType))
			continue
		}
		switch ExceptionType(typ) {
		case ExceptionAdded, ExceptionRemoved:
			exceptions = append(exceptions, ServiceException{ServiceID: id, Date: day, Type: ExceptionType(typ)})
		}
		// Other exception type values are ignored.
	}
	return exceptions
}
