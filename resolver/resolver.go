package resolver

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/citytransit/arrivals/gtfs"
	"github.com/citytransit/arrivals/gtfsrt"
)

// ConnectionMode selects whether real-time annotations are attempted.
type ConnectionMode int

const (
	// Online merges real-time predictions into the board.
	Online ConnectionMode = iota
	// Offline renders scheduled times only.
	Offline
)

// ParseMode maps the config spelling to a ConnectionMode. Anything other
// than "offline" is treated as online.
func ParseMode(s string) ConnectionMode {
	if s == "offline" {
		return Offline
	}
	return Online
}

// Metrics is the narrow instrumentation surface the resolver reports to.
// A nil Metrics disables reporting.
type Metrics interface {
	RefreshObserved(matched, dropped int)
	SnapshotSize(n int)
	BoardRequestInc()
}

// snapshotKey identifies one prediction: the matched static trip identity
// (never the raw feed spelling) at one stop.
type snapshotKey struct {
	tripID string
	stopID string
}

type snapshot struct {
	arrivals map[snapshotKey]int64
	updated  time.Time
}

// ArrivalResolver combines the static indices with a periodically replaced
// real-time snapshot. Safe for concurrent use: one writer calling
// UpdateRealtimeArrivals, any number of readers.
type ArrivalResolver struct {
	trips    *gtfs.TripIndex
	stops    *gtfs.StopTripIndex
	calendar *gtfs.ServiceCalendar
	loc      *time.Location
	metrics  Metrics

	snap atomic.Pointer[snapshot]
}

// New builds a resolver over the given static indices. loc is the feed's
// local time zone; nil means time.Local. metrics may be nil.
func New(trips *gtfs.TripIndex, stops *gtfs.StopTripIndex, calendar *gtfs.ServiceCalendar, loc *time.Location, metrics Metrics) *ArrivalResolver {
	if loc == nil {
		loc = time.Local
	}
	r := &ArrivalResolver{
		trips:    trips,
		stops:    stops,
		calendar: calendar,
		loc:      loc,
		metrics:  metrics,
	}
	r.snap.Store(&snapshot{arrivals: map[snapshotKey]int64{}})
	return r
}

// UpdateRealtimeArrivals replaces the current snapshot with one built from
// records. Each record's trip id is resolved against the static timetable;
// records that do not resolve, or that lack a stop id, are dropped and
// never attached to another trip on the same route and stop.
func (r *ArrivalResolver) UpdateRealtimeArrivals(records []gtfsrt.ArrivalRecord) {
	next := &snapshot{
		arrivals: make(map[snapshotKey]int64, len(records)),
		updated:  time.Now(),
	}
	dropped := 0
	for _, rec := range records {
		if rec.StopID == "" || rec.Arrival == 0 {
			dropped++
			continue
		}
		trip, ok := r.trips.MatchByTripID(rec.TripID)
		if !ok {
			dropped++
			continue
		}
		next.arrivals[snapshotKey{tripID: trip.TripID, stopID: rec.StopID}] = rec.Arrival
	}
	r.snap.Store(next)

	if r.metrics != nil {
		r.metrics.RefreshObserved(len(next.arrivals), dropped)
		r.metrics.SnapshotSize(len(next.arrivals))
	}
}

// LastUpdated reports when the current snapshot was published; zero before
// the first update.
func (r *ArrivalResolver) LastUpdated() time.Time {
	return r.snap.Load().updated
}

// RealtimeCount reports how many predictions the current snapshot holds.
func (r *ArrivalResolver) RealtimeCount() int {
	return len(r.snap.Load().arrivals)
}

type boardEntry struct {
	sched   gtfs.TimeOfDay
	routeID string
	head    string
	delta   *int
}

// GetArrivalsForStop renders the arrival board for a stop at the given
// reference instant. Entries are sorted ascending by scheduled time and
// formatted as "<HH:MM> | <routeId> - <headsign>", with a
// " [<sign><minutes> min]" suffix when a real-time prediction matched.
// An unknown stop, or one with no service on the derived date, yields an
// empty list.
func (r *ArrivalResolver) GetArrivalsForStop(stopID string, mode ConnectionMode, now time.Time) []string {
	if r.metrics != nil {
		r.metrics.BoardRequestInc()
	}

	local := now.In(r.loc)
	date := local.Format("20060102")
	year, month, day := local.Date()

	snap := r.snap.Load()

	var entries []boardEntry
	for _, st := range r.stops.StopTimesFor(stopID) {
		trip, ok := r.trips.MatchByTripID(st.TripID)
		if !ok {
			continue
		}
		if !r.calendar.RunsOn(trip.ServiceID, date) {
			continue
		}
		sched := st.Arrival
		if sched == nil {
			sched = st.Departure
		}
		if sched == nil {
			continue
		}

		e := boardEntry{sched: *sched, routeID: trip.RouteID, head: trip.Headsign}
		if st.Headsign != "" {
			e.head = st.Headsign
		}
		if mode == Online {
			if rt, ok := snap.arrivals[snapshotKey{tripID: trip.TripID, stopID: stopID}]; ok {
				schedInstant := time.Date(year, month, day, 0, 0, sched.Seconds(), 0, r.loc)
				d := int(math.Round(float64(rt-schedInstant.Unix()) / 60.0))
				e.delta = &d
			}
		}
		entries = append(entries, e)
	}

	// The per-stop list is already ordered by arrival; departure fallbacks
	// may land out of place, so re-sort. Stable keeps the original
	// stop-time ordering for ties.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].sched < entries[j].sched })

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("%s | %s - %s", e.sched.Clock(), e.routeID, e.head)
		if e.delta != nil {
			line += fmt.Sprintf(" [%+d min]", *e.delta)
		}
		out = append(out, line)
	}
	return out
}
