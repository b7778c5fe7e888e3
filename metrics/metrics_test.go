package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollectorExposition(t *testing.T) {
	c := NewCollector()
	c.RefreshCycles.Inc()
	c.RecordsMatched.Add(12)
	c.RecordsDropped.Add(3)
	c.SnapshotEntries.Set(12)
	c.FetchErrors.WithLabelValues("trip_updates").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"arrivals_refresh_cycles_total 1",
		"arrivals_records_matched_total 12",
		"arrivals_records_dropped_total 3",
		"arrivals_snapshot_entries 12",
		`arrivals_fetch_errors_total{feed="trip_updates"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
