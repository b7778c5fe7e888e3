package gtfs

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeStaticDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadStaticDir(t *testing.T) {
	dir := writeStaticDir(t, map[string]string{
		"trips.txt": "route_id,service_id,trip_id,trip_headsign,direction_id\n" +
			"88,WK,T1,Airport,0\n" +
			"88,WK,,Ghost,0\n" + // no trip_id: skipped
			"88,WK,T2,Center,1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:33:00,08:33:30,STOP_1,1\n" +
			"T1,25:10:00,25:11:00,STOP_2,2\n" + // over-24h time wraps
			"T1,bogus,08:40:00,STOP_3,3\n" + // unparsable time: skipped
			"T2,,09:00:00,STOP_1,1\n",
		"stops.txt": "stop_id,stop_code,stop_name,stop_lat,stop_lon\n" +
			"STOP_1,1001,Central,42.69,23.32\n" +
			"LINE_88,,Line 88,,\n", // no coordinates: line placeholder
		"calendar_dates.txt": "service_id,date,exception_type\n" +
			"WK,20260828,1\n" +
			"WK,20260829,2\n" +
			"WK,2026083,1\n" + // bad date: skipped
			"WK,20260830,9\n", // unknown type: ignored
	})

	data, err := LoadStaticDir(dir)
	if err != nil {
		t.Fatalf("LoadStaticDir: %v", err)
	}

	if len(data.Trips) != 2 {
		t.Errorf("loaded %d trips, want 2", len(data.Trips))
	}
	if len(data.StopTimes) != 3 {
		t.Fatalf("loaded %d stop times, want 3", len(data.StopTimes))
	}
	wrapped := data.StopTimes[1]
	if wrapped.Arrival == nil || wrapped.Arrival.Hour() != 1 || wrapped.Arrival.Minute() != 10 {
		t.Errorf("over-24h arrival not wrapped: %+v", wrapped.Arrival)
	}
	if data.StopTimes[2].Arrival != nil {
		t.Errorf("blank arrival parsed as %v, want nil", data.StopTimes[2].Arrival)
	}

	if len(data.Stops) != 2 {
		t.Fatalf("loaded %d stops, want 2", len(data.Stops))
	}
	if data.Stops[0].SyntheticLine {
		t.Error("stop with coordinates flagged as line placeholder")
	}
	if !data.Stops[1].SyntheticLine {
		t.Error("stop without coordinates not flagged as line placeholder")
	}

	if len(data.Exceptions) != 2 {
		t.Fatalf("loaded %d exceptions, want 2: %+v", len(data.Exceptions), data.Exceptions)
	}
	if data.Exceptions[0].Type != ExceptionAdded || data.Exceptions[1].Type != ExceptionRemoved {
		t.Errorf("exception types wrong: %+v", data.Exceptions)
	}
}

func TestLoadStaticDirMissingFiles(t *testing.T) {
	dir := writeStaticDir(t, map[string]string{
		"trips.txt": "route_id,service_id,trip_id\n88,WK,T1\n",
	})
	data, err := LoadStaticDir(dir)
	if err != nil {
		t.Fatalf("LoadStaticDir: %v", err)
	}
	if len(data.Trips) != 1 {
		t.Errorf("loaded %d trips, want 1", len(data.Trips))
	}
	if len(data.StopTimes) != 0 || len(data.Stops) != 0 || len(data.Exceptions) != 0 {
		t.Error("missing tables should load as empty lists")
	}
}

func TestLoadStaticZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"trips.txt": "route_id,service_id,trip_id\n12,SU,H1\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\nD,Docks,42.1,23.4\n",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := LoadStatic(path)
	if err != nil {
		t.Fatalf("LoadStatic: %v", err)
	}
	if len(data.Trips) != 1 || data.Trips[0].TripID != "H1" {
		t.Errorf("zip trips = %+v", data.Trips)
	}
	if len(data.Stops) != 1 || data.Stops[0].Name != "Docks" {
		t.Errorf("zip stops = %+v", data.Stops)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"08:33:00", "08:33:00", false},
		{"8:05:09", "08:05:09", false},
		{"24:00:00", "00:00:00", false},
		{"25:10:30", "01:10:30", false},
		{"08:33", "08:33:00", false},
		{"", "", true},
		{"8h30", "", true},
		{"08:61:00", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error, got %v", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tt.raw, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
