package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/citytransit/arrivals/gtfs"
	"github.com/citytransit/arrivals/resolver"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type healthResponse struct {
	Status             string `json:"status"`
	RealtimeRecords    int    `json:"realtime_records"`
	LastRefreshedEpoch int64  `json:"last_refreshed_epoch"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:          "ok",
		RealtimeRecords: s.resolver.RealtimeCount(),
	}
	if t := s.resolver.LastUpdated(); !t.IsZero() {
		resp.LastRefreshedEpoch = t.Unix()
	}
	writeJSON(w, http.StatusOK, resp)
}

type arrivalsResponse struct {
	StopID   string   `json:"stopId"`
	Mode     string   `json:"mode"`
	Arrivals []string `json:"arrivals"`
}

func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	stopID := r.URL.Query().Get("stop")
	if stopID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing stop parameter"})
		return
	}
	mode := s.mode
	modeName := "online"
	if r.URL.Query().Get("mode") == "offline" || mode == resolver.Offline {
		mode = resolver.Offline
		modeName = "offline"
	}
	writeJSON(w, http.StatusOK, arrivalsResponse{
		StopID:   stopID,
		Mode:     modeName,
		Arrivals: s.resolver.GetArrivalsForStop(stopID, mode, time.Now()),
	})
}

type tripResult struct {
	RouteID   string `json:"routeId"`
	TripID    string `json:"tripId"`
	Headsign  string `json:"headsign"`
	ShortName string `json:"shortName,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	matches := s.trips.SearchByRouteOrHeadsign(query)
	results := make([]tripResult, 0, len(matches))
	for _, t := range matches {
		results = append(results, tripResult{
			RouteID:   t.RouteID,
			TripID:    t.TripID,
			Headsign:  t.Headsign,
			ShortName: t.ShortName,
		})
	}
	writeJSON(w, http.StatusOK, results)
}

type stopResult struct {
	StopID string  `json:"stopId"`
	Name   string  `json:"name,omitempty"`
	Lat    float64 `json:"lat,omitempty"`
	Lon    float64 `json:"lon,omitempty"`
}

func stopResults(stops []gtfs.Stop) []stopResult {
	out := make([]stopResult, 0, len(stops))
	for _, st := range stops {
		out = append(out, stopResult{StopID: st.StopID, Name: st.Name, Lat: st.Latitude, Lon: st.Longitude})
	}
	return out
}

func (s *Server) handleRouteStops(w http.ResponseWriter, r *http.Request) {
	routeID := r.URL.Query().Get("route")
	if routeID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing route parameter"})
		return
	}
	headsign := r.URL.Query().Get("headsign")
	var stops []gtfs.Stop
	if headsign != "" {
		stops = s.topology.StopsForRouteAndHeadsign(routeID, headsign)
	} else {
		stops = s.topology.StopsForRoute(routeID)
	}
	writeJSON(w, http.StatusOK, stopResults(stops))
}

func (s *Server) handleHeadsigns(w http.ResponseWriter, r *http.Request) {
	routeID := r.URL.Query().Get("route")
	if routeID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing route parameter"})
		return
	}
	headsigns := s.topology.HeadsignsForRoute(routeID)
	if headsigns == nil {
		headsigns = []string{}
	}
	writeJSON(w, http.StatusOK, headsigns)
}
