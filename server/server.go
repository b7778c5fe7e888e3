package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/citytransit/arrivals/gtfs"
	"github.com/citytransit/arrivals/resolver"
)

// Server exposes the arrival board and route query surfaces over HTTP.
type Server struct {
	resolver *resolver.ArrivalResolver
	trips    *gtfs.TripIndex
	topology *gtfs.RouteTopology
	mode     resolver.ConnectionMode
	metrics  http.Handler

	httpServer *http.Server
}

// New builds a server. metricsHandler may be nil; when set it is mounted
// at /metrics.
func New(port int, res *resolver.ArrivalResolver, trips *gtfs.TripIndex, topo *gtfs.RouteTopology, mode resolver.ConnectionMode, metricsHandler http.Handler) *Server {
	s := &Server{
		resolver: res,
		trips:    trips,
		topology: topo,
		mode:     mode,
		metrics:  metricsHandler,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/arrivals", s.handleArrivals)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/route-stops", s.handleRouteStops)
	mux.HandleFunc("/api/headsigns", s.handleHeadsigns)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routing mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", s.httpServer.Addr)
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
