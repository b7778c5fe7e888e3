package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the process metrics and the registry they live in.
type Collector struct {
	reg *prometheus.Registry

	RefreshCycles   prometheus.Counter
	RecordsMatched  prometheus.Counter
	RecordsDropped  prometheus.Counter
	SnapshotEntries prometheus.Gauge

	BoardRequests prometheus.Counter
	FetchErrors   *prometheus.CounterVec // feed label: trip_updates|vehicle_positions

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		RefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_refresh_cycles_total",
			Help: "Total realtime refresh cycles completed.",
		}),
		RecordsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_records_matched_total",
			Help: "Total realtime records matched to a scheduled trip.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_records_dropped_total",
			Help: "Total realtime records dropped as malformed or unresolved.",
		}),
		SnapshotEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_snapshot_entries",
			Help: "Predictions held by the current realtime snapshot.",
		}),
		BoardRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_board_requests_total",
			Help: "Total arrival board queries served.",
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrivals_fetch_errors_total",
			Help: "Total realtime feed fetch or decode failures.",
		}, []string{"feed"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_nats_published_total",
			Help: "Total NATS board messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.RefreshCycles, c.RecordsMatched, c.RecordsDropped, c.SnapshotEntries,
		c.BoardRequests, c.FetchErrors,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
