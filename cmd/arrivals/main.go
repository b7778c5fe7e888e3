package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/citytransit/arrivals/config"
	"github.com/citytransit/arrivals/gtfs"
	"github.com/citytransit/arrivals/gtfsrt"
	"github.com/citytransit/arrivals/internal"
	"github.com/citytransit/arrivals/metrics"
	"github.com/citytransit/arrivals/publisher"
	"github.com/citytransit/arrivals/resolver"
	"github.com/citytransit/arrivals/server"
)

func main() {
	internal.InitLogging()

	app := &cli.App{
		Name:  "arrivals",
		Usage: "resolve live arrival boards from GTFS and GTFS-RT feeds",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				Value:   "config.yml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API with a periodic realtime refresh",
				Action: runServe,
			},
			{
				Name:      "board",
				Usage:     "print the arrival board for one stop and exit",
				ArgsUsage: "stop-id",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "skip the realtime fetch and show scheduled times only",
					},
				},
				Action: runBoard,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// staticIndices is everything built once from the static feed.
type staticIndices struct {
	trips    *gtfs.TripIndex
	stops    *gtfs.StopTripIndex
	calendar *gtfs.ServiceCalendar
	topology *gtfs.RouteTopology
	loc      *time.Location
}

func buildStatic(cfg *config.AppConfig) (*staticIndices, error) {
	data, err := gtfs.LoadStatic(cfg.GTFS.StaticPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load static feed: %w", err)
	}
	loc := time.Local
	if cfg.GTFS.Timezone != "" {
		loc, err = time.LoadLocation(cfg.GTFS.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.GTFS.Timezone, err)
		}
	}
	s := &staticIndices{
		trips:    gtfs.NewTripIndex(data.Trips),
		stops:    gtfs.NewStopTripIndex(data.StopTimes),
		calendar: gtfs.NewServiceCalendar(data.Exceptions),
		topology: gtfs.NewRouteTopology(data.Trips, data.StopTimes, data.Stops),
		loc:      loc,
	}
	log.Printf("static feed loaded: %d trips, %d stop times", s.trips.Len(), len(data.StopTimes))
	return s, nil
}

func refreshOnce(ctx context.Context, client *gtfsrt.Client, url string, res *resolver.ArrivalResolver, mcol *metrics.Collector) error {
	b, err := client.Fetch(ctx, url)
	if err != nil {
		if mcol != nil {
			mcol.FetchErrors.WithLabelValues("trip_updates").Inc()
		}
		return err
	}
	if b == nil {
		return nil
	}
	records, err := gtfsrt.DecodeTripUpdates(b)
	if err != nil {
		if mcol != nil {
			mcol.FetchErrors.WithLabelValues("trip_updates").Inc()
		}
		return err
	}
	res.UpdateRealtimeArrivals(records)
	if mcol != nil {
		mcol.RefreshCycles.Inc()
	}
	return nil
}

func runServe(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	static, err := buildStatic(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var mcol *metrics.Collector
	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		mcol = metrics.NewCollector()
		metricsSrv = mcol.Serve(cfg.Metrics.Addr)
	}

	res := resolver.New(static.trips, static.stops, static.calendar, static.loc, wrapResolverMetrics(mcol))
	mode := resolver.ParseMode(cfg.Resolver.Mode)

	var pub *publisher.BoardPublisher
	if cfg.NATS.URL != "" {
		pub, err = publisher.NewBoardPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, wrapPublisherMetrics(mcol))
		if err != nil {
			return err
		}
		defer pub.Close()
	}

	if mode == resolver.Online && cfg.GTFSRT.TripUpdatesURL != "" {
		client := gtfsrt.NewClient(time.Duration(cfg.GTFSRT.TimeoutMS) * time.Millisecond)
		interval := time.Duration(cfg.GTFSRT.RefreshIntervalSec) * time.Second
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				if err := refreshOnce(ctx, client, cfg.GTFSRT.TripUpdatesURL, res, mcol); err != nil {
					log.Printf("realtime refresh failed: %v", err)
				} else if pub != nil {
					publishBoards(pub, res, mode, cfg.NATS.Stops)
				}
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	} else {
		log.Printf("realtime refresh disabled (mode=%s)", cfg.Resolver.Mode)
	}

	srv := server.New(cfg.Server.Port, res, static.trips, static.topology, mode, metricsHandlerOf(mcol))
	srv.Start()

	<-ctx.Done()
	log.Printf("shutdown signal received")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

func publishBoards(pub *publisher.BoardPublisher, res *resolver.ArrivalResolver, mode resolver.ConnectionMode, stops []string) {
	now := time.Now()
	for _, stopID := range stops {
		if err := pub.PublishBoard(stopID, res.GetArrivalsForStop(stopID, mode, now)); err != nil {
			log.Printf("board publish failed for stop %s: %v", stopID, err)
		}
	}
}

func runBoard(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("a stop id was not provided")
	}
	stopID := c.Args().First()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	static, err := buildStatic(cfg)
	if err != nil {
		return err
	}
	res := resolver.New(static.trips, static.stops, static.calendar, static.loc, nil)

	mode := resolver.ParseMode(cfg.Resolver.Mode)
	if c.Bool("offline") {
		mode = resolver.Offline
	}
	if mode == resolver.Online && cfg.GTFSRT.TripUpdatesURL != "" {
		client := gtfsrt.NewClient(time.Duration(cfg.GTFSRT.TimeoutMS) * time.Millisecond)
		if err := refreshOnce(context.Background(), client, cfg.GTFSRT.TripUpdatesURL, res, nil); err != nil {
			log.Printf("realtime fetch failed, showing scheduled times: %v", err)
		}
	}

	lines := res.GetArrivalsForStop(stopID, mode, time.Now())
	if len(lines) == 0 {
		fmt.Printf("No arrivals for stop %s\n", stopID)
		return nil
	}
	hc := color.New(color.FgCyan)
	lc := color.New(color.FgGreen)
	hc.Printf("Arrivals for stop %s\n", stopID)
	for _, line := range lines {
		lc.Println(line)
	}
	return nil
}

func metricsHandlerOf(c *metrics.Collector) http.Handler {
	if c == nil {
		return nil
	}
	return c.Handler()
}

// wrapResolverMetrics adapts the Collector to the resolver's interface.
func wrapResolverMetrics(c *metrics.Collector) resolver.Metrics {
	if c == nil {
		return nil
	}
	return &resMetrics{c: c}
}

type resMetrics struct{ c *metrics.Collector }

func (m *resMetrics) RefreshObserved(matched, dropped int) {
	m.c.RecordsMatched.Add(float64(matched))
	m.c.RecordsDropped.Add(float64(dropped))
}
func (m *resMetrics) SnapshotSize(n int) { m.c.SnapshotEntries.Set(float64(n)) }
func (m *resMetrics) BoardRequestInc()   { m.c.BoardRequests.Inc() }

// wrapPublisherMetrics adapts the Collector to the publisher's interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()  { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc() { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) NATSSetConnected(conn bool) {
	if conn {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
