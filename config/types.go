package config

// ServerConfig contains the HTTP API server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// GTFSConfig contains GTFS static feed configuration
type GTFSConfig struct {
	StaticPath string `yaml:"staticPath" validate:"required"`
	Timezone   string `yaml:"timezone"`
}

// GTFSRTConfig contains GTFS-Realtime feed configuration
type GTFSRTConfig struct {
	TripUpdatesURL      string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	RefreshIntervalSec  int    `yaml:"refreshIntervalSec" validate:"gte=0"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
}

// ResolverConfig controls how the arrival board is assembled
type ResolverConfig struct {
	Mode string `yaml:"mode" validate:"omitempty,oneof=online offline"`
}

// NATSConfig configures optional board publishing. Stops lists the stop ids
// whose boards are pushed after each refresh.
type NATSConfig struct {
	URL           string   `yaml:"url" validate:"omitempty,url"`
	SubjectPrefix string   `yaml:"subjectPrefix"`
	Stops         []string `yaml:"stops"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	GTFS     GTFSConfig     `yaml:"gtfs" validate:"required"`
	GTFSRT   GTFSRTConfig   `yaml:"gtfsrt"`
	Resolver ResolverConfig `yaml:"resolver"`
	NATS     NATSConfig     `yaml:"nats"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}
