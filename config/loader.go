package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort        = 16181
	defaultRefreshSec  = 30
	defaultTimeoutMS   = 10000
	defaultMode        = "online"
	defaultNATSSubject = "arrivals.board"
)

// Load reads, expands, and validates the application configuration. When
// path is empty it tries config.yml in the working directory. A .env file
// next to the process, if present, is loaded first so that ${VAR}
// references in the YAML can resolve against it.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	if path == "" {
		path = "config.yml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.GTFSRT.RefreshIntervalSec == 0 {
		cfg.GTFSRT.RefreshIntervalSec = defaultRefreshSec
	}
	if cfg.GTFSRT.TimeoutMS == 0 {
		cfg.GTFSRT.TimeoutMS = defaultTimeoutMS
	}
	if cfg.Resolver.Mode == "" {
		cfg.Resolver.Mode = defaultMode
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = defaultNATSSubject
	}
}
