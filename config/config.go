package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration settings.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Rating        RatingConfig        `yaml:"rating"`
	Jobs          JobsConfig          `yaml:"jobs"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// RatingConfig holds the league-level rating tunables threaded into the
// formulas and the aggregation limits.
type RatingConfig struct {
	DefaultRating    int `yaml:"default_rating"`
	KFactor          int `yaml:"k_factor"`
	RecentMatchLimit int `yaml:"recent_match_limit"`
	NemesisMinGames  int `yaml:"nemesis_min_games"`
}

// JobsConfig holds background-job configuration.
type JobsConfig struct {
	// ReconcileAfter is how long a match may sit in the rated state
	// before the sweep re-drives its statistics.
	ReconcileAfter time.Duration `yaml:"reconcile_after"`
	// ReconcileInterval is the sweep period.
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// ObservabilityConfig holds configuration for observability components.
type ObservabilityConfig struct {
	ServiceName     string  `yaml:"service_name"`
	Environment     string  `yaml:"environment"`
	LogLevel        string  `yaml:"log_level"`
	MetricsAddress  string  `yaml:"metrics_address"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is absent. Environment variables
// override file values either way.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Observability.TraceSampleRate = f
		}
	}
	if v := os.Getenv("RATING_DEFAULT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Rating.DefaultRating = n
		}
	}
	if v := os.Getenv("RATING_K_FACTOR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Rating.KFactor = n
		}
	}
	if v := os.Getenv("RECONCILE_AFTER"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Jobs.ReconcileAfter = d
		}
	}
	if v := os.Getenv("RECONCILE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Jobs.ReconcileInterval = d
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "sideout-backend"
	}
	if cfg.Observability.TraceSampleRate == 0 {
		cfg.Observability.TraceSampleRate = 0.1
	}
	if cfg.Observability.MetricsAddress == "" {
		cfg.Observability.MetricsAddress = ":9090"
	}
	if cfg.Rating.DefaultRating == 0 {
		cfg.Rating.DefaultRating = 1200
	}
	if cfg.Rating.KFactor == 0 {
		cfg.Rating.KFactor = 32
	}
	if cfg.Rating.RecentMatchLimit == 0 {
		cfg.Rating.RecentMatchLimit = 10
	}
	if cfg.Rating.NemesisMinGames == 0 {
		cfg.Rating.NemesisMinGames = 3
	}
	if cfg.Jobs.ReconcileAfter == 0 {
		cfg.Jobs.ReconcileAfter = 10 * time.Minute
	}
	if cfg.Jobs.ReconcileInterval == 0 {
		cfg.Jobs.ReconcileInterval = 5 * time.Minute
	}
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}
