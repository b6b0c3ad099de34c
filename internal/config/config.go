package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	OutputDir    string
	StoreBackend string
	DatabaseURL  string

	DOFPageURL   string
	DOFKeyword   string
	NASRPageURL  string
	NASRKeyword  string
	UserAgent    string
	FetchTimeout time.Duration
	DOFEncoding  string
	APTEncoding  string
	MinAGL       int
	LayoutFile   string

	// NOTAM harvest; no locations disables it.
	NotamSearchURL string
	NotamLocations []string
	NotamTimeout   time.Duration

	// Publishing and metrics push are off unless configured.
	KafkaBrokers   []string
	KafkaTopic     string
	PushgatewayURL string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RunInterval     time.Duration
}

// PublishEnabled reports whether Kafka publishing is configured.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

// NotamEnabled reports whether any NOTAM location is configured.
func (c *Config) NotamEnabled() bool { return len(c.NotamLocations) > 0 }

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first when
// present; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "120s")
	if err != nil {
		return nil, err
	}
	notamTimeout, err := parsePositiveDuration("NOTAM_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	runInterval, err := parsePositiveDuration("RUN_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}
	minAGL, err := parseMinAGL()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OutputDir:    sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		StoreBackend: strings.ToLower(sharedcfg.EnvOrDefault("STORE_BACKEND", BackendFile)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		DOFPageURL:   sharedcfg.EnvOrDefault("DOF_PAGE_URL", "https://www.faa.gov/air_traffic/flight_info/aeronav/digital_products/dof/"),
		DOFKeyword:   sharedcfg.EnvOrDefault("DOF_KEYWORD", "dof"),
		NASRPageURL:  sharedcfg.EnvOrDefault("NASR_PAGE_URL", "https://www.faa.gov/air_traffic/flight_info/aeronav/aero_data/NASR_Subscription/"),
		NASRKeyword:  sharedcfg.EnvOrDefault("NASR_KEYWORD", "28DaySubscription"),
		UserAgent:    os.Getenv("USER_AGENT"),
		FetchTimeout: fetchTimeout,
		DOFEncoding:  sharedcfg.EnvOrDefault("DOF_ENCODING", "utf-8"),
		APTEncoding:  sharedcfg.EnvOrDefault("APT_ENCODING", "windows-1252"),
		MinAGL:       minAGL,
		LayoutFile:   os.Getenv("LAYOUT_FILE"),

		NotamSearchURL: sharedcfg.EnvOrDefault("NOTAM_SEARCH_URL", "https://notams.aim.faa.gov/notamSearch/search"),
		NotamLocations: sharedcfg.ParseBrokers(strings.ToUpper(os.Getenv("NOTAM_LOCATIONS"))),
		NotamTimeout:   notamTimeout,

		KafkaBrokers:   sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "obstacle-snapshots"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RunInterval:     runInterval,
	}

	switch cfg.StoreBackend {
	case BackendFile:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("STORE_BACKEND is postgres but DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be file or postgres", cfg.StoreBackend)
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseMinAGL() (int, error) {
	s := os.Getenv("MIN_AGL_FT")
	if s == "" {
		return 200, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid MIN_AGL_FT: must be a positive integer")
	}
	return n, nil
}
