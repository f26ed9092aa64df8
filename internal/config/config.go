package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Store backends accepted by STORE_BACKEND.
const (
	StoreKafka    = "kafka"
	StorePostgres = "postgres"
	StoreFile     = "file"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// CWA open-data API.
	CWABaseURL           string
	CWAAPIKey            string
	CWACurrentDataset    string
	CWAHistoricalDataset string
	CWATimeout           time.Duration
	CatalogCacheTTL      time.Duration

	StoreBackend       string
	KafkaBrokers       []string
	KafkaSnapshotTopic string
	KafkaHistoryTopic  string
	DatabaseURL        string
	FileStoreDir       string

	RunInterval time.Duration
	TriggeredBy string
	DedupEvents bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cwaTimeout, err := parsePositiveDuration("CWA_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseNonNegativeDuration("CATALOG_CACHE_TTL", "0s")
	if err != nil {
		return nil, err
	}

	runInterval, err := parseNonNegativeDuration("RUN_INTERVAL", "0s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CWABaseURL:           sharedcfg.EnvOrDefault("CWA_BASE_URL", "https://opendata.cwa.gov.tw/fileapi/v1/opendataapi"),
		CWAAPIKey:            os.Getenv("CWA_API_KEY"),
		CWACurrentDataset:    sharedcfg.EnvOrDefault("CWA_CURRENT_DATASET", "E-A0015-001"),
		CWAHistoricalDataset: sharedcfg.EnvOrDefault("CWA_HISTORICAL_DATASET", "E-A0073-001"),
		CWATimeout:           cwaTimeout,
		CatalogCacheTTL:      cacheTTL,

		StoreBackend:       strings.ToLower(sharedcfg.EnvOrDefault("STORE_BACKEND", StoreKafka)),
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "quake-probability-latest"),
		KafkaHistoryTopic:  sharedcfg.EnvOrDefault("KAFKA_HISTORY_TOPIC", "quake-run-history"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FileStoreDir:       sharedcfg.EnvOrDefault("FILE_STORE_DIR", "./data"),

		RunInterval: runInterval,
		TriggeredBy: sharedcfg.EnvOrDefault("TRIGGERED_BY", "system-automation"),
		DedupEvents: os.Getenv("DEDUP_EVENTS") == "true",

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.CWAAPIKey == "" {
		return nil, errors.New("CWA_API_KEY is required")
	}

	switch cfg.StoreBackend {
	case StoreKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSnapshotTopic == "" || cfg.KafkaHistoryTopic == "" {
			return nil, errors.New("KAFKA_SNAPSHOT_TOPIC and KAFKA_HISTORY_TOPIC are required")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("STORE_BACKEND is postgres but DATABASE_URL is not set")
		}
	case StoreFile:
		if cfg.FileStoreDir == "" {
			return nil, errors.New("FILE_STORE_DIR is required")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// RunOnce reports whether the service should perform a single run and exit.
func (c *Config) RunOnce() bool {
	return c.RunInterval == 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
