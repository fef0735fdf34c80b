package config

import (
	"errors"
	"fmt"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Retrieval backends.
const (
	BackendDryRun = "dryrun"
	BackendKafka  = "kafka"
)

// Config holds process settings, populated from environment variables.
// Per-run inputs (dates, area, paths) come from command-line flags.
type Config struct {
	LogLevel        string
	LogFormat       string
	HTTPAddr        string // empty disables the health/metrics server
	ShutdownTimeout time.Duration

	RetrievalBackend string

	// Kafka hand-off of retrieval requests to the fetch workers.
	KafkaBrokers     []string
	KafkaPublicTopic string
	KafkaMarsTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ""),
		ShutdownTimeout:  shutdownTimeout,
		RetrievalBackend: sharedcfg.EnvOrDefault("RETRIEVAL_BACKEND", BackendDryRun),
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaPublicTopic: sharedcfg.EnvOrDefault("KAFKA_PUBLIC_TOPIC", "retrieval-public"),
		KafkaMarsTopic:   sharedcfg.EnvOrDefault("KAFKA_MARS_TOPIC", "retrieval-mars"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	switch cfg.RetrievalBackend {
	case BackendDryRun:
	case BackendKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaPublicTopic == "" {
			return nil, errors.New("KAFKA_PUBLIC_TOPIC is required")
		}
		if cfg.KafkaMarsTopic == "" {
			return nil, errors.New("KAFKA_MARS_TOPIC is required")
		}
	default:
		return nil, fmt.Errorf("invalid RETRIEVAL_BACKEND %q", cfg.RetrievalBackend)
	}

	return cfg, nil
}
