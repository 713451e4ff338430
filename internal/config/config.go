package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	LogMaxSizeMB    int
	LogMaxBackups   int
	ShutdownTimeout time.Duration

	// Classifier artifact.
	ModelPath           string
	ModelFormat         string
	ONNXRuntimeLib      string
	ModelPreload        bool
	PredictionCacheSize int

	// Stream scoring, off unless KAFKA_ENABLED=true.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseNonNegativeInt("PREDICTION_CACHE_SIZE", 1024)
	if err != nil {
		return nil, err
	}
	logMaxSize, err := parseNonNegativeInt("LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return nil, err
	}
	logMaxBackups, err := parseNonNegativeInt("LOG_MAX_BACKUPS", 3)
	if err != nil {
		return nil, err
	}

	preload, err := parseBool("MODEL_PRELOAD", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		LogMaxSizeMB:    logMaxSize,
		LogMaxBackups:   logMaxBackups,
		ShutdownTimeout: shutdownTimeout,

		ModelPath:           sharedcfg.EnvOrDefault("MODEL_PATH", "typhoid_rf_model.json"),
		ModelFormat:         os.Getenv("MODEL_FORMAT"),
		ONNXRuntimeLib:      os.Getenv("ONNX_RUNTIME_LIB"),
		ModelPreload:        preload,
		PredictionCacheSize: cacheSize,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "water-quality-assessments"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "outbreak-risk-predictions"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "swasthya-alert"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	switch cfg.ModelFormat {
	case "", "forest", "onnx":
	default:
		return nil, fmt.Errorf("invalid MODEL_FORMAT %q: want forest or onnx", cfg.ModelFormat)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a non-negative integer", key, s)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: want true or false", key, s)
	}
	return v, nil
}
