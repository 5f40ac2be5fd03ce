package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can use strings like "250ms"
// or "1h". Bare integers are treated as nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %s", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds runtime configuration for the monitor.
type Config struct {
	// HTTP listen address
	HTTPAddr string `yaml:"http_addr"`

	// Log level (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Kafka settings for the outbound alert feed
	Kafka KafkaConfig `yaml:"kafka"`

	// Default anomaly thresholds, replaceable at runtime
	Thresholds ThresholdConfig `yaml:"thresholds"`

	// Expected cadence of the sensor feed
	ExpectedInterval Duration `yaml:"expected_interval"`

	// Dispatch pool sizing
	Dispatch DispatchConfig `yaml:"dispatch"`
}

// KafkaConfig holds connection and producer settings.
type KafkaConfig struct {
	Brokers  []string       `yaml:"brokers"`
	Topic    string         `yaml:"topic"`
	Producer ProducerConfig `yaml:"producer"`
}

// ProducerConfig tunes the Kafka writer pool.
type ProducerConfig struct {
	PoolSize     int      `yaml:"pool_size"`
	BatchSize    int      `yaml:"batch_size"`
	BatchTimeout Duration `yaml:"batch_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	RequiredAcks int      `yaml:"required_acks"`
	MaxRetries   int      `yaml:"max_retries"`
	RetryBackoff Duration `yaml:"retry_backoff"`
	Compression  string   `yaml:"compression"`
}

// ThresholdConfig holds the initial threshold set.
type ThresholdConfig struct {
	ErosionCritical float64 `yaml:"erosion_critical"`
	VegetationLow   float64 `yaml:"vegetation_low"`
	MoistureLow     float64 `yaml:"moisture_low"`
}

// DispatchConfig sizes the alert dispatch pool.
type DispatchConfig struct {
	Workers      int      `yaml:"workers"`
	QueueSize    int      `yaml:"queue_size"`
	BatchSize    int      `yaml:"batch_size"`
	BatchTimeout Duration `yaml:"batch_timeout"`
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		HTTPAddr: ":8080",
		LogLevel: "info",
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "terramon.alerts",
			Producer: ProducerConfig{
				PoolSize:     4,
				BatchSize:    100,
				BatchTimeout: Duration(100 * time.Millisecond),
				WriteTimeout: Duration(10 * time.Second),
				RequiredAcks: -1,
				MaxRetries:   3,
				RetryBackoff: Duration(100 * time.Millisecond),
				Compression:  "snappy",
			},
		},
		Thresholds: ThresholdConfig{
			ErosionCritical: 0.75,
			VegetationLow:   0.4,
			MoistureLow:     25,
		},
		ExpectedInterval: Duration(60 * time.Minute),
		Dispatch: DispatchConfig{
			Workers:      2,
			QueueSize:    1000,
			BatchSize:    50,
			BatchTimeout: Duration(250 * time.Millisecond),
		},
	}
}

// Load reads a YAML config file over the defaults, then applies env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides select fields from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("TERRAMON_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("TERRAMON_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TERRAMON_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TERRAMON_KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

func (c *Config) validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: at least one kafka broker is required")
	}
	if c.Kafka.Topic == "" {
		return fmt.Errorf("config: kafka topic is required")
	}
	if c.ExpectedInterval <= 0 {
		c.ExpectedInterval = Duration(60 * time.Minute)
	}
	return nil
}
