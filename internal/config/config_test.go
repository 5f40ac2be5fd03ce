package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.Thresholds.ErosionCritical != 0.75 || cfg.Thresholds.VegetationLow != 0.4 || cfg.Thresholds.MoistureLow != 25 {
		t.Errorf("unexpected default thresholds: %+v", cfg.Thresholds)
	}
	if cfg.ExpectedInterval.Std() != 60*time.Minute {
		t.Errorf("expected 60m interval, got %v", cfg.ExpectedInterval.Std())
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		t.Errorf("kafka defaults missing: %+v", cfg.Kafka)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
http_addr: ":9090"
log_level: debug
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topic: alerts.v2
thresholds:
  moisture_low: 30
expected_interval: 30m
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected :9090, got %q", cfg.HTTPAddr)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Topic != "alerts.v2" {
		t.Errorf("kafka settings not applied: %+v", cfg.Kafka)
	}
	if cfg.Thresholds.MoistureLow != 30 {
		t.Errorf("expected moisture_low 30, got %v", cfg.Thresholds.MoistureLow)
	}
	if cfg.ExpectedInterval.Std() != 30*time.Minute {
		t.Errorf("expected 30m interval, got %v", cfg.ExpectedInterval.Std())
	}
	// Fields absent from the file keep defaults
	if cfg.Dispatch.Workers != 2 {
		t.Errorf("expected default dispatch workers, got %d", cfg.Dispatch.Workers)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TERRAMON_HTTP_ADDR", ":7070")
	t.Setenv("TERRAMON_KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.HTTPAddr != ":7070" {
		t.Errorf("expected env override, got %q", cfg.HTTPAddr)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "a:9092" {
		t.Errorf("broker override not applied: %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/no/such/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
