package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `engine:
  critical_mileage: 70000
  cleaning_days: 12
fleet:
  snapshot_path: "fleet.yaml"
  store: "sqlite"
http:
  address: ":9000"
  token: "secret"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic_prefix: "/depot/"
  qos:
    recommendation: 1
  use_tls: false
metrics:
  prometheus_port: ":9090"
  sinks:
    - type: "nop"
logging:
  backend: "rotating"
  path: "runs.jsonl"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"engine.critical_mileage", cfg.Engine.CriticalMileage, 70000.0},
		{"engine.cleaning_days", cfg.Engine.CleaningDays, 12},
		{"engine.ready_availability default", cfg.Engine.ReadyAvailability, 95.0},
		{"fleet.snapshot_path", cfg.Fleet.SnapshotPath, "fleet.yaml"},
		{"fleet.store", cfg.Fleet.Store, "sqlite"},
		{"fleet.database_path default", cfg.Fleet.DatabasePath, "railfleet.db"},
		{"http.address", cfg.HTTP.Address, ":9000"},
		{"http.token", cfg.HTTP.Token, "secret"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "depot"},
		{"qos", cfg.MQTT.QoS["recommendation"], byte(1)},
		{"max_retries default", cfg.MQTT.MaxRetries, 3},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9090"},
		{"logging.backend", cfg.Logging.Backend, "rotating"},
		{"logging.max_size_mb default", cfg.Logging.MaxSizeMB, 10},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"http":{"address":":8081"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_HTTP__ADDRESS", ":7070")
	t.Setenv("K_ENGINE__CERTIFICATE_WARNING_DAYS", "30")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.HTTP.Address != ":7070" {
		t.Fatalf("address override ignored: %s", cfg.HTTP.Address)
	}
	if cfg.Engine.CertificateWarningDays != 30 {
		t.Fatalf("engine override ignored: %d", cfg.Engine.CertificateWarningDays)
	}
	if cfg.Fleet.Store != "memory" || cfg.Logging.Path != "schedule_runs.jsonl" {
		t.Fatalf("defaults not applied: %+v %+v", cfg.Fleet, cfg.Logging)
	}
	if cfg.MQTT.Enabled() {
		t.Fatalf("mqtt should be disabled without a broker")
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"engine":  "engine:\n  ready_availability: 150\n",
		"store":   "fleet:\n  store: \"redis\"\n",
		"backend": "logging:\n  backend: \"kafka\"\n",
		"qos":     "mqtt:\n  broker: \"tcp://x:1883\"\n  qos:\n    status: 3\n",
		"mileage": "engine:\n  critical_mileage: 40000\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("unexpected address %s", cfg.HTTP.Address)
	}
}
