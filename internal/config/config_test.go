package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaultsOnEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	want := defaults()
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "logicdb.yaml")

	content := `server:
  addr: ":9090"
postgres:
  dsn: "postgres://localhost:5432/logicdb"
  predicate: "sensor"
  table: "sensor_facts"
mqtt:
  broker: "tcp://localhost:1883"
  topic: "logicdb/facts"
watch:
  debounce_ms: 50
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Server:   ServerConfig{Addr: ":9090"},
		Postgres: PostgresConfig{DSN: "postgres://localhost:5432/logicdb", Predicate: "sensor", Table: "sensor_facts"},
		MQTT:     MQTTConfig{Broker: "tcp://localhost:1883", Topic: "logicdb/facts"},
		Watch:    WatchConfig{DebounceMS: 50},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load(%s) mismatch (-want +got):\n%s", path, diff)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/logicdb.yaml")
	if err == nil {
		t.Error("expected an error for a missing config file")
	}
}
