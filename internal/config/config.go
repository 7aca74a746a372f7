// Package config loads the YAML configuration consumed by the serve
// subcommand: connection details for the external collaborators
// that sit outside the core engine (the Postgres-backed storage provider,
// the MQTT fact feed, and the clause-file watcher's debounce window).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of a logicdb config file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Watch    WatchConfig    `yaml:"watch"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PostgresConfig struct {
	DSN       string `yaml:"dsn"`
	Predicate string `yaml:"predicate"`
	Table     string `yaml:"table"`
}

type MQTTConfig struct {
	Broker string `yaml:"broker"`
	Topic  string `yaml:"topic"`
}

type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// defaults returns the zero-config shape used when no config file is given.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Watch:  WatchConfig{DebounceMS: 300},
	}
}

// Load reads and unmarshals a YAML config file at path. An empty path
// returns defaults without touching the filesystem.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
