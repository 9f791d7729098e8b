/*
config.go - Server configuration

PURPOSE:
  Loads optional YAML configuration and merges it with command-line
  flags. Flags win over the file; the file wins over defaults. Keeping
  this in its own file keeps main.go down to wiring.

FORMAT (all keys optional):
  port: 8080
  db: ./data/habits.db
  log_file: ./logs/server.log
  remote_url: https://api.example.com
  probe_url: https://clients3.google.com/generate_204
  sync_interval: 5m
  probe_interval: 30s

SEE ALSO:
  - main.go: Applies the resolved configuration
*/
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved server configuration.
type Config struct {
	Port          int           `yaml:"port"`
	DBPath        string        `yaml:"db"`
	LogFile       string        `yaml:"log_file"`
	RemoteURL     string        `yaml:"remote_url"`
	ProbeURL      string        `yaml:"probe_url"`
	SyncInterval  time.Duration `yaml:"sync_interval"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port:          8080,
		DBPath:        "habits.db",
		ProbeURL:      "https://clients3.google.com/generate_204",
		SyncInterval:  5 * time.Minute,
		ProbeInterval: 30 * time.Second,
	}
}

// LoadConfig reads path into the defaults. A missing path is fine when
// the flag was left at its default; an unreadable or malformed file is
// an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
