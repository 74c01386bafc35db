// Package config loads daemon configuration: built-in defaults, overridden
// by an optional YAML file, overridden by flags in main.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Delivery selects how the platform service delivers the alarm.
type Delivery struct {
	Sound   bool `yaml:"sound"`
	Vibrate bool `yaml:"vibrate"`
	Notify  bool `yaml:"notify"`
}

// Config is the daemon configuration.
type Config struct {
	Broker      string   `yaml:"broker"`
	ClientID    string   `yaml:"client_id"`
	TopicPrefix string   `yaml:"topic_prefix"`
	HTTPAddr    string   `yaml:"http_addr"`
	AudioRef    string   `yaml:"audio_ref"`
	Delivery    Delivery `yaml:"delivery"`
	LogLevel    string   `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Broker:      "tcp://localhost:1883",
		ClientID:    "wakeword",
		TopicPrefix: "alarm/svc",
		HTTPAddr:    ":8080",
		AudioRef:    "default",
		Delivery:    Delivery{Sound: true, Vibrate: true, Notify: true},
		LogLevel:    "info",
	}
}

// Load returns the defaults merged with the YAML file at path. An empty
// path falls back to the WAKEWORD_CONFIG env var; if that is also empty,
// the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("WAKEWORD_CONFIG")
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
