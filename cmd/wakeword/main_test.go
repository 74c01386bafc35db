package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hollis/wakeword/internal/config"
)

func TestApplyOverridesEmptyFlagsKeepConfig(t *testing.T) {
	cfg := config.Default()
	got := applyOverrides(cfg, "", "", "")
	if got != cfg {
		t.Errorf("empty flags must not change config: got %+v, want %+v", got, cfg)
	}
}

func TestApplyOverridesFlagsWin(t *testing.T) {
	cfg := config.Default()
	cfg.Broker = "tcp://from-file:1883"
	cfg.LogLevel = "debug"

	got := applyOverrides(cfg, "tcp://from-flag:1883", ":9999", "warn")
	if got.Broker != "tcp://from-flag:1883" {
		t.Errorf("Broker: got %q, want flag value", got.Broker)
	}
	if got.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr: got %q, want flag value", got.HTTPAddr)
	}
	if got.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want flag value", got.LogLevel)
	}
	if got.TopicPrefix != cfg.TopicPrefix {
		t.Errorf("TopicPrefix: got %q, must be untouched", got.TopicPrefix)
	}
}

func TestConfigPrecedenceDefaultsFileFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wakeword.yaml")
	data := []byte("broker: tcp://from-file:1883\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg = applyOverrides(cfg, "tcp://from-flag:1883", "", "")

	// Flag beats file.
	if cfg.Broker != "tcp://from-flag:1883" {
		t.Errorf("Broker: got %q, want flag value", cfg.Broker)
	}
	// File beats default where no flag is set.
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want file value", cfg.LogLevel)
	}
	// Default survives where neither file nor flag says otherwise.
	if cfg.TopicPrefix != config.Default().TopicPrefix {
		t.Errorf("TopicPrefix: got %q, want default", cfg.TopicPrefix)
	}
}
