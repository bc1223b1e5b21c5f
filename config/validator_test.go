package config

import (
	"strings"
	"testing"
	"time"

	cerr "craftlink/internal/errors"
)

// valid returns a configuration that passes Validate.
func valid() Config {
	return Config{
		Host:            "craft.example.com",
		Port:            DefaultPort,
		ProtocolVersion: DefaultProtocolVersion,
		QueueSize:       DefaultQueueSize,
		ChunkSize:       DefaultChunkSize,
		ProbeWait:       DefaultProbeWait,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // config key of the expected error, "" for none
	}{
		{"defaults", func(*Config) {}, ""},
		{"offline without host", func(c *Config) { c.Host = ""; c.Offline = true }, ""},
		{"no host", func(c *Config) { c.Host = "" }, "host"},
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port high", func(c *Config) { c.Port = 70000 }, "port"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"protocol version zero", func(c *Config) { c.ProtocolVersion = 0 }, "protocol-version"},
		{"comma in username", func(c *Config) { c.Username = "a,b" }, "username"},
		{"newline in username", func(c *Config) { c.Username = "a\n" }, "username"},
		{"tiny queue", func(c *Config) { c.QueueSize = 1 }, "queue-size"},
		{"chunk fills queue", func(c *Config) { c.QueueSize = 64; c.ChunkSize = 64 }, "chunk-size"},
		{"chunk zero", func(c *Config) { c.ChunkSize = 0 }, "chunk-size"},
		{"smallest queue", func(c *Config) { c.QueueSize = 2; c.ChunkSize = 1 }, ""},
		{"tunnel", func(c *Config) { c.Tunnel = "u@gw" }, ""},
		{"bad tunnel", func(c *Config) { c.Tunnel = "u@gw:0" }, "tunnel"},
		{"gateway", func(c *Config) { c.Gateway = "wss://gw.example.com/craft" }, ""},
		{"gateway http", func(c *Config) { c.Gateway = "http://gw.example.com" }, "gateway"},
		{"gateway and tunnel", func(c *Config) { c.Gateway = "ws://gw"; c.Tunnel = "gw" }, "gateway"},
		{"probe without wait", func(c *Config) { c.Probe = true; c.ProbeWait = 0 }, "probe-wait"},
		{"negative verbose", func(c *Config) { c.Verbose = -1 }, "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ce *cerr.ConfigError
			if !cerr.As(err, &ce) {
				t.Fatalf("want *ConfigError, got %v", err)
			}
			if ce.Field != tt.wantErr {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantErr)
			}
		})
	}
}

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"missing host has usage hint", func(c *Config) { c.Host = "" }, "hint: usage: craftlink"},
		{"port hint names default", func(c *Config) { c.Port = 0 }, "4080"},
		{"chunk size names limit", func(c *Config) { c.QueueSize = 16; c.ChunkSize = 20 }, "(15)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}
