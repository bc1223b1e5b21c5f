package config

import (
	"testing"
)

// ── ParseTunnelSpec ──────────────────────────────────────────────────

func TestParseTunnelSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "admin@bastion.example.com:2222", "admin", "bastion.example.com", 2222, false},
		{"no port", "root@gateway", "root", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

// TestParseTunnelSpec_EdgeCases covers additional tunnel specs.
func TestParseTunnelSpec_EdgeCases(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"user@host.with.dots:22", false},
		{"user@host-with-dashes", false},
		{"host:0", true},     // port 0 out of range
		{"host:65536", true}, // port too high
		{"user@", false},     // regex treats "user@" as hostname
		{":22", true},        // no host before colon
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, _, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTunnelSpec(%q) err = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// ── Derived fields ───────────────────────────────────────────────────

func TestExpandTunnel(t *testing.T) {
	cfg := &Config{Tunnel: "steve@bastion:2200"}
	if err := cfg.expandTunnel(); err != nil {
		t.Fatalf("expandTunnel: %v", err)
	}
	if !cfg.TunnelEnabled || cfg.TunnelUser != "steve" || cfg.TunnelHost != "bastion" || cfg.TunnelPort != 2200 {
		t.Errorf("got %+v", cfg)
	}

	cfg = &Config{Tunnel: "bad:spec:x"}
	if err := cfg.expandTunnel(); err == nil {
		t.Error("expected error for bad spec")
	}
	if cfg.TunnelEnabled {
		t.Error("tunnel should stay disabled")
	}
}

func TestConfig_Names(t *testing.T) {
	tests := []struct {
		name          string
		cfg           Config
		wantMode      string
		wantTransport string
	}{
		{"play over tcp", Config{}, "play", "tcp"},
		{"probe", Config{Probe: true}, "probe", "tcp"},
		{"ssh", Config{TunnelEnabled: true, TunnelHost: "gw"}, "play", "ssh gw"},
		{"websocket", Config{Gateway: "ws://gw/craft"}, "play", "websocket ws://gw/craft"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ModeName(); got != tt.wantMode {
				t.Errorf("ModeName() = %q, want %q", got, tt.wantMode)
			}
			if got := tt.cfg.TransportName(); got != tt.wantTransport {
				t.Errorf("TransportName() = %q, want %q", got, tt.wantTransport)
			}
		})
	}
}

func TestConfig_Address(t *testing.T) {
	if got := (&Config{Host: "craft.example.com", Port: 4080}).Address(); got != "craft.example.com:4080" {
		t.Errorf("got %q", got)
	}
	if got := (&Config{Host: "::1", Port: 4080}).Address(); got != "[::1]:4080" {
		t.Errorf("got %q", got)
	}
}
