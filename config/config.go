// Package config defines the runtime configuration for craftlink and
// provides helpers for parsing tunnel specifications.
package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	cerr "craftlink/internal/errors"
)

// Config holds every tuneable for a single craftlink run.  Keys in the
// mapstructure tags are shared by config files, CRAFTLINK_* environment
// variables and (with dashes) CLI flags.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	Offline bool          `mapstructure:"offline"` // leave the client disabled
	NoDNS   bool          `mapstructure:"no_dns"`
	Timeout time.Duration `mapstructure:"timeout"` // dial timeout, 0 = none

	// ── Identity ─────────────────────────────────────────────────────
	Username        string `mapstructure:"username"`
	Token           string `mapstructure:"token"`
	ProtocolVersion int    `mapstructure:"protocol_version"`

	// ── Client ───────────────────────────────────────────────────────
	QueueSize int `mapstructure:"queue_size"`
	ChunkSize int `mapstructure:"chunk_size"`

	// ── Transport ────────────────────────────────────────────────────
	Tunnel         string `mapstructure:"tunnel"` // raw [user@]host[:port]
	SSHKeyPath     string `mapstructure:"ssh_key"`
	SSHPassword    bool   `mapstructure:"ssh_password"` // true → prompt interactively
	UseSSHAgent    bool   `mapstructure:"ssh_agent"`
	StrictHostKey  bool   `mapstructure:"strict_hostkey"`
	KnownHostsPath string `mapstructure:"known_hosts"`
	Gateway        string `mapstructure:"gateway"` // ws:// or wss:// URL

	// ── Modes ────────────────────────────────────────────────────────
	Probe     bool          `mapstructure:"probe"`
	ProbeWait time.Duration `mapstructure:"probe_wait"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose     int    `mapstructure:"verbose"`
	LogFile     string `mapstructure:"log_file"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	// ── Derived from Tunnel by Load ──────────────────────────────────
	TunnelEnabled bool   `mapstructure:"-"`
	TunnelUser    string `mapstructure:"-"`
	TunnelHost    string `mapstructure:"-"`
	TunnelPort    int    `mapstructure:"-"`
}

// Address returns the server as "host:port".
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ModeName names the mode Build will select.
func (c *Config) ModeName() string {
	if c.Probe {
		return "probe"
	}
	return "play"
}

// TransportName names the transport Build will use.
func (c *Config) TransportName() string {
	switch {
	case c.TunnelEnabled:
		return "ssh " + c.TunnelHost
	case c.Gateway != "":
		return "websocket " + c.Gateway
	}
	return "tcp"
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// expandTunnel fills the derived tunnel fields from Tunnel.
func (c *Config) expandTunnel() error {
	c.TunnelEnabled = false
	if c.Tunnel == "" {
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.Tunnel)
	if err != nil {
		return &cerr.ConfigError{
			Field:   "tunnel",
			Value:   c.Tunnel,
			Message: err.Error(),
			Hint:    "use --tunnel user@bastion.example.com:22",
		}
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Errors are *errors.ConfigError with a hint where one helps.
func (c *Config) Validate() error {
	if c.Host == "" && !c.Offline {
		return &cerr.ConfigError{
			Field:   "host",
			Message: "required unless --offline",
			Hint:    "usage: craftlink [flags] <host> [port]",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &cerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    fmt.Sprintf("the default server port is %d", DefaultPort),
		}
	}
	if c.Timeout < 0 {
		return &cerr.ConfigError{Field: "timeout", Value: c.Timeout, Message: "must not be negative"}
	}
	if c.ProtocolVersion < 1 {
		return &cerr.ConfigError{Field: "protocol-version", Value: c.ProtocolVersion, Message: "must be at least 1"}
	}
	if strings.ContainsAny(c.Username, ",\r\n") {
		return &cerr.ConfigError{
			Field:   "username",
			Value:   c.Username,
			Message: "must not contain commas or line breaks",
			Hint:    "the login line separates username and token with a comma",
		}
	}

	if c.QueueSize < 2 {
		return &cerr.ConfigError{Field: "queue-size", Value: c.QueueSize, Message: "must be at least 2 bytes"}
	}
	if c.ChunkSize < 1 || c.ChunkSize >= c.QueueSize {
		return &cerr.ConfigError{
			Field:   "chunk-size",
			Value:   c.ChunkSize,
			Message: fmt.Sprintf("must be between 1 and queue-size-1 (%d)", c.QueueSize-1),
			Hint:    "a single read must always fit an empty queue",
		}
	}

	if c.Tunnel != "" && c.Gateway != "" {
		return &cerr.ConfigError{
			Field:   "gateway",
			Value:   c.Gateway,
			Message: "cannot be combined with --tunnel",
			Hint:    "pick one transport: --tunnel for SSH, --gateway for WebSocket",
		}
	}
	if c.Tunnel != "" {
		if _, _, _, err := ParseTunnelSpec(c.Tunnel); err != nil {
			return &cerr.ConfigError{Field: "tunnel", Value: c.Tunnel, Message: err.Error()}
		}
	}
	if c.Gateway != "" {
		u, err := url.Parse(c.Gateway)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return &cerr.ConfigError{
				Field:   "gateway",
				Value:   c.Gateway,
				Message: "not a WebSocket URL",
				Hint:    "expected ws://host[:port]/path or wss://...",
			}
		}
	}

	if c.Probe && c.ProbeWait <= 0 {
		return &cerr.ConfigError{Field: "probe-wait", Value: c.ProbeWait, Message: "must be positive with --probe"}
	}
	if c.Verbose < 0 {
		return &cerr.ConfigError{Field: "verbose", Value: c.Verbose, Message: "must not be negative"}
	}
	return nil
}
