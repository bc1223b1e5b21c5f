package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultPort is the game server port.
	DefaultPort = 4080

	// DefaultProtocolVersion is announced with the V line after connect.
	DefaultProtocolVersion = 1

	// DefaultQueueSize is the receive queue capacity in bytes.
	DefaultQueueSize = 1 << 20

	// DefaultChunkSize is the largest single read from the server.
	DefaultChunkSize = 4096

	// DefaultPollInterval is how often play mode drains the receive
	// queue, about one game frame.
	DefaultPollInterval = 50 * time.Millisecond

	// DefaultProbeWait bounds how long probe mode waits for the first
	// server lines.
	DefaultProbeWait = 5 * time.Second

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout is the SSH handshake timeout.
	DefaultConnTimeout = 30 * time.Second

	// DefaultLogMaxSizeMB rotates --log-file at this size.
	DefaultLogMaxSizeMB = 10
)
