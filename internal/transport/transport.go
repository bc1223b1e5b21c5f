// Package transport provides abstractions for establishing the single
// stream connection a client talks to its server over.  Transports
// handle how bytes reach the server (plain TCP, an SSH tunnel, or a
// WebSocket gateway) independent of the line protocol carried on top.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound stream connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}

// RemoteResolver is implemented by dialers whose far end resolves
// hostnames, so the caller should pass names through unresolved.
type RemoteResolver interface {
	ResolvesRemotely() bool
}

// ResolvesRemotely reports whether d resolves hostnames itself.
func ResolvesRemotely(d Dialer) bool {
	rr, ok := d.(RemoteResolver)
	return ok && rr.ResolvesRemotely()
}
