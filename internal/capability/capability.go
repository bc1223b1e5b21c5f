// Package capability defines what happens over a started client.  Each
// Capability encapsulates a single behaviour (relay chat and server
// lines, probe a server) and operates on a Session rather than a raw
// client, which keeps capabilities testable and decoupled from how the
// connection was made.
package capability

import (
	"context"

	"craftlink/internal/session"
)

// Capability drives a started session.  Implementations include
// relaying terminal input and server lines (Relay) and waiting for the
// server's first lines (Probe).
type Capability interface {
	// Handle runs the capability against the given session.  It blocks
	// until the capability is done or the context is cancelled.
	Handle(ctx context.Context, sess *session.Session) error
}
