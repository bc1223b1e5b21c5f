// Package core is the orchestration layer.  It composes a client, a
// transport and a capability into complete operational modes and
// provides a builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  client  →  session  →  capability  →  core  →  cmd (CLI)
//
// The builder in this package is the single dispatch point between the
// parsed configuration and a running mode.
package core

import "context"

// Mode represents a complete operational mode of craftlink (play or
// probe).  Each mode owns its full lifecycle from connection
// establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
