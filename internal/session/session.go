// Package session binds a started client to its local I/O endpoints.
//
// Sessions decouple capabilities from concrete I/O sources: a
// capability doesn't need to know whether lines come from a terminal or
// a test buffer, it just uses the session's Input and Output.
package session

import (
	"fmt"
	"io"

	"craftlink/client"
	"craftlink/util"
)

// Session encapsulates the runtime context for one connect/start
// cycle of a client.
type Session struct {
	Client *client.Client
	Input  util.LineReader // nil when the capability reads nothing
	Output io.Writer
	Logger *util.Logger
}

// New creates a Session for c with the given I/O pair.
func New(c *client.Client, input util.LineReader, output io.Writer, logger *util.Logger) *Session {
	return &Session{
		Client: c,
		Input:  input,
		Output: output,
		Logger: logger,
	}
}

// Drain extracts every complete line the client has received and
// writes them to Output unchanged.  It returns the number of lines
// written, 0 when nothing was pending.
func (s *Session) Drain() (int, error) {
	batch := s.Client.Extract()
	if batch == nil {
		return 0, nil
	}

	lines := client.SplitLines(batch)
	if s.Logger.Level() >= util.LogDebug {
		for _, line := range lines {
			tag, _ := client.ParseLine(line, 1)
			s.Logger.Debug("<- %s (%d bytes)", tag, len(line)+1)
		}
	}

	if _, err := s.Output.Write(batch); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}
	return len(lines), nil
}
