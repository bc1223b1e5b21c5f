package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"craftlink/internal/capability"
	"craftlink/internal/session"
	"craftlink/util"
)

// PlayMode connects, logs in, and relays between the terminal and the
// server until input ends or the context is cancelled.
type PlayMode struct {
	*link
	Relay *capability.Relay

	// Input/Output default to an interactive stdin reader and
	// os.Stdout when nil.  Override in tests for deterministic I/O.
	Input  util.LineReader
	Output io.Writer
}

func (m *PlayMode) input() (util.LineReader, error) {
	if m.Input != nil {
		return m.Input, nil
	}
	return util.StdinLines("> ")
}

func (m *PlayMode) output() io.Writer {
	if m.Output != nil {
		return m.Output
	}
	return os.Stdout
}

// Run opens the connection, hands the session to the relay, and stops
// the client when the relay returns.
func (m *PlayMode) Run(ctx context.Context) error {
	defer m.close()

	if err := m.open(ctx); err != nil {
		return err
	}

	in, err := m.input()
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	sess := session.New(m.client, in, m.output(), m.logger)
	return m.Relay.Handle(ctx, sess)
}
