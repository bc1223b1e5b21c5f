package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"craftlink/internal/capability"
	"craftlink/internal/session"
)

// ProbeMode connects, logs in, prints the server's first lines and
// disconnects.
type ProbeMode struct {
	*link
	Probe *capability.Probe

	// Output defaults to os.Stdout when nil.
	Output io.Writer
}

// Run opens the connection and waits for the first batch of lines.
func (m *ProbeMode) Run(ctx context.Context) error {
	defer m.close()

	if err := m.open(ctx); err != nil {
		return err
	}

	out := m.Output
	if out == nil {
		out = os.Stdout
	}
	sess := session.New(m.client, nil, out, m.logger)
	if err := m.Probe.Handle(ctx, sess); err != nil {
		return fmt.Errorf("probe %s: %w", m.cfg.Address(), err)
	}
	return nil
}
