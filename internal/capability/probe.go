package capability

import (
	"context"
	"time"

	"craftlink/client"
	"craftlink/config"
	cerr "craftlink/internal/errors"
	"craftlink/internal/session"
)

// Probe waits for the server's first lines, writes them to the output
// and returns.  It answers "is a server there, and what does it say
// on login" without an interactive session.
type Probe struct {
	Wait         time.Duration // 0 → config.DefaultProbeWait
	PollInterval time.Duration // 0 → config.DefaultPollInterval
}

// Handle returns nil after the first non-empty batch, ErrNoResponse
// when Wait elapses first, or the context error.  A disabled client
// has nothing to probe and returns at once.
func (p *Probe) Handle(ctx context.Context, sess *session.Session) error {
	switch sess.Client.State() {
	case client.StateDisabled:
		sess.Logger.Info("offline: nothing to probe")
		return nil
	case client.StateStarted:
	default:
		return cerr.ErrNotStarted
	}

	wait := p.Wait
	if wait <= 0 {
		wait = config.DefaultProbeWait
	}
	interval := p.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}

	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		n, err := sess.Drain()
		if err != nil {
			return err
		}
		if n > 0 {
			sess.Logger.Verbose("probe: %d lines after %v", n, time.Since(start).Round(time.Millisecond))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return cerr.ErrNoResponse
		case <-ticker.C:
		}
	}
}
