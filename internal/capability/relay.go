package capability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"craftlink/config"
	"craftlink/internal/session"
	"craftlink/util"
)

// RawPrefix marks an input line that is sent as a protocol line
// instead of chat.
const RawPrefix = "/raw "

// Relay is the interactive mode: each input line becomes a chat
// message (or a raw protocol line after RawPrefix), and the receive
// queue is drained to the output once per poll interval, the way a
// game drains it once per frame.
type Relay struct {
	PollInterval time.Duration // 0 → config.DefaultPollInterval
}

// Handle runs until the input ends or ctx is cancelled.  Lines still
// queued at that point are drained once more before it returns.
func (r *Relay) Handle(ctx context.Context, sess *session.Session) error {
	interval := r.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := sess.Input.Readline()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_, err := sess.Drain()
			return err

		case <-ticker.C:
			if _, err := sess.Drain(); err != nil {
				return err
			}

		case line, ok := <-lines:
			if !ok {
				if _, err := sess.Drain(); err != nil {
					return err
				}
				if err := <-readErr; !util.IsHarmless(err) {
					return fmt.Errorf("read input: %w", err)
				}
				sess.Logger.Verbose("input closed")
				return nil
			}
			if err := r.dispatch(sess, line); err != nil {
				return err
			}
		}
	}
}

// dispatch sends one input line.
func (r *Relay) dispatch(sess *session.Session, line string) error {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case strings.TrimSpace(line) == "":
		return nil
	case strings.HasPrefix(line, RawPrefix):
		return sess.Client.SendLine(strings.TrimPrefix(line, RawPrefix))
	default:
		return sess.Client.Talk(line)
	}
}
