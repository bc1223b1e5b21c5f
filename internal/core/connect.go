package core

import (
	"context"
	"fmt"

	"craftlink/client"
	"craftlink/config"
	"craftlink/internal/metrics"
	"craftlink/internal/transport"
	"craftlink/util"
)

// link brings a client up for a mode and tears it down afterwards.
type link struct {
	cfg    *config.Config
	client *client.Client
	dialer transport.Dialer
	logger *util.Logger
}

// newLink creates the client for cfg.  A nil fatal keeps the client's
// default handler.
func newLink(cfg *config.Config, dialer transport.Dialer, logger *util.Logger,
	collector *metrics.Collector, fatal func(error)) *link {
	c := client.New(client.Options{
		Dialer:    dialer,
		NoDNS:     cfg.NoDNS,
		QueueSize: cfg.QueueSize,
		ChunkSize: cfg.ChunkSize,
		Logger:    logger,
		Metrics:   collector,
		Fatal:     fatal,
	})
	return &link{cfg: cfg, client: c, dialer: dialer, logger: logger}
}

// open enables the client unless offline, connects, starts the
// receiver, announces the protocol version and logs in when a username
// is configured.
func (l *link) open(ctx context.Context) error {
	if l.cfg.Offline {
		l.logger.Info("offline: network disabled")
	} else {
		l.client.Enable()
	}

	if err := l.client.Connect(ctx, l.cfg.Host, l.cfg.Port); err != nil {
		return fmt.Errorf("connect to %s: %w", l.cfg.Address(), err)
	}
	if err := l.client.Start(); err != nil {
		return err
	}
	if err := l.client.Version(l.cfg.ProtocolVersion); err != nil {
		return err
	}
	if l.cfg.Username != "" {
		if err := l.client.Login(l.cfg.Username, l.cfg.Token); err != nil {
			return err
		}
		l.logger.Verbose("logged in as %s", l.cfg.Username)
	}

	if l.client.Enabled() {
		l.logger.Info("connected to %s (%s)", l.client.Addr(), l.cfg.TransportName())
	}
	return nil
}

// close stops the client and releases the transport.
func (l *link) close() {
	l.client.Stop() //nolint:errcheck
	if err := l.dialer.Close(); err != nil {
		l.logger.Debug("close transport: %v", err)
	}
	l.logger.Verbose("sent %d bytes, received %d bytes",
		l.client.BytesSent(), l.client.BytesReceived())
}
