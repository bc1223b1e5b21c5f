package core

import (
	"fmt"
	"net"

	"craftlink/config"
	"craftlink/internal/capability"
	"craftlink/internal/metrics"
	"craftlink/internal/transport"
	"craftlink/tunnel"
	"craftlink/util"
)

// Build constructs the appropriate Mode from the given configuration.
// The client it wires in uses the default fatal handler, which exits
// the process.  collector may be nil.
func Build(cfg *config.Config, logger *util.Logger, collector *metrics.Collector) (Mode, error) {
	if err := checkNumericHost(cfg); err != nil {
		return nil, err
	}

	l := newLink(cfg, buildDialer(cfg, logger), logger, collector, nil)
	if cfg.Probe {
		return &ProbeMode{
			link:  l,
			Probe: &capability.Probe{Wait: cfg.ProbeWait},
		}, nil
	}
	return &PlayMode{
		link:  l,
		Relay: &capability.Relay{PollInterval: config.DefaultPollInterval},
	}, nil
}

// checkNumericHost rejects a hostname under --no-dns before anything
// is dialed.  Tunnels and gateways resolve at the far end, so they are
// exempt.
func checkNumericHost(cfg *config.Config) error {
	if !cfg.NoDNS || cfg.Offline || cfg.TunnelEnabled || cfg.Gateway != "" {
		return nil
	}
	if net.ParseIP(cfg.Host) == nil {
		return fmt.Errorf(
			"cannot parse %q as an IP address (DNS disabled with -n)",
			cfg.Host)
	}
	return nil
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   config.DefaultConnTimeout,
		}, logger)
	}

	if cfg.Gateway != "" {
		return &transport.WSDialer{
			URL:     cfg.Gateway,
			Timeout: cfg.Timeout,
		}
	}

	return &transport.TCPDialer{Timeout: cfg.Timeout}
}
