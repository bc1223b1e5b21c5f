// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"craftlink/config"
	"craftlink/internal/core"
	"craftlink/internal/metrics"
	"craftlink/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X craftlink/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the selected craftlink mode.
func Execute(ctx context.Context, args []string) error {
	fs := newFlagSet()

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	showHelp, _ := fs.GetBool("help")
	showVersion, _ := fs.GetBool("version")
	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("craftlink %s\n", version)
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(fs, fs.Args()); err != nil {
		return err
	}

	// ── load + validate ──────────────────────────────────────────
	configFile, _ := fs.GetString("config")
	cfg, err := config.Load(config.LoadOptions{File: configFile, Flags: fs})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if dryRun, _ := fs.GetBool("dry-run"); dryRun {
		printPlan(cfg)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	if cfg.LogFile != "" {
		logger.SetFile(cfg.LogFile, config.DefaultLogMaxSizeMB)
	}
	defer logger.Sync() //nolint:errcheck

	collector := metrics.New()
	if cfg.MetricsAddr != "" {
		addr, errCh, err := metrics.Serve(ctx, cfg.MetricsAddr, collector)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		logger.Info("metrics on http://%s/metrics", addr)
		go func() {
			if err := <-errCh; err != nil {
				logger.Warn("metrics server: %v", err)
			}
		}()
	}

	mode, err := core.Build(cfg, logger, collector)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("craftlink", flag.ContinueOnError)

	// ── server ───────────────────────────────────────────────────
	fs.String("host", "", "Server host (usually given positionally)")
	fs.IntP("port", "p", config.DefaultPort, "Server port")
	fs.Bool("offline", false, "Run without a network connection")
	fs.BoolP("no-dns", "n", false, "Numeric-only, no DNS resolution")
	fs.DurationP("timeout", "w", 0, "Dial timeout (0 = none)")
	_ = fs.MarkHidden("host")

	// ── identity ─────────────────────────────────────────────────
	fs.StringP("username", "u", "", "Log in with this username")
	fs.String("token", "", "Identity token for --username")
	fs.Int("protocol-version", config.DefaultProtocolVersion, "Protocol version to announce")

	// ── client ───────────────────────────────────────────────────
	fs.Int("queue-size", config.DefaultQueueSize, "Receive queue capacity in bytes")
	fs.Int("chunk-size", config.DefaultChunkSize, "Largest single read in bytes")

	// ── transport ────────────────────────────────────────────────
	fs.StringP("tunnel", "T", "", "SSH tunnel via [user@]host[:port]")
	fs.String("ssh-key", "", "SSH private key file")
	fs.Bool("ssh-password", false, "Prompt for SSH password")
	fs.Bool("ssh-agent", false, "Use SSH agent")
	fs.Bool("strict-hostkey", false, "Verify SSH host keys")
	fs.String("known-hosts", "", "Custom known_hosts path")
	fs.String("gateway", "", "WebSocket gateway URL (ws:// or wss://)")

	// ── modes ────────────────────────────────────────────────────
	fs.Bool("probe", false, "Print the server's first lines and exit")
	fs.Duration("probe-wait", config.DefaultProbeWait, "How long --probe waits")

	// ── output ───────────────────────────────────────────────────
	fs.CountP("verbose", "v", "Increase verbosity (repeatable)")
	fs.String("log-file", "", "Also log to this file (rotated)")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address")

	// ── meta ─────────────────────────────────────────────────────
	fs.StringP("config", "c", "", "Config file (yaml, toml, json)")
	fs.Bool("dry-run", false, "Validate configuration and exit")
	fs.Bool("version", false, "Print version and exit")
	fs.BoolP("help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }
	return fs
}

// parsePositional maps "<host> [port]" onto the host and port flags so
// they take flag precedence in the loader.
func parsePositional(fs *flag.FlagSet, remaining []string) error {
	switch len(remaining) {
	case 0:
		return nil
	case 1, 2:
	default:
		return fmt.Errorf("too many arguments (use --help for usage)")
	}

	if err := fs.Set("host", remaining[0]); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if len(remaining) == 2 {
		if err := fs.Set("port", remaining[1]); err != nil {
			return fmt.Errorf("port %q: not a number", remaining[1])
		}
	}
	return nil
}

func printPlan(cfg *config.Config) {
	target := cfg.Address()
	if cfg.Offline {
		target = "offline"
	}
	fmt.Fprintf(os.Stderr, "craftlink: %s mode, %s via %s (queue %d bytes, reads of %d)\n",
		cfg.ModeName(), target, cfg.TransportName(), cfg.QueueSize, cfg.ChunkSize)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `craftlink – line-protocol game client v%s

Connects to a Craft-style game server, logs in, and relays chat and
server lines between the terminal and the server.

Usage:
  craftlink [options] <host> [port]           Play (chat relay)
  craftlink --probe [options] <host> [port]   Print the server's first lines
  craftlink -T user@gateway <host> [port]     Through an SSH tunnel
  craftlink --gateway ws://gw/craft <host>    Through a WebSocket gateway

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Input lines are sent as chat; "/raw <line>" sends a protocol line as is.

Examples:
  craftlink craft.example.com                 Default port %d
  craftlink -u steve --token abc123 10.0.0.5  Log in
  craftlink --probe -w 5s craft.example.com   Check a server
  CRAFTLINK_PORT=4081 craftlink craft.local   Environment override
`, config.DefaultPort)
}
