// Package client is the network core of a game client: one persistent
// stream connection to the server, a synchronous line sender, and a
// background receiver that fills a bounded queue the game loop drains
// once per frame.
//
// A Client is driven from a single application goroutine.  The only
// concurrent party is the receiver goroutine started by Start, which
// shares nothing with the application except the receive queue.
//
// While a client is disabled every operation is a silent no-op, so a
// game can run fully offline against the same code paths.
package client

import (
	"context"
	"net"
	"os"
	"sync/atomic"

	cerr "craftlink/internal/errors"
	"craftlink/internal/metrics"
	"craftlink/internal/transport"
	"craftlink/util"
)

// State is the lifecycle stage of a Client.
type State int

const (
	StateDisabled State = iota
	StateEnabled
	StateConnected
	StateStarted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateEnabled:
		return "enabled"
	case StateConnected:
		return "connected"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Options configures a Client.  The zero value dials plain TCP with
// the default queue and chunk sizes, logs at normal verbosity, and
// exits the process on fatal errors.
type Options struct {
	Dialer    transport.Dialer
	NoDNS     bool // accept numeric addresses only
	QueueSize int  // receive queue capacity in bytes
	ChunkSize int  // largest single read
	Logger    *util.Logger
	Metrics   *metrics.Collector

	// Fatal receives resolve, dial, write and unexpected read errors.
	// The default logs the error and exits with status 1.  It may run
	// on the receiver goroutine.
	Fatal func(error)
}

// Client owns at most one server connection at a time.
type Client struct {
	dialer  transport.Dialer
	noDNS   bool
	qsize   int
	chunk   int
	logger  *util.Logger
	metrics *metrics.Collector
	fatal   func(error)

	enabled atomic.Bool
	state   State

	conn    net.Conn
	addr    string
	queue   *Queue
	running *atomic.Bool
	recv    *receiver

	position positionTracker

	bytesSent     atomic.Int64
	bytesReceived atomic.Int64
}

// New creates a disabled client.
func New(opts Options) *Client {
	c := &Client{
		dialer:  opts.Dialer,
		noDNS:   opts.NoDNS,
		qsize:   opts.QueueSize,
		chunk:   opts.ChunkSize,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		fatal:   opts.Fatal,
		state:   StateEnabled,
	}
	if c.dialer == nil {
		c.dialer = &transport.TCPDialer{}
	}
	if c.qsize < 2 {
		c.qsize = DefaultQueueSize
	}
	if c.chunk <= 0 {
		c.chunk = util.DefaultChunkSize
	}
	if c.chunk >= c.qsize {
		c.chunk = c.qsize - 1
	}
	if c.logger == nil {
		c.logger = util.NewLogger(int(util.LogNormal))
	}
	if c.fatal == nil {
		c.fatal = c.exit
	}
	return c
}

// exit is the default fatal handler.
func (c *Client) exit(err error) {
	c.logger.Error("%v", err)
	if cerr.IsRetryable(err) {
		c.logger.Info("the failure looks transient; running again may succeed")
	}
	c.logger.Sync() //nolint:errcheck
	os.Exit(1)
}

// fail reports a fatal error and hands it back for the caller to
// return, in case the handler returns.
func (c *Client) fail(err error) error {
	c.metrics.RecordError(err.Error())
	c.fatal(err)
	return err
}

// Enable turns the client on.
func (c *Client) Enable() { c.enabled.Store(true) }

// Disable turns every operation into a no-op.  An open connection is
// left as it is.
func (c *Client) Disable() { c.enabled.Store(false) }

// Enabled reports whether the client is enabled.
func (c *Client) Enabled() bool { return c.enabled.Load() }

// State returns the lifecycle stage; StateDisabled whenever the client
// is disabled.
func (c *Client) State() State {
	if !c.Enabled() {
		return StateDisabled
	}
	return c.state
}

// Addr returns the address of the current connection, or "".
func (c *Client) Addr() string { return c.addr }

// Connect resolves host and opens the connection.  Resolution and dial
// failures are fatal.  There is no timeout beyond what ctx and the
// dialer impose.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	if !c.Enabled() {
		return nil
	}
	if c.state == StateConnected || c.state == StateStarted {
		return cerr.ErrAlreadyConnected
	}

	target := host
	if !transport.ResolvesRemotely(c.dialer) {
		ip, err := util.ResolveHost(ctx, host, c.noDNS)
		if err != nil {
			return c.fail(cerr.Wrap("resolve", host, err))
		}
		target = ip
	}
	addr := util.FormatAddr(target, port)

	c.logger.Verbose("connecting to %s", addr)
	conn, err := c.dialer.Dial(ctx, "tcp", addr)
	if err != nil {
		return c.fail(cerr.Wrap("dial", addr, err))
	}

	c.conn = conn
	c.addr = addr
	c.state = StateConnected
	c.metrics.ConnectionOpened()
	c.logger.Verbose("connected to %s", conn.RemoteAddr())
	return nil
}

// Start allocates a fresh receive queue and launches the receiver on
// the current connection.
func (c *Client) Start() error {
	if !c.Enabled() {
		return nil
	}
	switch c.state {
	case StateStarted:
		return cerr.ErrAlreadyStarted
	case StateConnected:
	default:
		return cerr.ErrNotConnected
	}

	q := NewQueue(c.qsize)
	q.onStall = c.metrics.QueueStall
	running := new(atomic.Bool)
	running.Store(true)

	r := &receiver{
		conn:    c.conn,
		addr:    c.addr,
		queue:   q,
		running: running,
		chunk:   c.chunk,
		fail:    c.fail,
		logger:  c.logger,
		done:    make(chan struct{}),
	}

	c.queue = q
	c.running = running
	c.recv = r
	c.state = StateStarted
	go r.run()

	c.logger.Debug("receiver started (queue %d bytes, reads of %d)", q.Cap(), c.chunk)
	return nil
}

// Stop clears the running flag, closes the connection, and releases the
// queue.  It does not wait for the receiver: the receiver sees its read
// fail with the flag cleared and exits on its own.
func (c *Client) Stop() error {
	if !c.Enabled() {
		return nil
	}
	if c.state != StateConnected && c.state != StateStarted {
		return nil
	}

	if c.running != nil {
		c.running.Store(false)
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Debug("close %s: %v", c.addr, err)
	}
	if c.queue != nil {
		c.queue.Close()
	}

	c.logger.Verbose("disconnected from %s (sent %d, received %d bytes)",
		c.addr, c.bytesSent.Load(), c.bytesReceived.Load())

	c.conn = nil
	c.queue = nil
	c.running = nil
	c.state = StateStopped
	c.metrics.ConnectionClosed()
	return nil
}

// ReceiverDone is closed when the most recently started receiver has
// exited.  It is closed already if none was started.
func (c *Client) ReceiverDone() <-chan struct{} {
	if c.recv == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return c.recv.done
}

// Extract returns every complete line received since the last call,
// concatenated with their newlines, or nil when there is none.  It
// never blocks on the network.
func (c *Client) Extract() []byte {
	if !c.Enabled() || c.queue == nil {
		return nil
	}
	data := c.queue.Extract()
	if data != nil {
		c.bytesReceived.Add(int64(len(data)))
		c.metrics.BytesReceived(int64(len(data)))
	}
	return data
}

// QueueLen returns the number of bytes waiting in the receive queue.
func (c *Client) QueueLen() int {
	if c.queue == nil {
		return 0
	}
	return c.queue.Len()
}

// BytesSent returns the bytes written across all connections.
func (c *Client) BytesSent() int64 { return c.bytesSent.Load() }

// BytesReceived returns the bytes handed out by Extract across all
// connections.
func (c *Client) BytesReceived() int64 { return c.bytesReceived.Load() }

// ── Outbound events ──────────────────────────────────────────────────

// Version announces the client protocol version.
func (c *Client) Version(version int) error {
	if !c.Enabled() {
		return nil
	}
	return c.send(EncodeVersion(version))
}

// Login sends the username and identity token.
func (c *Client) Login(username, identityToken string) error {
	if !c.Enabled() {
		return nil
	}
	return c.send(EncodeLogin(username, identityToken))
}

// Position sends p unless it is within MovementThreshold of the last
// pose sent.  The tracker only advances when the line goes out.
func (c *Client) Position(p Pose) error {
	if !c.Enabled() {
		return nil
	}
	if !c.position.moved(p) {
		c.metrics.PositionSuppressed()
		return nil
	}
	if err := c.send(EncodePosition(p)); err != nil {
		return err
	}
	c.position.sent(p)
	return nil
}

// Chunk requests chunk (p, q) with the client's cache key.
func (c *Client) Chunk(p, q, key int) error {
	if !c.Enabled() {
		return nil
	}
	return c.send(EncodeChunk(p, q, key))
}

// Block sets or (w == 0) removes a block.
func (c *Client) Block(x, y, z, w int) error {
	if !c.Enabled() {
		return nil
	}
	return c.send(EncodeBlock(x, y, z, w))
}

// Light sets a light level.
func (c *Client) Light(x, y, z, w int) error {
	if !c.Enabled() {
		return nil
	}
	return c.send(EncodeLight(x, y, z, w))
}

// Sign places sign text on a block face.
func (c *Client) Sign(x, y, z, face int, text string) error {
	if !c.Enabled() {
		return nil
	}
	return c.send(EncodeSign(x, y, z, face, text))
}

// Talk sends a chat message.  Empty messages are not sent.
func (c *Client) Talk(text string) error {
	if !c.Enabled() || text == "" {
		return nil
	}
	return c.send(EncodeTalk(text))
}

// SendLine sends a preformatted protocol line, adding the newline if it
// is missing.  Empty lines are not sent.
func (c *Client) SendLine(line string) error {
	if !c.Enabled() || line == "" || line == "\n" {
		return nil
	}
	if line[len(line)-1] != '\n' {
		line += "\n"
	}
	return c.send(line)
}
