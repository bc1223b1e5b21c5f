package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSDialer reaches the server through a WebSocket-to-TCP gateway
// (websockify and friends).  The gateway URL fixes the destination, so
// the address passed to Dial is only sent as a header for gateways
// that route on it.
type WSDialer struct {
	URL     string
	Timeout time.Duration
}

// Dial opens the WebSocket and wraps it as a byte stream.
func (d *WSDialer) Dial(ctx context.Context, _, address string) (net.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.Timeout,
		Subprotocols:     []string{"binary"},
	}
	hdr := http.Header{}
	if address != "" {
		hdr.Set("X-Craftlink-Target", address)
	}
	ws, resp, err := dialer.DialContext(ctx, d.URL, hdr)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket %s: %s: %w", d.URL, resp.Status, err)
		}
		return nil, fmt.Errorf("websocket %s: %w", d.URL, err)
	}
	return &wsConn{ws: ws}, nil
}

// ResolvesRemotely is true: the gateway owns the destination.
func (d *WSDialer) ResolvesRemotely() bool { return true }

// Close is a no-op; each connection owns its socket.
func (d *WSDialer) Close() error { return nil }

// wsConn presents a WebSocket as a stream.  Message boundaries carry
// no meaning for the line protocol, so reads drain one message reader
// at a time and writes send one binary message per call.
type wsConn struct {
	ws *websocket.Conn

	rmu sync.Mutex
	r   io.Reader

	wmu sync.Mutex
}

func (c *wsConn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	for {
		if c.r == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			c.r = r
		}
		n, err := c.r.Read(p)
		if err == io.EOF {
			c.r = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error                       { return c.ws.Close() }
func (c *wsConn) LocalAddr() net.Addr                { return c.ws.LocalAddr() }
func (c *wsConn) RemoteAddr() net.Addr               { return c.ws.RemoteAddr() }
func (c *wsConn) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *wsConn) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}
