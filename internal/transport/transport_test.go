package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"craftlink/tunnel"
	"craftlink/util"
)

// TestTCPDialer_Connect verifies that TCPDialer can reach a local
// TCP server and exchange data.
func TestTCPDialer_Connect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte("T,welcome\n")) //nolint:errcheck
	}()

	d := &TCPDialer{Timeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "T,welcome\n" {
		t.Errorf("got %q, want %q", got, "T,welcome\n")
	}
}

// TestTCPDialer_ContextCancel verifies that a cancelled context stops the dial.
func TestTCPDialer_ContextCancel(t *testing.T) {
	d := &TCPDialer{Timeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dial(ctx, "tcp", "127.0.0.1:1")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestTCPDialer_Close(t *testing.T) {
	d := &TCPDialer{}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ResolvesRemotely(d) {
		t.Error("TCP dialer resolves locally")
	}
}

func TestSSHDialer_Lazy(t *testing.T) {
	d := NewSSHDialer(&tunnel.SSHConfig{User: "u", Host: "127.0.0.1", Port: 1}, util.NewLogger(0))
	if !ResolvesRemotely(d) {
		t.Error("SSH dialer should resolve remotely")
	}
	// Close before any Dial must not touch the network.
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// gateway upgrades to WebSocket and echoes every byte it receives,
// after first sending a greeting split across two messages.
func gateway(t *testing.T) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{Subprotocols: []string{"binary"}}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		target := r.Header.Get("X-Craftlink-Target")
		_ = ws.WriteMessage(websocket.BinaryMessage, []byte("T,hel"))
		_ = ws.WriteMessage(websocket.BinaryMessage, []byte("lo\nT,"+target+"\n"))
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			ws.WriteMessage(websocket.BinaryMessage, msg) //nolint:errcheck
		}
	}))
}

func TestWSDialer_Stream(t *testing.T) {
	srv := gateway(t)
	defer srv.Close()

	d := &WSDialer{URL: "ws" + strings.TrimPrefix(srv.URL, "http"), Timeout: 2 * time.Second}
	if !ResolvesRemotely(d) {
		t.Error("WebSocket dialer should resolve remotely")
	}

	conn, err := d.Dial(context.Background(), "tcp", "craft.internal:4080")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck

	want := "T,hello\nT,craft.internal:4080\n"
	got := make([]byte, len(want))
	if _, err := io.ReadFull(conn, got); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if string(got) != want {
		t.Errorf("greeting = %q, want %q", got, want)
	}

	if _, err := conn.Write([]byte("B,5,10,-3,2\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	echo := make([]byte, len("B,5,10,-3,2\n"))
	if _, err := io.ReadFull(conn, echo); err != nil {
		t.Fatalf("read echo: %v", err)
	}
	if string(echo) != "B,5,10,-3,2\n" {
		t.Errorf("echo = %q", echo)
	}
}

func TestWSDialer_CloseUnblocksRead(t *testing.T) {
	srv := gateway(t)
	defer srv.Close()

	d := &WSDialer{URL: "ws" + strings.TrimPrefix(srv.URL, "http")}
	conn, err := d.Dial(context.Background(), "tcp", "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	// Drain the greeting, then block in Read.
	io.ReadFull(conn, make([]byte, len("T,hello\nT,\n"))) //nolint:errcheck

	done := make(chan error, 1)
	go func() {
		_, err := conn.Read(make([]byte, 16))
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	conn.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected read error after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("read did not unblock after close")
	}
}

func TestWSDialer_BadURL(t *testing.T) {
	d := &WSDialer{URL: "ws://127.0.0.1:1/none", Timeout: time.Second}
	if _, err := d.Dial(context.Background(), "tcp", ""); err == nil {
		t.Fatal("expected dial error")
	}
}
