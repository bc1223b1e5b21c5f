package client

import (
	"net"
	"sync/atomic"

	cerr "craftlink/internal/errors"
	"craftlink/util"
)

// receiver drains one connection into one queue.  It exits when a read
// fails: quietly if its cycle's running flag is already cleared (Stop
// closed the connection), through the fatal handler otherwise.
type receiver struct {
	conn    net.Conn
	addr    string
	queue   *Queue
	running *atomic.Bool
	chunk   int
	fail    func(error) error
	logger  *util.Logger
	done    chan struct{}
}

func (r *receiver) run() {
	defer close(r.done)

	pooled := util.GetChunk()
	defer util.PutChunk(pooled)
	buf := *pooled
	if r.chunk > len(buf) {
		buf = make([]byte, r.chunk)
	}
	buf = buf[:r.chunk]

	for {
		n, err := r.conn.Read(buf)
		if n > 0 && !r.queue.Append(buf[:n]) {
			r.logger.Debug("receiver: queue closed with %d bytes pending", n)
			return
		}
		if err == nil {
			continue
		}
		if r.running.Load() {
			r.fail(cerr.Wrap("read", r.addr, err)) //nolint:errcheck
			return
		}
		r.logger.Debug("receiver: stopped (%v)", err)
		return
	}
}
