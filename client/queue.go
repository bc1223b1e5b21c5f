package client

import (
	"bytes"
	"runtime"
	"sync"
)

// DefaultQueueSize is the receive queue capacity in bytes.
const DefaultQueueSize = 1 << 20

// Queue is the fixed-capacity byte buffer between the receiver
// goroutine and the application.  The receiver appends at the end; the
// application extracts a prefix ending at a newline.
//
// Invariant: 0 <= length < capacity.
type Queue struct {
	mu       sync.Mutex
	buf      []byte
	length   int
	capacity int
	closed   bool

	// onStall, if set, runs once per Append that finds the queue full.
	onStall func()
}

// NewQueue allocates a queue holding up to capacity-1 bytes.
// Capacities below 2 fall back to DefaultQueueSize.
func NewQueue(capacity int) *Queue {
	if capacity < 2 {
		capacity = DefaultQueueSize
	}
	return &Queue{buf: make([]byte, capacity), capacity: capacity}
}

// Append copies data to the end of the queue.  While the queue lacks
// room it spins, yielding the processor between attempts, so data is
// never dropped or truncated.  It returns false only if the queue was
// closed before all of data fit.
//
// Data longer than the queue can ever hold is appended in pieces.
func (q *Queue) Append(data []byte) bool {
	limit := q.capacity - 1
	for len(data) > limit {
		if !q.append(data[:limit]) {
			return false
		}
		data = data[limit:]
	}
	return q.append(data)
}

func (q *Queue) append(data []byte) bool {
	stalled := false
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return false
		}
		if q.length+len(data) < q.capacity {
			copy(q.buf[q.length:], data)
			q.length += len(data)
			q.mu.Unlock()
			return true
		}
		q.mu.Unlock()

		if !stalled {
			stalled = true
			if q.onStall != nil {
				q.onStall()
			}
		}
		runtime.Gosched()
	}
}

// Extract removes and returns everything up to and including the last
// newline in the queue: every complete line received since the previous
// extraction, concatenated.  Bytes after that newline stay queued.  It
// returns nil when no complete line is available.
func (q *Queue) Extract() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.length == 0 {
		return nil
	}
	i := bytes.LastIndexByte(q.buf[:q.length], '\n')
	if i < 0 {
		return nil
	}

	n := i + 1
	out := make([]byte, n)
	copy(out, q.buf[:n])
	copy(q.buf, q.buf[n:q.length])
	q.length -= n
	return out
}

// Len returns the number of bytes queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return q.capacity }

// Close empties the queue and releases its buffer.  Appends blocked on
// a full queue return false.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.length = 0
	q.buf = nil
	q.mu.Unlock()
}
