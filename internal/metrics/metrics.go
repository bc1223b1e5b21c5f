// Package metrics provides lock-free counters for a craftlink client
// and exports them to Prometheus.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// frameTags lists the outbound line tags tracked individually.  Any
// other tag is counted under "other".
const frameTags = "VAPCBLST"

// Collector tracks runtime metrics for a client.
// A nil Collector is safe to use: all methods become no-ops.
type Collector struct {
	connectionsActive  atomic.Int64
	connectionsTotal   atomic.Int64
	bytesIn            atomic.Int64
	bytesOut           atomic.Int64
	batchesExtracted   atomic.Int64
	positionSuppressed atomic.Int64
	queueStalls        atomic.Int64
	errorsTotal        atomic.Int64
	framesOut          [len(frameTags) + 1]atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes handed to the application by an
// extraction.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
	c.batchesExtracted.Add(1)
}

// BytesSent records n bytes written to the network.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Protocol metrics ─────────────────────────────────────────────────

// FrameSent counts one outbound line with the given tag.
func (c *Collector) FrameSent(tag byte) {
	if c == nil {
		return
	}
	c.framesOut[tagIndex(tag)].Add(1)
}

// FramesSent returns the number of lines sent with the given tag.
func (c *Collector) FramesSent(tag byte) int64 {
	if c == nil {
		return 0
	}
	return c.framesOut[tagIndex(tag)].Load()
}

// PositionSuppressed counts a position update swallowed by the
// movement dead zone.
func (c *Collector) PositionSuppressed() {
	if c == nil {
		return
	}
	c.positionSuppressed.Add(1)
}

// QueueStall counts one append that found the receive queue full.
func (c *Collector) QueueStall() {
	if c == nil {
		return
	}
	c.queueStalls.Add(1)
}

// QueueStalls returns the number of appends that had to wait.
func (c *Collector) QueueStalls() int64 {
	if c == nil {
		return 0
	}
	return c.queueStalls.Load()
}

func tagIndex(tag byte) int {
	for i := 0; i < len(frameTags); i++ {
		if frameTags[i] == tag {
			return i
		}
	}
	return len(frameTags)
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime             string           `json:"uptime"`
	ConnectionsActive  int64            `json:"connections_active"`
	ConnectionsTotal   int64            `json:"connections_total"`
	BytesIn            int64            `json:"bytes_in"`
	BytesOut           int64            `json:"bytes_out"`
	BatchesExtracted   int64            `json:"batches_extracted"`
	FramesOut          map[string]int64 `json:"frames_out,omitempty"`
	PositionSuppressed int64            `json:"position_suppressed"`
	QueueStalls        int64            `json:"queue_stalls"`
	ErrorsTotal        int64            `json:"errors_total"`
	LastError          string           `json:"last_error,omitempty"`
	LastErrorMessage   string           `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:             time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive:  c.connectionsActive.Load(),
		ConnectionsTotal:   c.connectionsTotal.Load(),
		BytesIn:            c.bytesIn.Load(),
		BytesOut:           c.bytesOut.Load(),
		BatchesExtracted:   c.batchesExtracted.Load(),
		PositionSuppressed: c.positionSuppressed.Load(),
		QueueStalls:        c.queueStalls.Load(),
		ErrorsTotal:        c.errorsTotal.Load(),
	}
	for i := range c.framesOut {
		if n := c.framesOut[i].Load(); n > 0 {
			if s.FramesOut == nil {
				s.FramesOut = make(map[string]int64)
			}
			s.FramesOut[tagLabel(i)] = n
		}
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}

func tagLabel(i int) string {
	if i < len(frameTags) {
		return frameTags[i : i+1]
	}
	return "other"
}

// ── Prometheus ───────────────────────────────────────────────────────

var (
	descConnActive = prometheus.NewDesc("craftlink_connections_active",
		"Connections currently open.", nil, nil)
	descConnTotal = prometheus.NewDesc("craftlink_connections_total",
		"Connections opened since start.", nil, nil)
	descBytesIn = prometheus.NewDesc("craftlink_received_bytes_total",
		"Bytes handed to the application by extraction.", nil, nil)
	descBytesOut = prometheus.NewDesc("craftlink_sent_bytes_total",
		"Bytes written to the server.", nil, nil)
	descBatches = prometheus.NewDesc("craftlink_extracted_batches_total",
		"Non-empty extractions from the receive queue.", nil, nil)
	descFrames = prometheus.NewDesc("craftlink_sent_frames_total",
		"Protocol lines sent, by tag.", []string{"tag"}, nil)
	descSuppressed = prometheus.NewDesc("craftlink_position_suppressed_total",
		"Position updates dropped by the movement dead zone.", nil, nil)
	descStalls = prometheus.NewDesc("craftlink_queue_stalls_total",
		"Receiver appends that found the receive queue full.", nil, nil)
	descErrors = prometheus.NewDesc("craftlink_errors_total",
		"Errors recorded.", nil, nil)
)

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descConnActive
	ch <- descConnTotal
	ch <- descBytesIn
	ch <- descBytesOut
	ch <- descBatches
	ch <- descFrames
	ch <- descSuppressed
	ch <- descStalls
	ch <- descErrors
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(descConnActive, prometheus.GaugeValue, float64(c.ActiveConnections()))
	ch <- prometheus.MustNewConstMetric(descConnTotal, prometheus.CounterValue, float64(c.TotalConnections()))
	ch <- prometheus.MustNewConstMetric(descBytesIn, prometheus.CounterValue, float64(c.TotalBytesIn()))
	ch <- prometheus.MustNewConstMetric(descBytesOut, prometheus.CounterValue, float64(c.TotalBytesOut()))
	ch <- prometheus.MustNewConstMetric(descBatches, prometheus.CounterValue, float64(c.batchesExtracted.Load()))
	for i := range c.framesOut {
		ch <- prometheus.MustNewConstMetric(descFrames, prometheus.CounterValue,
			float64(c.framesOut[i].Load()), tagLabel(i))
	}
	ch <- prometheus.MustNewConstMetric(descSuppressed, prometheus.CounterValue, float64(c.positionSuppressed.Load()))
	ch <- prometheus.MustNewConstMetric(descStalls, prometheus.CounterValue, float64(c.QueueStalls()))
	ch <- prometheus.MustNewConstMetric(descErrors, prometheus.CounterValue, float64(c.ErrorCount()))
}
