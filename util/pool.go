package util

import "sync"

// DefaultChunkSize is the largest single read the receiver issues.
const DefaultChunkSize = 4096

// chunkPool provides reusable receive buffers so that a connect/start
// cycle does not allocate a fresh read buffer each time.
var chunkPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultChunkSize)
		return &buf
	},
}

// GetChunk retrieves a DefaultChunkSize buffer from the pool.  Callers
// must return it with [PutChunk] when finished.
func GetChunk() *[]byte {
	return chunkPool.Get().(*[]byte)
}

// PutChunk returns a buffer to the pool.  Buffers of any other size are
// dropped.
func PutChunk(buf *[]byte) {
	if buf == nil || len(*buf) != DefaultChunkSize {
		return
	}
	chunkPool.Put(buf)
}
