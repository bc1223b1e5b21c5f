package client

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_ExtractAllCompleteLines(t *testing.T) {
	q := NewQueue(64)
	require.True(t, q.Append([]byte("A,B\n")))
	require.True(t, q.Append([]byte("C\n")))

	assert.Equal(t, "A,B\nC\n", string(q.Extract()))
	assert.Nil(t, q.Extract())
	assert.Zero(t, q.Len())
}

func TestQueue_ExtractKeepsPartialLine(t *testing.T) {
	q := NewQueue(64)
	require.True(t, q.Append([]byte("A,B\nC")))

	assert.Equal(t, "A,B\n", string(q.Extract()))
	assert.Equal(t, 1, q.Len())
	assert.Nil(t, q.Extract(), "no newline yet")

	require.True(t, q.Append([]byte(",D\n")))
	assert.Equal(t, "C,D\n", string(q.Extract()))
}

func TestQueue_ExtractEmpty(t *testing.T) {
	q := NewQueue(64)
	assert.Nil(t, q.Extract())
}

func TestQueue_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultQueueSize, NewQueue(0).Cap())
	assert.Equal(t, DefaultQueueSize, NewQueue(1).Cap())
	assert.Equal(t, 2, NewQueue(2).Cap())
}

func TestQueue_AppendWaitsForRoom(t *testing.T) {
	q := NewQueue(8)
	stalls := 0
	q.onStall = func() { stalls++ }

	require.True(t, q.Append([]byte("abc\n")))

	done := make(chan bool)
	go func() { done <- q.Append([]byte("defg\n")) }()

	select {
	case <-done:
		t.Fatal("append should wait while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 4, q.Len(), "nothing dropped or truncated while waiting")

	assert.Equal(t, "abc\n", string(q.Extract()))
	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("append did not resume after extract")
	}
	assert.Equal(t, "defg\n", string(q.Extract()))
	assert.Equal(t, 1, stalls, "one stall per waiting append")
}

func TestQueue_CloseReleasesWaitingAppend(t *testing.T) {
	q := NewQueue(4)
	require.True(t, q.Append([]byte("ab\n")))

	done := make(chan bool)
	go func() { done <- q.Append([]byte("cd\n")) }()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("close did not release the append")
	}
	assert.Zero(t, q.Len())
	assert.Nil(t, q.Extract())
	assert.False(t, q.Append([]byte("x\n")))
}

func TestQueue_OversizedAppendInPieces(t *testing.T) {
	q := NewQueue(4)

	done := make(chan bool)
	go func() { done <- q.Append([]byte("ab\ncd\nef\n")) }()

	var got strings.Builder
	deadline := time.After(2 * time.Second)
	for got.Len() < 9 {
		select {
		case <-deadline:
			t.Fatalf("only got %q", got.String())
		default:
		}
		if b := q.Extract(); b != nil {
			got.Write(b)
		}
	}
	assert.True(t, <-done)
	assert.Equal(t, "ab\ncd\nef\n", got.String())
}

func TestQueue_ConcurrentOrdering(t *testing.T) {
	const lines = 2000
	q := NewQueue(64)

	var want strings.Builder
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&want, "T,line %d\n", i)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < lines; i++ {
			q.Append([]byte(fmt.Sprintf("T,line %d\n", i)))
		}
	}()

	var got strings.Builder
	deadline := time.Now().Add(10 * time.Second)
	for got.Len() < want.Len() && time.Now().Before(deadline) {
		if b := q.Extract(); b != nil {
			got.Write(b)
		}
	}
	q.Close()
	wg.Wait()

	assert.Equal(t, want.String(), got.String())
}
