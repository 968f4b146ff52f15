package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs hands out deterministic UUID-shaped identifiers for tests.
//
// The first call to NewID returns "00000000-0000-0000-0000-000000000001".
// Golden files that embed saved query IDs stay byte-identical across runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu  sync.Mutex
	seq int64
}

// NewSequentialIDs creates a generator starting at 0.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewID increments the sequence and returns it formatted as a UUID.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.seq)
}

// Current returns the last sequence number handed out.
func (g *SequentialIDs) Current() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. After Reset, NewID returns the first ID again.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
