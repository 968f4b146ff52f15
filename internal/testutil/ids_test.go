package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs_StartsAtZero(t *testing.T) {
	ids := NewSequentialIDs()
	assert.Equal(t, int64(0), ids.Current())
}

func TestSequentialIDs_NewIDIncrements(t *testing.T) {
	ids := NewSequentialIDs()

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", ids.NewID())
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", ids.NewID())
	assert.Equal(t, int64(2), ids.Current())
}

func TestSequentialIDs_Reset(t *testing.T) {
	ids := NewSequentialIDs()
	ids.NewID()
	ids.NewID()

	ids.Reset()
	assert.Equal(t, int64(0), ids.Current())
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", ids.NewID())
}

func TestSequentialIDs_ConcurrentUnique(t *testing.T) {
	ids := NewSequentialIDs()

	const workers = 10
	const perWorker = 50

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := ids.NewID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), ids.Current())
}
