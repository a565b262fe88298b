package dedup

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreClaimThenClaim(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	already, err := s.Claim(ctx, "TX1")
	require.NoError(t, err)
	assert.False(t, already)

	already, err = s.Claim(ctx, "TX1")
	require.NoError(t, err)
	assert.True(t, already)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStoreReleaseAllowsReclaim(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	_, err := s.Claim(ctx, "TX1")
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "TX1"))

	already, err := s.Claim(ctx, "TX1")
	require.NoError(t, err)
	assert.False(t, already)

	// Releasing an unclaimed id is a no-op.
	assert.NoError(t, s.Release(ctx, "never-claimed"))
}

func TestMemoryStoreCapacityEvictsOldest(t *testing.T) {
	const capacity = 1000
	s := NewMemoryStore(capacity)
	ctx := context.Background()

	for i := 0; i < capacity+1; i++ {
		_, err := s.Claim(ctx, fmt.Sprintf("TX%04d", i))
		require.NoError(t, err)
	}

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(capacity), n)

	// The oldest entry was evicted, so it claims as new again.
	already, err := s.Claim(ctx, "TX0000")
	require.NoError(t, err)
	assert.False(t, already)

	// The newest survives.
	already, err = s.Claim(ctx, fmt.Sprintf("TX%04d", capacity))
	require.NoError(t, err)
	assert.True(t, already)
}

func TestMemoryStoreConcurrentClaimSingleWinner(t *testing.T) {
	s := NewMemoryStore(100)
	ctx := context.Background()

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			already, err := s.Claim(ctx, "TX-RACE")
			if err != nil {
				return
			}
			if !already {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
