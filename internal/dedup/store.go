// Package dedup provides the processed-transaction store that keeps a
// replayed or concurrently duplicated callback from reaching fulfillment
// twice. Claim is a single atomic insert-if-absent; there is deliberately no
// separate check-then-mark pair.
package dedup

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity bounds the number of retained transaction ids. Oldest
// entries are evicted first once the bound is exceeded.
const DefaultCapacity = 1000

// Store records transaction ids that have been committed to fulfillment.
type Store interface {
	// Claim atomically marks transID as processed. It returns true if the id
	// was already claimed, in which case the caller must not fulfill.
	Claim(ctx context.Context, transID string) (already bool, err error)

	// Release undoes a claim whose fulfillment failed, so the processor's
	// retry can succeed once the fault clears.
	Release(ctx context.Context, transID string) error

	// Len reports the number of retained entries.
	Len(ctx context.Context) (int64, error)
}

// memoryStore keeps claims in-process. Used by tests; not durable across
// restarts, so production setups use the gorm or Redis store.
type memoryStore struct {
	mu       sync.Mutex
	claimed  map[string]struct{}
	order    []string
	capacity int
}

// NewMemoryStore returns an in-process store bounded to capacity entries.
func NewMemoryStore(capacity int) Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &memoryStore{
		claimed:  make(map[string]struct{}),
		capacity: capacity,
	}
}

func (s *memoryStore) Claim(_ context.Context, transID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claimed[transID]; ok {
		return true, nil
	}
	s.claimed[transID] = struct{}{}
	s.order = append(s.order, transID)

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.claimed, oldest)
	}
	return false, nil
}

func (s *memoryStore) Release(_ context.Context, transID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claimed[transID]; !ok {
		return nil
	}
	delete(s.claimed, transID)
	for i, id := range s.order {
		if id == transID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryStore) Len(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.claimed)), nil
}

func nowUnix() int64 {
	return time.Now().Unix()
}
