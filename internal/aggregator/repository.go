package aggregator

import (
	"sync/atomic"
)

// VideoRepository holds the published video snapshot.
type VideoRepository interface {
	// Current returns the published snapshot. It never returns nil: before
	// the first refresh it returns an empty snapshot.
	Current() *Snapshot

	// Replace publishes s in a single step. Readers observe either the
	// previous snapshot or s, never a mixture.
	Replace(s *Snapshot)
}

// InMemoryRepository is a concurrency-safe in-memory implementation of
// VideoRepository. Snapshots are immutable, so swapping one pointer is all the
// synchronization readers need.
type InMemoryRepository struct {
	current atomic.Pointer[Snapshot]
}

// NewInMemoryRepository constructs a repository holding an empty snapshot.
func NewInMemoryRepository() *InMemoryRepository {
	r := &InMemoryRepository{}
	r.current.Store(EmptySnapshot())
	return r
}

// Current implements VideoRepository.Current.
func (r *InMemoryRepository) Current() *Snapshot {
	return r.current.Load()
}

// Replace implements VideoRepository.Replace. A nil snapshot publishes an
// empty one.
func (r *InMemoryRepository) Replace(s *Snapshot) {
	if s == nil {
		s = EmptySnapshot()
	}
	r.current.Store(s)
}
