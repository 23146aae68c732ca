package orchestrator

import (
	"fmt"
	"sync"
)

// RunStore is a concurrency-safe in-memory store for suspended and
// finished runs, keyed by run ID. The review cycle suspends by persisting
// the state here and resuming from a later SubmitReview call, so no live
// connection is held while waiting on the host.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]RunState
}

// NewRunStore returns an initialized RunStore.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]RunState)}
}

// Save upserts the run state under its ID. The stored value is a deep
// copy, so later mutation of the argument cannot leak into the store.
func (s *RunStore) Save(state RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[state.ID] = state.Clone()
}

// Get returns a deep copy of the run with the given ID.
func (s *RunStore) Get(id string) (RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.runs[id]
	if !ok {
		return RunState{}, fmt.Errorf("run %q not found", id)
	}
	return state.Clone(), nil
}

// Delete removes a run. Deleting an unknown ID is a no-op.
func (s *RunStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
}

// Len reports the number of stored runs.
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
