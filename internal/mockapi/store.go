package mockapi

import (
	"sync"

	"github.com/dan-lund/diamond/internal/types"
)

// record is the stored outcome of one task.
type record struct {
	Status string          `json:"status"`
	Result []types.Segment `json:"result"`
}

// resultStore keeps per-task outcomes in memory, like the reference
// backend's results_store.
type resultStore struct {
	mu      sync.Mutex
	records map[string]record
}

func newResultStore() *resultStore {
	return &resultStore{records: make(map[string]record)}
}

func (s *resultStore) setProcessing(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[taskID] = record{Status: types.RemoteProcessing}
}

func (s *resultStore) setCompleted(taskID string, result []types.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[taskID] = record{Status: types.RemoteCompleted, Result: result}
}

func (s *resultStore) setFailed(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[taskID] = record{Status: types.RemoteFailed}
}

func (s *resultStore) get(taskID string) (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[taskID]
	return rec, ok
}
