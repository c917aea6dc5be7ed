package store

import (
	"sync"

	"github.com/jackwu/callview/model"
)

// Store holds the grouped result of the latest list request. Every request
// takes a sequence number from Begin; only the response carrying the most
// recent number is applied, so a slow response to an older filter cannot
// overwrite a newer one.
type Store struct {
	mu     sync.Mutex
	seq    uint64
	groups Groups
	total  int
}

func New() *Store {
	return &Store{}
}

// Begin issues the sequence number for a new request.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Latest returns the most recently issued sequence number.
func (s *Store) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Apply regroups calls if seq is still the latest request and reports
// whether the store changed.
func (s *Store) Apply(seq uint64, resp *model.ListResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq || resp == nil {
		return false
	}
	s.groups = GroupByDate(resp.Results)
	s.total = int(resp.TotalRows)
	return true
}

// Groups returns the current groups.
func (s *Store) Groups() Groups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups
}

// TotalRows is the server-side row count of the last applied response.
func (s *Store) TotalRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
