package orders

import (
	"sync"
	"sync/atomic"
)

type snapshot struct {
	records []Record
	index   map[string]int
}

// Store is the in-memory working copy of the sales orders. Readers get an
// immutable snapshot; writers build a new one and swap it in.
type Store struct {
	mu  sync.Mutex
	cur atomic.Pointer[snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.cur.Store(&snapshot{index: map[string]int{}})
	return s
}

// Snapshot returns the current record set. Callers must not modify it.
func (s *Store) Snapshot() []Record {
	return s.cur.Load().records
}

func (s *Store) Len() int {
	return len(s.cur.Load().records)
}

// Merge overwrites records whose ID is already present and appends the rest,
// returning how many IDs were new. Records without an ID are ignored.
func (s *Store) Merge(batch []Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.cur.Load()
	next := &snapshot{
		records: make([]Record, len(old.records), len(old.records)+len(batch)),
		index:   make(map[string]int, len(old.index)+len(batch)),
	}
	copy(next.records, old.records)
	for id, i := range old.index {
		next.index[id] = i
	}

	added := next.apply(batch)
	s.cur.Store(next)
	return added
}

// Replace discards the current set and loads records in its place.
func (s *Store) Replace(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &snapshot{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	next.apply(records)
	s.cur.Store(next)
}

func (sn *snapshot) apply(batch []Record) int {
	added := 0
	for _, r := range batch {
		if r.ID == "" {
			continue
		}
		if i, ok := sn.index[r.ID]; ok {
			sn.records[i] = r
			continue
		}
		sn.index[r.ID] = len(sn.records)
		sn.records = append(sn.records, r)
		added++
	}
	return added
}
