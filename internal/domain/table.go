package domain

import (
	"sync"
)

// Table is the in-memory resolved-record table shared by both pipeline
// phases. It is loaded from a CacheBackend once per build session and
// flushed back at phase checkpoints. Access within a build is
// single-threaded; the mutex keeps the map safe should resolution ever run
// in parallel, where racing writes for one ID are last-write-wins.
type Table struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewTable wraps the given record map. A nil map yields an empty table.
func NewTable(records map[string]Record) *Table {
	if records == nil {
		records = map[string]Record{}
	}

	return &Table{records: records}
}

// Get returns the record for id.
func (t *Table) Get(id string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.records[id]

	return rec, ok
}

// Put stores rec under its ID, replacing any prior entry.
func (t *Table) Put(rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[rec.ID] = rec
}

// Snapshot returns a copy of the table for persistence.
func (t *Table) Snapshot() map[string]Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Record, len(t.records))
	for id, rec := range t.records {
		out[id] = rec
	}

	return out
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.records)
}
