package catalog

import (
	"context"
	"sort"
	"sync"
)

type memoryKey struct {
	caseUUID string
	relPath  string
}

// MemoryStore keeps the catalog in process memory. Intended for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[memoryKey]Entry
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[memoryKey]Entry)}
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

func (s *MemoryStore) Upsert(_ context.Context, e Entry) error {
	s.mu.Lock()
	s.entries[memoryKey{e.CaseUUID, e.RelativePath}] = cloneEntry(e)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, caseUUID, relativePath string) (Entry, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[memoryKey{caseUUID, relativePath}]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	return cloneEntry(e), true, nil
}

func (s *MemoryStore) List(_ context.Context, caseUUID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for key, e := range s.entries {
		if key.caseUUID == caseUUID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelativePath < out[j].RelativePath })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneEntry(e Entry) Entry {
	out := e
	if e.Document != nil {
		out.Document = make([]byte, len(e.Document))
		copy(out.Document, e.Document)
	}
	if e.RealizationID != nil {
		id := *e.RealizationID
		out.RealizationID = &id
	}
	return out
}
