package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryDoc struct {
	fields map[string]any
	seq    int
}

// MemoryStore keeps documents in process memory, listed in insertion
// order like the hosted backends. Used by tests and for local
// development without a configured backend.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryDoc
	nextSeq     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]*memoryDoc),
	}
}

func (s *MemoryStore) List(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type match struct {
		doc Document
		seq int
	}
	matches := []match{}
	for id, d := range s.collections[collection] {
		if matchesAll(d.fields, filters) {
			matches = append(matches, match{Document{ID: id, Fields: copyFields(d.fields)}, d.seq})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })

	docs := make([]Document, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, m.doc)
	}
	return docs, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: copyFields(d.fields)}, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.New().String()
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*memoryDoc)
	}
	s.nextSeq++
	s.collections[collection][id] = &memoryDoc{fields: copyFields(fields), seq: s.nextSeq}
	return Document{ID: id, Fields: copyFields(fields)}, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	for k, v := range fields {
		d.fields[k] = v
	}
	return Document{ID: id, Fields: copyFields(d.fields)}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func matchesAll(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !f.matches(fields[f.Field]) {
			return false
		}
	}
	return true
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
