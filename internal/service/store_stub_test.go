package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/store"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

// memoryStore is an in-memory document store for service tests. It mirrors
// the contract of the real store: generated ids, server-side timestamps and
// one change signal per successful write.
type memoryStore struct {
	mu          sync.Mutex
	collections map[string][]store.Document
	nextID      int
	failWrites  error
	signals     []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{collections: make(map[string][]store.Document)}
}

func (m *memoryStore) Fetch(ctx context.Context, query store.Query) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]store.Document, 0)
	for _, doc := range m.collections[query.Collection] {
		if matchesFilters(doc, query.Filters) {
			out = append(out, doc.Clone())
		}
	}
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (m *memoryStore) Create(ctx context.Context, collection string, fields store.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return "", m.failWrites
	}

	m.nextID++
	id := fmt.Sprintf("doc-%d", m.nextID)
	doc := fields.Clone()
	doc["id"] = id
	doc["created_at"] = time.Now().UTC()
	m.collections[collection] = append(m.collections[collection], doc)
	m.signals = append(m.signals, collection)
	return id, nil
}

func (m *memoryStore) Update(ctx context.Context, collection, id string, fields store.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return m.failWrites
	}

	for _, doc := range m.collections[collection] {
		if doc.ID() == id {
			for key, value := range fields {
				doc[key] = value
			}
			m.signals = append(m.signals, collection)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[collection]
	for i, doc := range docs {
		if doc.ID() == id {
			m.collections[collection] = append(docs[:i], docs[i+1:]...)
			m.signals = append(m.signals, collection)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memoryStore) Changes(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	return ch, func() {}
}

func (m *memoryStore) all(collection string) []store.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Document, 0, len(m.collections[collection]))
	for _, doc := range m.collections[collection] {
		out = append(out, doc.Clone())
	}
	return out
}

func matchesFilters(doc store.Document, filters []store.Filter) bool {
	for _, filter := range filters {
		if fmt.Sprint(doc[filter.Field]) != fmt.Sprint(filter.Value) {
			return false
		}
	}
	return true
}

// recordingAudit captures entries synchronously for assertions.
type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Record(entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) recorded() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AuditEntry(nil), r.entries...)
}
