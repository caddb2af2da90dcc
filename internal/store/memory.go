package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu          sync.Mutex
	project     string
	collections map[string]map[string][]byte
	watchers    map[string][]*ChangeStream
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(project string) *MemoryStore {
	return &MemoryStore{
		project:     project,
		collections: make(map[string]map[string][]byte),
		watchers:    make(map[string][]*ChangeStream),
	}
}

func (m *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}

	return Document{ID: id, Data: slices.Clone(data)}, nil
}

func (m *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	result := make([]Document, 0, len(ids))
	for _, id := range ids {
		result = append(result, Document{ID: id, Data: slices.Clone(docs[id])})
	}

	return result, nil
}

func (m *MemoryStore) Set(_ context.Context, collection string, doc Document) error {
	if doc.ID == "" {
		return ErrEmptyID
	}

	m.put(collection, doc.ID, doc.Data)
	return nil
}

func (m *MemoryStore) Add(_ context.Context, collection string, data []byte) (string, error) {
	id := uuid.NewString()
	m.put(collection, id, data)

	return id, nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return nil
	}
	delete(m.collections[collection], id)
	m.notifyLocked(collection, id, OpDelete)

	return nil
}

func (m *MemoryStore) Watch(ctx context.Context, collection string) (*ChangeStream, error) {
	stream, streamCtx := newChangeStream(ctx)

	m.mu.Lock()
	m.watchers[collection] = append(m.watchers[collection], stream)
	m.mu.Unlock()

	go func() {
		<-streamCtx.Done()

		m.mu.Lock()
		m.watchers[collection] = slices.DeleteFunc(m.watchers[collection], func(s *ChangeStream) bool {
			return s == stream
		})
		m.mu.Unlock()

		stream.finish(streamCtx.Err())
	}()

	return stream, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) put(collection, id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string][]byte)
	}
	m.collections[collection][id] = slices.Clone(data)
	m.notifyLocked(collection, id, OpPut)
}

func (m *MemoryStore) notifyLocked(collection, id string, op Op) {
	change := Change{Project: m.project, Collection: collection, ID: id, Op: op}
	for _, stream := range m.watchers[collection] {
		stream.offer(change)
	}
}
