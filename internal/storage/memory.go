// AngelaMos | 2026
// memory.go

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps blobs in process memory. It backs the "memory" storage
// driver for local development and the document service tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	// FailDelete, when set, is returned by Delete for matching keys.
	FailDelete func(key string) error
	FailPut    func(key string) error
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryStore) Put(
	_ context.Context,
	key string,
	body io.ReadSeeker,
	_ int64,
	contentType string,
) error {
	if m.FailPut != nil {
		if err := m.FailPut(key); err != nil {
			return fmt.Errorf("put object %s: %w", key, err)
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("get object %s: %w", key, ErrObjectNotFound)
	}

	return &Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
	}, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if m.FailDelete != nil {
		if err := m.FailDelete(key); err != nil {
			return fmt.Errorf("delete object %s: %w", key, err)
		}
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ ObjectStore = (*MemoryStore)(nil)
