package persist

import (
	"context"
	"sync"
)

// MemoryBackend is a minimal in-memory Backend intended for tests, examples,
// and server-rendered environments that hydrate later from a real backend.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: map[string][]byte{}}
}

func (b *MemoryBackend) Get(_ context.Context, name string) ([]byte, bool, error) {
	b.mu.RLock()
	data, ok := b.records[name]
	b.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, name string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	b.mu.Lock()
	b.records[name] = stored
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, name string) error {
	b.mu.Lock()
	delete(b.records, name)
	b.mu.Unlock()
	return nil
}
