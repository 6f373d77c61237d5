package localstore

import (
	"context"
	"errors"
	"sync"
)

// Storage keys of the persisted client-local layout.
const (
	KeySessions    = "kartensets_sessions"
	KeyCurrentUser = "currentUser"
)

// Backend errors. Write failures caused by exhausted storage must wrap
// ErrQuotaExceeded so the adapter can run its degradation path.
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Backend is the injected key/value abstraction the adapter writes
// through. Implementations: file (the localStorage analogue), sqlite,
// and an in-memory fake for tests.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

// MemoryBackend is a map-backed Backend for tests. A non-zero capacity
// makes writes fail with ErrQuotaExceeded once total stored bytes would
// exceed it, which exercises the adapter's degradation path.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string][]byte
	capacity int
}

// NewMemoryBackend creates an unbounded in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// NewBoundedMemoryBackend creates an in-memory backend that rejects
// writes beyond capacity bytes.
func NewBoundedMemoryBackend(capacity int) *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte), capacity: capacity}
}

func (b *MemoryBackend) Read(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *MemoryBackend) Write(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.capacity > 0 {
		total := len(data)
		for k, v := range b.data {
			if k != key {
				total += len(v)
			}
		}
		if total > b.capacity {
			return ErrQuotaExceeded
		}
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	b.data[key] = stored
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}
