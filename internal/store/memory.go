package store

import (
	"context"
	"sync"
	"time"
)

type cachedPage struct {
	content   []byte
	expiresAt time.Time
}

// MemoryStore keeps everything in process. It backs tests and one-shot runs
// that export straight to a file.
type MemoryStore struct {
	mu    sync.RWMutex
	kv    map[string][]byte
	pages map[string]cachedPage
	now   func() time.Time
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		kv:    make(map[string][]byte),
		pages: make(map[string]cachedPage),
		now:   time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func (m *MemoryStore) GetCachedPage(_ context.Context, urlHash string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pages[urlHash]
	if !ok || !m.now().Before(p.expiresAt) {
		return nil, nil
	}
	return append([]byte(nil), p.content...), nil
}

func (m *MemoryStore) SetCachedPage(_ context.Context, urlHash string, content []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[urlHash] = cachedPage{
		content:   append([]byte(nil), content...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

// DeleteExpiredPages drops pages past their TTL.
func (m *MemoryStore) DeleteExpiredPages(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, p := range m.pages {
		if !m.now().Before(p.expiresAt) {
			delete(m.pages, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
