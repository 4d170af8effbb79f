package kvstore

import (
	"context"
	"sync"
	"time"
)

type clocker interface {
	Now() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Entries expire lazily against the injected
// clock, which lets tests step time without sleeping.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   clocker
}

// NewMemory returns an empty store that reads time from clock.
func NewMemory(clock clocker) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

// Get returns a copy of the value at key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.expired(e) {
		return nil, ErrNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Put stores a copy of value at key.
func (m *Memory) Put(ctx context.Context, key string, value []byte, opts ...PutOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o := ApplyPutOptions(opts...)
	e := memoryEntry{value: append([]byte(nil), value...)}
	if o.TTL > 0 {
		e.expiresAt = m.clock.Now().Add(o.TTL)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Delete removes key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Close drops all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

func (m *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.clock.Now().Before(e.expiresAt)
}
