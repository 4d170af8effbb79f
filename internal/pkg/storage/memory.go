package storage

import (
	"context"
	"crypto/md5" //nolint:gosec // etag only
	"encoding/hex"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory keeps objects in process. It is meant for development and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject), now: time.Now}
}

// Put stores a copy of data under key.
func (m *Memory) Put(_ context.Context, key string, data []byte, opts PutOptions) (ObjectInfo, error) {
	sum := md5.Sum(data) //nolint:gosec // etag only
	info := ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ETag:        hex.EncodeToString(sum[:]),
		ContentType: opts.ContentType,
		Metadata:    maps.Clone(opts.Metadata),
		UpdatedAt:   m.now(),
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{data: slices.Clone(data), info: info}
	m.mu.Unlock()

	return info, nil
}

// Get returns a copy of the object under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, ObjectInfo, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	return slices.Clone(obj.data), obj.info, nil
}

// List returns objects under prefix in key order.
func (m *Memory) List(_ context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(m.objects))
	out := make([]ObjectInfo, 0, len(keys))
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		out = append(out, m.objects[k].info)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Close drops every object.
func (m *Memory) Close() error {
	m.mu.Lock()
	clear(m.objects)
	m.mu.Unlock()
	return nil
}
