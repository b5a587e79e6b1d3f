package ezfs

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend stores file contents in an in-process map.
//
// It is intended for tests and ephemeral pipelines; contents vanish with the
// process. All operations are guarded by a single RWMutex and contents are
// defensively copied on both write and read, so callers never alias the
// stored slices.
type MemoryBackend struct {
	mu   sync.RWMutex
	tree map[string][]byte
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tree: make(map[string][]byte),
	}
}

// ReadBytes fetches the complete content stored at path.
func (b *MemoryBackend) ReadBytes(_ context.Context, path string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.tree[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteBytes stores data at path, creating or overwriting it.
func (b *MemoryBackend) WriteBytes(_ context.Context, path string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tree[path] = stored
	return nil
}

// Exists reports whether path refers to stored content.
func (b *MemoryBackend) Exists(_ context.Context, path string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.tree[path]
	return ok, nil
}

// Remove deletes the content at path.
func (b *MemoryBackend) Remove(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tree[path]; !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	delete(b.tree, path)
	return nil
}

// Rename moves content from src to dst, overwriting dst if present.
func (b *MemoryBackend) Rename(_ context.Context, src, dst string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.tree[src]
	if !ok {
		return fmt.Errorf("%s: %w", src, ErrNotFound)
	}
	// Remove src first so a same-path rename keeps the content.
	delete(b.tree, src)
	b.tree[dst] = data
	return nil
}

// Len returns the number of stored paths.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.tree)
}
