package ezfs

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachingBackend wraps another Backend with an in-process read cache.
//
// Reads are served from the cache when possible; concurrent cache misses for
// the same path are collapsed into a single inner fetch. Writes go through to
// the inner backend and update the cache; Remove and Rename invalidate the
// affected entries. The cache only observes mutations made through this
// wrapper, so it is coherent for a single-writer process but can serve stale
// content if another process mutates the inner backend directly.
type CachingBackend struct {
	inner Backend

	mu    sync.RWMutex
	cache map[string][]byte
	group singleflight.Group
}

var _ Backend = (*CachingBackend)(nil)

// NewCachingBackend wraps inner with a read cache.
func NewCachingBackend(inner Backend) *CachingBackend {
	return &CachingBackend{
		inner: inner,
		cache: make(map[string][]byte),
	}
}

// ReadBytes fetches content from the cache, falling back to the inner
// backend on a miss. Concurrent misses for the same path share one fetch.
func (b *CachingBackend) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	b.mu.RLock()
	data, ok := b.cache[path]
	b.mu.RUnlock()
	if ok {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	v, err, _ := b.group.Do(path, func() (any, error) {
		data, err := b.inner.ReadBytes(ctx, path)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.cache[path] = data
		b.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	data = v.([]byte)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteBytes stores data in the inner backend and refreshes the cache entry.
func (b *CachingBackend) WriteBytes(ctx context.Context, path string, data []byte) error {
	if err := b.inner.WriteBytes(ctx, path, data); err != nil {
		return err
	}
	cached := make([]byte, len(data))
	copy(cached, data)

	b.mu.Lock()
	b.cache[path] = cached
	b.mu.Unlock()
	return nil
}

// Exists consults the cache first, then the inner backend.
func (b *CachingBackend) Exists(ctx context.Context, path string) (bool, error) {
	b.mu.RLock()
	_, ok := b.cache[path]
	b.mu.RUnlock()
	if ok {
		return true, nil
	}
	return b.inner.Exists(ctx, path)
}

// Remove deletes path from the inner backend and drops the cache entry.
func (b *CachingBackend) Remove(ctx context.Context, path string) error {
	if err := b.inner.Remove(ctx, path); err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.cache, path)
	b.mu.Unlock()
	return nil
}

// Rename moves content in the inner backend and invalidates both entries.
// The destination is invalidated rather than carried over so the next read
// observes whatever the inner backend actually stored.
func (b *CachingBackend) Rename(ctx context.Context, src, dst string) error {
	if err := b.inner.Rename(ctx, src, dst); err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.cache, src)
	delete(b.cache, dst)
	b.mu.Unlock()
	return nil
}

// Invalidate drops the cache entry for path, if any.
func (b *CachingBackend) Invalidate(path string) {
	b.mu.Lock()
	delete(b.cache, path)
	b.mu.Unlock()
}
