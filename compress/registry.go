package compress

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/ezfs"
)

// Factory constructs a compression Transform. Factories run at most once per
// Registry; the resulting Transform is cached and shared.
type Factory func() ezfs.Transform

// UnknownAlgorithmError is returned when a compression name has no entry in
// the registry.
type UnknownAlgorithmError struct {
	Name  string
	Known []string
}

func (e *UnknownAlgorithmError) Error() string {
	return fmt.Sprintf("unknown compression algorithm %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Registry maps compression algorithm names to Transforms.
//
// The name set is fixed at construction, which makes lookups lock-free;
// Transforms themselves are constructed lazily on first resolve and then
// shared. A Registry satisfies ezfs.Resolver and is safe for concurrent use.
type Registry struct {
	entries map[string]*entry
}

type entry struct {
	once    sync.Once
	factory Factory
	t       ezfs.Transform
}

// NewRegistry builds a registry from a name to factory mapping.
func NewRegistry(factories map[string]Factory) *Registry {
	entries := make(map[string]*entry, len(factories))
	for name, factory := range factories {
		entries[name] = &entry{factory: factory}
	}
	return &Registry{entries: entries}
}

// Builtin returns a registry with every built-in algorithm registered under
// its canonical name: gzip, zlib, zstd, s2, snappy, lz4, and brotli.
func Builtin() *Registry {
	return NewRegistry(map[string]Factory{
		"gzip":   Gzip,
		"zlib":   Zlib,
		"zstd":   Zstd,
		"s2":     S2,
		"snappy": Snappy,
		"lz4":    LZ4,
		"brotli": Brotli,
	})
}

// Resolve returns the Transform registered under name.
func (r *Registry) Resolve(name string) (ezfs.Transform, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, &UnknownAlgorithmError{Name: name, Known: r.Algorithms()}
	}
	e.once.Do(func() {
		e.t = e.factory()
	})
	return e.t, nil
}

// Algorithms returns the registered names in sorted order.
func (r *Registry) Algorithms() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
