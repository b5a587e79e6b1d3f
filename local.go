package ezfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend stores file contents under a root directory on the local
// filesystem.
//
// Paths are interpreted relative to the root, and any path that resolves
// outside the root (via "..", absolute prefixes, or symlink-free lexical
// tricks) is treated as nonexistent rather than rejected with a distinct
// error, so traversal attempts cannot probe the surrounding filesystem.
// Parent directories are created on demand when writing.
type LocalBackend struct {
	root string
}

var _ Backend = (*LocalBackend)(nil)

// NewLocalBackend creates a backend rooted at dir. The directory is created
// if it does not exist.
func NewLocalBackend(dir string) (*LocalBackend, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", dir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create root %s: %w", root, err)
	}
	return &LocalBackend{root: root}, nil
}

// Root returns the absolute root directory.
func (b *LocalBackend) Root() string { return b.root }

// resolve maps a backend path to an absolute location under the root.
// Paths that escape the root resolve to ErrNotFound.
func (b *LocalBackend) resolve(path string) (string, error) {
	abs := filepath.Join(b.root, filepath.FromSlash(path))
	if abs != b.root && !strings.HasPrefix(abs, b.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return abs, nil
}

// ReadBytes fetches the complete content stored at path.
func (b *LocalBackend) ReadBytes(_ context.Context, path string) ([]byte, error) {
	abs, err := b.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// WriteBytes stores data at path, creating parent directories as needed.
func (b *LocalBackend) WriteBytes(_ context.Context, path string, data []byte) error {
	abs, err := b.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", path, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path refers to a regular file under the root.
func (b *LocalBackend) Exists(_ context.Context, path string) (bool, error) {
	abs, err := b.resolve(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// Remove deletes the content at path.
func (b *LocalBackend) Remove(_ context.Context, path string) error {
	abs, err := b.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Rename moves content from src to dst, overwriting dst if present.
func (b *LocalBackend) Rename(_ context.Context, src, dst string) error {
	srcAbs, err := b.resolve(src)
	if err != nil {
		return err
	}
	dstAbs, err := b.resolve(dst)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", dst, err)
	}
	if err := os.Rename(srcAbs, dstAbs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", src, ErrNotFound)
		}
		return fmt.Errorf("failed to rename %s to %s: %w", src, dst, err)
	}
	return nil
}
