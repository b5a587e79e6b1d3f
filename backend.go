package ezfs

import "context"

// Backend is the capability contract every storage provider satisfies.
//
// All five primitives operate on whole contents and share identical semantics
// across implementations; backend-specific connection parameters (root
// directory, bucket name, credentials, database path) are owned by each
// implementation and are not part of this contract. A Backend's underlying
// connection or root handle must outlive every File opened against it.
//
// The core imposes no timeouts of its own; blocking follows the backend's own
// semantics and the supplied context.
type Backend interface {
	// ReadBytes fetches the complete raw content stored at path.
	// It fails with ErrNotFound if the path is absent.
	ReadBytes(ctx context.Context, path string) ([]byte, error)

	// WriteBytes stores data at path, creating or overwriting it.
	WriteBytes(ctx context.Context, path string, data []byte) error

	// Exists reports whether path refers to stored content.
	Exists(ctx context.Context, path string) (bool, error)

	// Remove deletes the content at path.
	// It fails with ErrNotFound if the path is absent.
	Remove(ctx context.Context, path string) error

	// Rename moves content from src to dst, overwriting dst if present
	// (last-writer-wins; no cross-backend atomicity guarantee).
	// It fails with ErrNotFound if src is absent.
	Rename(ctx context.Context, src, dst string) error
}
