package ezfs

import (
	"context"
	"fmt"
)

// Filesystem binds one storage backend to default read/write configuration
// and acts as the factory for File handles.
//
// The backend's connection or root handle is owned by the caller and must
// outlive every File opened from this Filesystem. A Filesystem itself holds
// no per-file state and is safe for concurrent use as long as the underlying
// backend is; individual File handles are not.
type Filesystem struct {
	backend     Backend
	registry    Resolver
	compression string
	transform   Transform
	logger      *Logger
}

// New creates a Filesystem over the given backend.
func New(backend Backend, optFns ...Option) *Filesystem {
	opts := options{
		compression: NoCompression,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.logger == nil {
		opts.logger = NoopLogger()
	}
	return &Filesystem{
		backend:     backend,
		registry:    opts.registry,
		compression: opts.compression,
		transform:   opts.transform,
		logger:      opts.logger,
	}
}

// Backend returns the bound storage backend.
func (fs *Filesystem) Backend() Backend { return fs.backend }

// Open returns a File handle bound to this Filesystem, path, mode, and the
// resolved effective Transform.
//
// Per-call compression and transform overrides take precedence over the
// Filesystem defaults. A named compression resolves through the registry
// into exactly one stage, applied after the transform on write and removed
// before it on read. Open touches no backend storage: a missing path
// surfaces as ErrNotFound on the first read, not here, and written content
// reaches the backend on Close.
func (fs *Filesystem) Open(ctx context.Context, path, mode string, optFns ...OpenOption) (*File, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	var opts openOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	effective, err := fs.resolveTransform(opts)
	if err != nil {
		return nil, err
	}

	fs.logger.LogOpen(ctx, path, m)

	return &File{
		fs:        fs,
		ctx:       ctx,
		path:      path,
		mode:      m,
		transform: effective,
	}, nil
}

// WithFile opens path, runs fn with the File, and closes it on every exit
// path, including when fn fails or panics.
//
// A flush error from the implicit Close is surfaced unless fn already
// returned an error, which takes precedence.
func (fs *Filesystem) WithFile(ctx context.Context, path, mode string, fn func(f *File) error, optFns ...OpenOption) (err error) {
	f, err := fs.Open(ctx, path, mode, optFns...)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
	}()
	return fn(f)
}

// Exists reports whether path refers to stored content.
func (fs *Filesystem) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := fs.backend.Exists(ctx, path)
	if err != nil {
		return false, wrapBackend("exists", path, err)
	}
	return ok, nil
}

// Remove deletes the content at path.
// It fails with ErrNotFound if the path is absent.
func (fs *Filesystem) Remove(ctx context.Context, path string) error {
	err := wrapBackend("remove", path, fs.backend.Remove(ctx, path))
	fs.logger.LogRemove(ctx, path, err)
	return err
}

// Rename moves content from src to dst, overwriting dst if present.
// It fails with ErrNotFound if src is absent.
func (fs *Filesystem) Rename(ctx context.Context, src, dst string) error {
	err := wrapBackend("rename", src, fs.backend.Rename(ctx, src, dst))
	fs.logger.LogRename(ctx, src, dst, err)
	return err
}

// resolveTransform merges per-call overrides with the Filesystem defaults
// into one effective Transform chain.
func (fs *Filesystem) resolveTransform(opts openOptions) (Transform, error) {
	compression := fs.compression
	if opts.compression != nil {
		compression = *opts.compression
	}

	transform := fs.transform
	if opts.transformSet {
		transform = opts.transform
	}

	var stages []Transform
	if transform != nil {
		stages = append(stages, transform)
	}
	if compression != "" && compression != NoCompression {
		if fs.registry == nil {
			return nil, fmt.Errorf("cannot resolve compression %q: %w", compression, ErrNoRegistry)
		}
		compressor, err := fs.registry.Resolve(compression)
		if err != nil {
			return nil, err
		}
		stages = append(stages, compressor)
	}
	return Chain(stages...), nil
}
