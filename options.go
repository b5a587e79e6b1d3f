package ezfs

// NoCompression explicitly disables compression. Passing it as a per-call
// override suppresses a Filesystem-level default.
const NoCompression = "none"

// Resolver resolves a compression algorithm name into a Transform.
//
// The canonical implementation is compress.Registry: an immutable name to
// factory mapping populated at configuration time. Resolution happens once
// per Open, so an unregistered name fails before any storage is touched.
type Resolver interface {
	Resolve(name string) (Transform, error)
}

type options struct {
	registry    Resolver
	compression string
	transform   Transform
	logger      *Logger
}

// Option configures a Filesystem at construction time.
type Option func(*options)

// WithRegistry supplies the compressor registry used to resolve compression
// names at Open time. Without one, any named compression fails with
// ErrNoRegistry.
func WithRegistry(r Resolver) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithCompression sets the default compression algorithm for every file
// opened from the Filesystem. Per-call overrides take precedence.
func WithCompression(name string) Option {
	return func(o *options) {
		o.compression = name
	}
}

// WithTransform sets the default Transform for every file opened from the
// Filesystem. Transforms apply before compression on write and after
// decompression on read. Per-call overrides take precedence.
func WithTransform(t Transform) Option {
	return func(o *options) {
		o.transform = t
	}
}

// WithLogger configures structured logging for filesystem operations.
// The default logger discards all output.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

type openOptions struct {
	compression  *string
	transform    Transform
	transformSet bool
}

// OpenOption configures a single Open call, overriding Filesystem defaults.
type OpenOption func(*openOptions)

// OpenWithCompression overrides the default compression for one file.
// Pass NoCompression to read or write raw despite a configured default.
func OpenWithCompression(name string) OpenOption {
	return func(o *openOptions) {
		o.compression = &name
	}
}

// OpenWithTransform overrides the default Transform for one file.
// Pass nil to disable a configured default. The override replaces the
// default outright; callers wanting both must Chain them explicitly.
func OpenWithTransform(t Transform) OpenOption {
	return func(o *openOptions) {
		o.transform = t
		o.transformSet = true
	}
}
