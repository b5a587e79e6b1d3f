package ezfs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a path does not exist in the backend.
	//
	// Backend implementations must return an error that satisfies
	// `errors.Is(err, ErrNotFound)` from ReadBytes, Remove, and Rename when
	// the referenced path is absent.
	ErrNotFound = errors.New("file does not exist")

	// ErrExist is returned when exclusive creation finds the path present.
	ErrExist = errors.New("file already exists")

	// ErrClosed is returned when an operation is attempted on a closed File.
	ErrClosed = errors.New("file already closed")

	// ErrNotReadable is returned when reading a File opened for writing.
	ErrNotReadable = errors.New("file not open for reading")

	// ErrNotWritable is returned when writing a File opened for reading.
	ErrNotWritable = errors.New("file not open for writing")

	// ErrNoRegistry is returned when a compression name is requested but the
	// Filesystem was built without a compressor registry.
	ErrNoRegistry = errors.New("no compressor registry configured")
)

// TransformError indicates that a transform stage failed to apply or remove.
//
// Transform failures are deterministic and never retried; the failing stage
// and direction are recorded, and the original error can be accessed via
// errors.Unwrap.
type TransformError struct {
	Stage string // stage name, e.g. "gzip"
	Op    string // "apply" or "remove"
	cause error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s: %s failed: %v", e.Stage, e.Op, e.cause)
}

func (e *TransformError) Unwrap() error { return e.cause }

// BackendError wraps a lower-level storage, network, or driver failure.
//
// The original cause is preserved and can be accessed via errors.Unwrap.
type BackendError struct {
	Op    string
	Path  string
	cause error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s %s: %v", e.Op, e.Path, e.cause)
}

func (e *BackendError) Unwrap() error { return e.cause }

// StateError indicates an operation attempted in the wrong File state, such
// as a read on a write handle or any operation after Close.
//
// The underlying cause is one of ErrClosed, ErrNotReadable, or ErrNotWritable.
type StateError struct {
	Op    string
	Path  string
	cause error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.cause)
}

func (e *StateError) Unwrap() error { return e.cause }

// InvalidModeError indicates a mode string that cannot be parsed.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode: %q", e.Mode)
}

// wrapBackend normalizes an error returned by a Backend primitive.
//
// Typed ezfs errors and the not-found/exists sentinels pass through untouched
// so callers can match on them; anything else is a driver failure and is
// wrapped in a BackendError.
func wrapBackend(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExist) {
		return err
	}
	var te *TransformError
	if errors.As(err, &te) {
		return err
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Op: op, Path: path, cause: err}
}
