package ezfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// File is a stateful handle for whole-file read and write operations against
// one backend path.
//
// A File is single-use: it starts open, transitions to closed via Close, and
// cannot be reopened; obtain a new handle from the Filesystem instead. While
// open for writing it buffers content in memory and flushes once on Close,
// running the effective Transform chain forward. While open for reading it
// fetches lazily on the first read, running the chain in reverse, and serves
// repeated reads from the decoded content.
//
// A File is not safe for concurrent use: its pending buffer and state flag
// are unsynchronized. The context passed to Filesystem.Open covers the whole
// handle lifetime, including the flush performed by Close.
type File struct {
	fs        *Filesystem
	ctx       context.Context
	path      string
	mode      Mode
	transform Transform

	closed  bool
	buf     bytes.Buffer // pending writes
	content []byte       // decoded content, cached after first read
	fetched bool
}

// Path returns the file's location in the filesystem.
func (f *File) Path() string { return f.path }

// Mode returns the mode the file was opened with.
func (f *File) Mode() Mode { return f.mode }

// String returns the file's location in the filesystem.
func (f *File) String() string { return f.path }

// Read returns the complete decoded contents of the file.
//
// Valid only in binary read mode. The raw bytes are fetched from the backend
// on first use, failing with ErrNotFound if the path is absent, and the
// effective Transform is removed in chain-reverse order. Repeated calls
// return the same content.
func (f *File) Read() ([]byte, error) {
	if err := f.readCheck("read"); err != nil {
		return nil, err
	}
	if f.mode.text() {
		return nil, &StateError{Op: "read", Path: f.path, cause: fmt.Errorf("%w in text mode, use ReadText", ErrNotReadable)}
	}
	return f.fetch()
}

// ReadText returns the complete decoded contents of the file as a string.
//
// Valid only in text read mode; contents are interpreted as UTF-8.
func (f *File) ReadText() (string, error) {
	if err := f.readCheck("read"); err != nil {
		return "", err
	}
	if !f.mode.text() {
		return "", &StateError{Op: "read", Path: f.path, cause: fmt.Errorf("%w in binary mode, use Read", ErrNotReadable)}
	}
	data, err := f.fetch()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write appends data to the pending buffer. Valid only in binary write
// modes. Nothing reaches the backend until Close; the persisted artifact is
// the concatenation of all writes, run through the Transform chain once.
func (f *File) Write(p []byte) (int, error) {
	if err := f.writeCheck("write"); err != nil {
		return 0, err
	}
	if f.mode.text() {
		return 0, &StateError{Op: "write", Path: f.path, cause: fmt.Errorf("%w in text mode, use WriteString", ErrNotWritable)}
	}
	return f.buf.Write(p)
}

// WriteString appends s to the pending buffer. Valid only in text write
// modes.
func (f *File) WriteString(s string) (int, error) {
	if err := f.writeCheck("write"); err != nil {
		return 0, err
	}
	if !f.mode.text() {
		return 0, &StateError{Op: "write", Path: f.path, cause: fmt.Errorf("%w in binary mode, use Write", ErrNotWritable)}
	}
	return f.buf.WriteString(s)
}

// Close releases the handle. Closing an already-closed File is a no-op.
//
// For write modes, Close runs the effective Transform chain forward over the
// pending buffer and hands the result to the backend in one write. A flush
// failure is returned to the caller, but the File still transitions to
// closed; a failed flush cannot be retried from a closed handle.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if !f.mode.writable() {
		return nil
	}

	err := f.flush()
	f.fs.logger.LogFlush(f.ctx, f.path, f.buf.Len(), err)
	return err
}

func (f *File) flush() error {
	data := f.buf.Bytes()

	if f.mode&ModeAppend != 0 {
		prior, err := f.priorContent()
		if err != nil {
			return err
		}
		data = append(prior, data...)
	}

	if f.mode&ModeCreate != 0 {
		exists, err := f.fs.backend.Exists(f.ctx, f.path)
		if err != nil {
			return wrapBackend("exists", f.path, err)
		}
		if exists {
			return fmt.Errorf("create %s: %w", f.path, ErrExist)
		}
	}

	encoded, err := applyTransform(f.transform, data)
	if err != nil {
		return err
	}
	return wrapBackend("write", f.path, f.fs.backend.WriteBytes(f.ctx, f.path, encoded))
}

// priorContent fetches and decodes existing content for append mode.
// A missing path yields empty prior content, not an error.
func (f *File) priorContent() ([]byte, error) {
	raw, err := f.fs.backend.ReadBytes(f.ctx, f.path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, wrapBackend("read", f.path, err)
	}
	return removeTransform(f.transform, raw)
}

func (f *File) fetch() ([]byte, error) {
	if f.fetched {
		return f.content, nil
	}
	raw, err := f.fs.backend.ReadBytes(f.ctx, f.path)
	if err != nil {
		err = wrapBackend("read", f.path, err)
		f.fs.logger.LogRead(f.ctx, f.path, 0, err)
		return nil, err
	}
	content, err := removeTransform(f.transform, raw)
	if err != nil {
		f.fs.logger.LogRead(f.ctx, f.path, 0, err)
		return nil, err
	}
	f.content = content
	f.fetched = true
	f.fs.logger.LogRead(f.ctx, f.path, len(content), nil)
	return content, nil
}

func (f *File) readCheck(op string) error {
	if f.closed {
		return &StateError{Op: op, Path: f.path, cause: ErrClosed}
	}
	if !f.mode.readable() {
		return &StateError{Op: op, Path: f.path, cause: ErrNotReadable}
	}
	return nil
}

func (f *File) writeCheck(op string) error {
	if f.closed {
		return &StateError{Op: op, Path: f.path, cause: ErrClosed}
	}
	if !f.mode.writable() {
		return &StateError{Op: op, Path: f.path, cause: ErrNotWritable}
	}
	return nil
}
