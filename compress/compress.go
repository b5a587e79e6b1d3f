// Package compress provides compression Transforms and a name-based registry
// for resolving them at open time.
//
// Seven algorithms ship built in: gzip, zlib, zstd, s2, snappy, lz4, and
// brotli. Each constructor returns an ezfs.Transform whose Apply compresses
// and whose Remove decompresses, so compressed files read back exactly as
// written. Stream-based codecs reuse their writers through a sync.Pool; the
// returned Transforms are safe for concurrent use across many File handles.
package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/ezfs"
)

// resetWriter is the shape shared by every pooled stream compressor writer.
type resetWriter interface {
	io.WriteCloser
	Reset(w io.Writer)
}

// streamCompressor adapts a stream codec into a whole-buffer Transform.
// Writers are pooled; a pooled writer is owned exclusively by one goroutine
// between Get and Put, so no extra locking is needed.
type streamCompressor struct {
	name      string
	writers   sync.Pool
	newReader func(r io.Reader) (io.Reader, error)
}

func (c *streamCompressor) Name() string { return c.name }

func (c *streamCompressor) Apply(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := c.writers.Get().(resetWriter)
	w.Reset(&buf)

	_, err := w.Write(data)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	c.writers.Put(w)

	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *streamCompressor) Remove(data []byte) ([]byte, error) {
	r, err := c.newReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(r)
	if closer, ok := r.(io.Closer); ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Gzip returns a gzip Transform at the default compression level.
func Gzip() ezfs.Transform {
	return &streamCompressor{
		name: "gzip",
		writers: sync.Pool{
			New: func() any { return gzip.NewWriter(io.Discard) },
		},
		newReader: func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		},
	}
}

// Zlib returns a zlib Transform at the default compression level.
func Zlib() ezfs.Transform {
	return &streamCompressor{
		name: "zlib",
		writers: sync.Pool{
			New: func() any { return zlib.NewWriter(io.Discard) },
		},
		newReader: func(r io.Reader) (io.Reader, error) {
			return zlib.NewReader(r)
		},
	}
}

// LZ4 returns an lz4 frame Transform.
func LZ4() ezfs.Transform {
	return &streamCompressor{
		name: "lz4",
		writers: sync.Pool{
			New: func() any { return lz4.NewWriter(io.Discard) },
		},
		newReader: func(r io.Reader) (io.Reader, error) {
			return lz4.NewReader(r), nil
		},
	}
}

// Brotli returns a brotli Transform at the default quality.
func Brotli() ezfs.Transform {
	return &streamCompressor{
		name: "brotli",
		writers: sync.Pool{
			New: func() any { return brotli.NewWriter(io.Discard) },
		},
		newReader: func(r io.Reader) (io.Reader, error) {
			return brotli.NewReader(r), nil
		},
	}
}

// zstdCompressor uses one shared encoder and decoder; their EncodeAll and
// DecodeAll entry points are safe for concurrent use.
type zstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Zstd returns a zstd Transform at the default compression level.
func Zstd() ezfs.Transform {
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	return &zstdCompressor{enc: enc, dec: dec}
}

func (c *zstdCompressor) Name() string { return "zstd" }

func (c *zstdCompressor) Apply(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, nil), nil
}

func (c *zstdCompressor) Remove(data []byte) ([]byte, error) {
	return c.dec.DecodeAll(data, nil)
}

// blockCompressor wraps stateless block encode/decode functions.
type blockCompressor struct {
	name   string
	encode func(dst, src []byte) []byte
	decode func(dst, src []byte) ([]byte, error)
}

func (c *blockCompressor) Name() string { return c.name }

func (c *blockCompressor) Apply(data []byte) ([]byte, error) {
	return c.encode(nil, data), nil
}

func (c *blockCompressor) Remove(data []byte) ([]byte, error) {
	return c.decode(nil, data)
}

// S2 returns an s2 block Transform. S2 is a faster, non-interoperable
// extension of snappy.
func S2() ezfs.Transform {
	return &blockCompressor{name: "s2", encode: s2.Encode, decode: s2.Decode}
}

// Snappy returns a snappy block Transform.
func Snappy() ezfs.Transform {
	return &blockCompressor{name: "snappy", encode: snappy.Encode, decode: snappy.Decode}
}
