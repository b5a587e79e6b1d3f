// Package ezfs provides a uniform abstraction for reading and writing whole
// files against interchangeable storage backends, with optional reversible
// byte transforms (compression, encoding, checksums, encryption) applied
// transparently on write and undone on read.
//
// # Quick Start
//
// In-memory storage with gzip compression:
//
//	fs := ezfs.New(ezfs.NewMemoryBackend(),
//	    ezfs.WithRegistry(compress.Builtin()),
//	    ezfs.WithCompression("gzip"),
//	)
//
//	err := fs.WithFile(ctx, "greeting.txt.gz", "wt", func(f *ezfs.File) error {
//	    _, err := f.WriteString("hello world")
//	    return err
//	})
//
//	err = fs.WithFile(ctx, "greeting.txt.gz", "rt", func(f *ezfs.File) error {
//	    text, err := f.ReadText()
//	    fmt.Println(text)
//	    return err
//	})
//
// # Backends
//
// Every backend satisfies the five-primitive Backend contract (ReadBytes,
// WriteBytes, Exists, Remove, Rename) with identical semantics:
//
//   - MemoryBackend — in-process map, scoped to process lifetime
//   - LocalBackend — files under a root directory on local disk
//   - sqlite.Backend — a key/value table in an embedded SQLite database
//   - s3.Backend — objects in an S3 bucket
//   - minio.Backend — objects in any S3-compatible store via MinIO
//   - dynamodb.Backend — items in a DynamoDB table
//
// Backends compose: CachingBackend adds read-through caching and
// ThrottledBackend adds byte-rate limiting over any inner backend.
//
// # Transforms
//
// A Transform is a reversible byte mapping. Transforms chain: on write the
// stages apply first to last, on read they unwind in exact reverse order.
// Compression is one Transform specialization, resolved by algorithm name
// through a registry supplied at configuration time (see package compress).
//
//	t := ezfs.Chain(myEncoder, ezfs.NewChecksumTransform())
//	f, err := fs.Open(ctx, "data.bin", "wb", ezfs.OpenWithTransform(t))
//
// # Whole-File Semantics
//
// Reads and writes operate on complete contents as one in-memory unit. There
// is no chunking, streaming, or partial IO; peak memory use is proportional
// to file size.
package ezfs
