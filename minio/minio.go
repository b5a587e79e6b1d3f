// Package minio provides an ezfs.Backend that stores file contents as
// objects on a MinIO (or any S3-compatible) server using the native MinIO
// client.
//
// It mirrors the s3 package's object-per-file layout but speaks through
// github.com/minio/minio-go, which is the lighter choice for self-hosted
// object stores.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/ezfs"
)

type options struct {
	prefix string
}

// Option configures the backend.
type Option func(*options)

// WithPrefix stores every object under the given key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = strings.Trim(prefix, "/")
	}
}

// Backend stores file contents as MinIO objects.
type Backend struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ ezfs.Backend = (*Backend)(nil)

// New creates a backend over the given bucket.
func New(client *minio.Client, bucket string, optFns ...Option) *Backend {
	opts := options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{
		client: client,
		bucket: bucket,
		prefix: opts.prefix,
	}
}

// NewClient builds a *minio.Client with static credentials.
func NewClient(endpoint, accessKey, secretKey string, secure bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", endpoint, err)
	}
	return client, nil
}

func (b *Backend) key(path string) string {
	path = strings.TrimPrefix(path, "/")
	if b.prefix == "" {
		return path
	}
	return b.prefix + "/" + path
}

// ReadBytes fetches the complete object stored at path.
func (b *Backend) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.key(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// GetObject defers key validation to the first read.
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", path, ezfs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}
	return data, nil
}

// WriteBytes stores data as the object at path, creating or overwriting it.
func (b *Backend) WriteBytes(ctx context.Context, path string, data []byte) error {
	_, err := b.client.PutObject(ctx, b.bucket, b.key(path),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an object exists at path.
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, b.key(path), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	return true, nil
}

// Remove deletes the object at path.
//
// RemoveObject succeeds on missing keys, so existence is checked first to
// honor the not-found contract. The check and the delete are not atomic.
func (b *Backend) Remove(ctx context.Context, path string) error {
	exists, err := b.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", path, ezfs.ErrNotFound)
	}
	if err := b.client.RemoveObject(ctx, b.bucket, b.key(path), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", path, err)
	}
	return nil
}

// Rename copies the object from src to dst and deletes src. The two steps
// are separate requests; a failure in between leaves both objects present.
// A same-path rename is a no-op but still requires src to exist.
func (b *Backend) Rename(ctx context.Context, src, dst string) error {
	if b.key(src) == b.key(dst) {
		exists, err := b.Exists(ctx, src)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%s: %w", src, ezfs.ErrNotFound)
		}
		return nil
	}

	_, err := b.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: b.bucket, Object: b.key(dst)},
		minio.CopySrcOptions{Bucket: b.bucket, Object: b.key(src)},
	)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s: %w", src, ezfs.ErrNotFound)
		}
		return fmt.Errorf("failed to copy object %s to %s: %w", src, dst, err)
	}
	if err := b.client.RemoveObject(ctx, b.bucket, b.key(src), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", src, err)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
