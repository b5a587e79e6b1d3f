// Package s3 provides an ezfs.Backend that stores file contents as objects
// in an Amazon S3 bucket.
//
// Each file maps to one object under an optional key prefix. Writes are
// single PutObject calls, so every flush replaces the object in one request
// and S3's read-after-write consistency applies. Rename is copy-then-delete;
// S3 has no native move.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/ezfs"
)

// Client is the subset of the S3 API the backend uses. *s3.Client satisfies
// it; tests substitute fakes.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

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

// Backend stores file contents as S3 objects.
type Backend struct {
	client Client
	bucket string
	prefix string
}

var _ ezfs.Backend = (*Backend)(nil)

// New creates a backend over the given bucket.
func New(client Client, bucket string, optFns ...Option) *Backend {
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

func (b *Backend) key(path string) string {
	path = strings.TrimPrefix(path, "/")
	if b.prefix == "" {
		return path
	}
	return b.prefix + "/" + path
}

// ReadBytes fetches the complete object stored at path.
func (b *Backend) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", path, ezfs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}
	return data, nil
}

// WriteBytes stores data as the object at path, creating or overwriting it.
func (b *Backend) WriteBytes(ctx context.Context, path string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an object exists at path.
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object %s: %w", path, err)
	}
	return true, nil
}

// Remove deletes the object at path.
//
// S3's DeleteObject succeeds on missing keys, so existence is checked first
// to honor the not-found contract. The check and the delete are not atomic.
func (b *Backend) Remove(ctx context.Context, path string) error {
	exists, err := b.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", path, ezfs.ErrNotFound)
	}
	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}

// Rename copies the object from src to dst and deletes src. The two steps
// are separate requests; a failure in between leaves both objects present.
// A same-path rename is a no-op but still requires src to exist; S3 rejects
// copying an object onto itself.
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

	_, err := b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		Key:        aws.String(b.key(dst)),
		CopySource: aws.String(copySource(b.bucket, b.key(src))),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s: %w", src, ezfs.ErrNotFound)
		}
		return fmt.Errorf("failed to copy object %s to %s: %w", src, dst, err)
	}
	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(src)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", src, err)
	}
	return nil
}

// copySource builds the URL-encoded CopySource value. Keys may contain
// URL-reserved characters, so each segment is escaped individually to keep
// the separators intact.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}

// ClientOptions holds AWS connection settings for NewClient.
type ClientOptions struct {
	// Region overrides the region from the environment or shared config.
	Region string
	// Profile selects a shared config profile.
	Profile string
	// Endpoint targets an S3-compatible service such as LocalStack.
	Endpoint string
	// UsePathStyle forces path-style addressing, required by most
	// S3-compatible servers.
	UsePathStyle bool
	// AccessKey and SecretKey supply static credentials when set.
	AccessKey string
	SecretKey string
	// SessionToken accompanies temporary static credentials.
	SessionToken string
}

// NewClient builds an *s3.Client from the default AWS credential chain,
// applying any overrides from opts.
func NewClient(ctx context.Context, opts ClientOptions) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}
