package s3

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ezfs"
)

// fakeClient keeps objects in a map and mimics the S3 error surface.
type fakeClient struct {
	objects map[string][]byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: make(map[string][]byte)}
}

func (c *fakeClient) GetObject(_ context.Context, params *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	data, ok := c.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (c *fakeClient) PutObject(_ context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	c.objects[aws.ToString(params.Key)] = data
	return &awss3.PutObjectOutput{}, nil
}

func (c *fakeClient) HeadObject(_ context.Context, params *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if _, ok := c.objects[aws.ToString(params.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadObjectOutput{}, nil
}

func (c *fakeClient) DeleteObject(_ context.Context, params *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	// Deleting a missing key succeeds, as on real S3.
	delete(c.objects, aws.ToString(params.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (c *fakeClient) CopyObject(_ context.Context, params *awss3.CopyObjectInput, _ ...func(*awss3.Options)) (*awss3.CopyObjectOutput, error) {
	source := aws.ToString(params.CopySource)
	key, err := url.PathUnescape(source[strings.Index(source, "/")+1:])
	if err != nil {
		return nil, err
	}
	data, ok := c.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	c.objects[aws.ToString(params.Key)] = data
	return &awss3.CopyObjectOutput{}, nil
}

func TestBackend_Roundtrip(t *testing.T) {
	ctx := context.Background()
	b := New(newFakeClient(), "bucket")

	require.NoError(t, b.WriteBytes(ctx, "k", []byte("v")))

	data, err := b.ReadBytes(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))

	exists, err := b.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, b.Remove(ctx, "k"))

	exists, err = b.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBackend_NotFound(t *testing.T) {
	ctx := context.Background()
	b := New(newFakeClient(), "bucket")

	_, err := b.ReadBytes(ctx, "missing")
	require.ErrorIs(t, err, ezfs.ErrNotFound)
	require.ErrorIs(t, b.Remove(ctx, "missing"), ezfs.ErrNotFound)
	require.ErrorIs(t, b.Rename(ctx, "missing", "dst"), ezfs.ErrNotFound)
}

func TestBackend_Rename(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	b := New(client, "bucket")

	require.NoError(t, b.WriteBytes(ctx, "src", []byte("v")))
	require.NoError(t, b.WriteBytes(ctx, "dst", []byte("old")))
	require.NoError(t, b.Rename(ctx, "src", "dst"))

	_, err := b.ReadBytes(ctx, "src")
	require.ErrorIs(t, err, ezfs.ErrNotFound)

	data, err := b.ReadBytes(ctx, "dst")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))
}

func TestBackend_RenameSamePath(t *testing.T) {
	ctx := context.Background()
	b := New(newFakeClient(), "bucket")

	require.NoError(t, b.WriteBytes(ctx, "p", []byte("keep me")))
	// Must not reach CopyObject: S3 rejects copying an object onto itself.
	require.NoError(t, b.Rename(ctx, "p", "p"))

	data, err := b.ReadBytes(ctx, "p")
	require.NoError(t, err)
	require.Equal(t, "keep me", string(data))

	require.ErrorIs(t, b.Rename(ctx, "missing", "missing"), ezfs.ErrNotFound)
}

func TestBackend_RenameReservedCharacters(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	b := New(client, "bucket")

	src := "reports/q1 2026?draft#1.txt"
	require.NoError(t, b.WriteBytes(ctx, src, []byte("v")))
	require.NoError(t, b.Rename(ctx, src, "reports/final.txt"))

	data, err := b.ReadBytes(ctx, "reports/final.txt")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))
}

func TestCopySource_Escaping(t *testing.T) {
	require.Equal(t,
		"bucket/reports/q1%202026%3Fdraft%231.txt",
		copySource("bucket", "reports/q1 2026?draft#1.txt"),
	)
}

func TestBackend_Prefix(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	b := New(client, "bucket", WithPrefix("team/artifacts/"))

	require.NoError(t, b.WriteBytes(ctx, "report.txt", []byte("v")))
	require.Contains(t, client.objects, "team/artifacts/report.txt")

	data, err := b.ReadBytes(ctx, "report.txt")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))
}

func TestBackend_WithFilesystem(t *testing.T) {
	ctx := context.Background()
	fs := ezfs.New(New(newFakeClient(), "bucket"))

	require.NoError(t, fs.WithFile(ctx, "doc.txt", "w", func(f *ezfs.File) error {
		_, err := f.WriteString("object store content")
		return err
	}))

	var text string
	require.NoError(t, fs.WithFile(ctx, "doc.txt", "r", func(f *ezfs.File) error {
		var err error
		text, err = f.ReadText()
		return err
	}))
	require.Equal(t, "object store content", text)
}
