package minio

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ezfs"
)

// newTestBackend connects to a live MinIO server, or skips. Run one with:
//
//	docker run -p 9000:9000 minio/minio server /data
//
// and set MINIO_TEST_ENDPOINT=localhost:9000.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_TEST_ENDPOINT not set")
	}

	accessKey := os.Getenv("MINIO_TEST_ACCESS_KEY")
	if accessKey == "" {
		accessKey = "minioadmin"
	}
	secretKey := os.Getenv("MINIO_TEST_SECRET_KEY")
	if secretKey == "" {
		secretKey = "minioadmin"
	}

	client, err := NewClient(endpoint, accessKey, secretKey, false)
	require.NoError(t, err)

	ctx := context.Background()
	bucket := fmt.Sprintf("ezfs-test-%d", time.Now().UnixNano())
	require.NoError(t, client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}))
	t.Cleanup(func() {
		_ = client.RemoveBucket(context.Background(), bucket)
	})

	return New(client, bucket)
}

func TestBackend_Roundtrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	require.NoError(t, b.WriteBytes(ctx, "k", []byte("v")))

	data, err := b.ReadBytes(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))

	exists, err := b.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, b.Rename(ctx, "k", "k"), "same-path rename is a no-op")

	data, err = b.ReadBytes(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))

	require.NoError(t, b.Rename(ctx, "k", "k2"))

	_, err = b.ReadBytes(ctx, "k")
	require.ErrorIs(t, err, ezfs.ErrNotFound)

	require.NoError(t, b.Remove(ctx, "k2"))
	require.ErrorIs(t, b.Remove(ctx, "k2"), ezfs.ErrNotFound)
}

func TestBackend_NotFound(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	_, err := b.ReadBytes(ctx, "missing")
	require.ErrorIs(t, err, ezfs.ErrNotFound)

	exists, err := b.Exists(ctx, "missing")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBackend_WithFilesystem(t *testing.T) {
	ctx := context.Background()
	fs := ezfs.New(newTestBackend(t))

	require.NoError(t, fs.WithFile(ctx, "doc.txt", "w", func(f *ezfs.File) error {
		_, err := f.WriteString("self-hosted object store")
		return err
	}))

	var text string
	require.NoError(t, fs.WithFile(ctx, "doc.txt", "r", func(f *ezfs.File) error {
		var err error
		text, err = f.ReadText()
		return err
	}))
	require.Equal(t, "self-hosted object store", text)
}
