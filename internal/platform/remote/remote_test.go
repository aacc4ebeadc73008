package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall_WrapsFailureAsOpError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Call("products.insert", func() error { return cause })

	require.Error(t, err)
	assert.True(t, IsRemoteFailure(err))
	assert.False(t, IsNotConfigured(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "products.insert: connection refused", err.Error())

	assert.NoError(t, Call("products.select", func() error { return nil }))
}

func TestNotConfiguredIsNotARemoteFailure(t *testing.T) {
	err := fmt.Errorf("create product: %w", ErrNotConfigured)
	assert.True(t, IsNotConfigured(err))
	assert.False(t, IsRemoteFailure(err))
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPQFeed_NotConfigured(t *testing.T) {
	_, err := NewPQFeed("").Listen(context.Background(), "catalog_changes")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDiskBucket_UploadReturnsPublicURL(t *testing.T) {
	root := t.TempDir()
	b, err := NewDiskBucket(root, "http://localhost:8080/storage/")
	require.NoError(t, err)

	url, err := b.Upload(context.Background(), "public/1700000000000_chicken.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/storage/public/1700000000000_chicken.png", url)

	got, err := os.ReadFile(filepath.Join(root, "public", "1700000000000_chicken.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))
}

func TestDiskBucket_KeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	b, err := NewDiskBucket(root, "http://cdn")
	require.NoError(t, err)

	url, err := b.Upload(context.Background(), "../../etc/passwd", "", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/etc/passwd", url)
	_, err = os.Stat(filepath.Join(root, "etc", "passwd"))
	assert.NoError(t, err)
}
