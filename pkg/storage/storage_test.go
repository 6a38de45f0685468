package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocalDisk(t.TempDir(), "http://cdn.test/storage/")
	require.NoError(t, err)

	key := storage.ObjectKey("products/7", "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "products/7/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	require.NoError(t, disk.Put(ctx, key, strings.NewReader("img"), "image/jpeg"))

	ok, err := disk.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := disk.Get(ctx, key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "img", string(data))
	assert.Equal(t, "http://cdn.test/storage/"+key, disk.URL(key))

	require.NoError(t, disk.Delete(ctx, key))
	require.NoError(t, disk.Delete(ctx, key), "deleting twice is fine")
	_, err = disk.Get(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalDiskRejectsTraversal(t *testing.T) {
	disk, err := storage.NewLocalDisk(t.TempDir(), "")
	require.NoError(t, err)

	err = disk.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, storage.ErrInvalidPath)
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DISK", "ftp")
	_, err := storage.Open(context.Background())
	assert.Error(t, err)
}
