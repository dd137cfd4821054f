package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDisk(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	disk, err := Open(Options{Driver: "local", LocalRoot: root, LocalURL: "http://localhost:5000/storage/"})
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "menu/soup.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg"))
	assert.True(t, disk.Exists(ctx, "menu/soup.jpg"))

	data, err := os.ReadFile(filepath.Join(root, "menu", "soup.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "http://localhost:5000/storage/menu/soup.jpg", disk.URL("menu/soup.jpg"))

	require.NoError(t, disk.Delete(ctx, "menu/soup.jpg"))
	assert.False(t, disk.Exists(ctx, "menu/soup.jpg"))
	assert.NoError(t, disk.Delete(ctx, "menu/soup.jpg"), "deleting twice is fine")
}

func TestLocalDiskRejectsEscapes(t *testing.T) {
	disk, err := Open(Options{Driver: "local", LocalRoot: t.TempDir()})
	require.NoError(t, err)

	err = disk.Put(context.Background(), "../outside.txt", strings.NewReader("x"), "")
	assert.Error(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "ftp"})
	assert.Error(t, err)

	_, err = Open(Options{Driver: "s3"})
	assert.Error(t, err, "bucket is required")
}
