package fs_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	fsstorage "github.com/tendant/portfolio-content/pkg/portfolio/storage/fs"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFSBackend(t *testing.T) {
	baseDir := t.TempDir()
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: baseDir})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("UploadAndDownload", func(t *testing.T) {
		err := backend.Upload(ctx, portfolio.UploadParams{ObjectKey: "logo.png", MimeType: "image/png"}, bytes.NewReader(pngHeader))
		require.NoError(t, err)

		reader, err := backend.Download(ctx, "logo.png")
		require.NoError(t, err)
		defer reader.Close()
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)
	})

	t.Run("GetObjectMetaSniffsType", func(t *testing.T) {
		meta, err := backend.GetObjectMeta(ctx, "logo.png")
		require.NoError(t, err)
		assert.Equal(t, int64(len(pngHeader)), meta.Size)
		assert.Equal(t, "image/png", meta.ContentType)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, portfolio.UploadParams{ObjectKey: "logo.png"}, strings.NewReader("v2")))
		reader, err := backend.Download(ctx, "logo.png")
		require.NoError(t, err)
		defer reader.Close()
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "v2", string(data))

		entries, err := os.ReadDir(baseDir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary files must not be left behind")
	})

	t.Run("NestedKeyCleanup", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, portfolio.UploadParams{ObjectKey: "a/b/c.txt"}, strings.NewReader("x")))
		require.NoError(t, backend.Delete(ctx, "a/b/c.txt"))
		_, err := os.Stat(filepath.Join(baseDir, "a"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("RejectsEscapingKeys", func(t *testing.T) {
		err := backend.Upload(ctx, portfolio.UploadParams{ObjectKey: "../escape.txt"}, strings.NewReader("x"))
		assert.ErrorIs(t, err, portfolio.ErrValidation)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := backend.Download(ctx, "missing.png")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		_, err = backend.GetObjectMeta(ctx, "missing.png")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, "missing.png"), portfolio.ErrNotFound)
	})
}

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := fsstorage.New(fsstorage.Config{})
	assert.EqualError(t, err, "base directory is required")
}
