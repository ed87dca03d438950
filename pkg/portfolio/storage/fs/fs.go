package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// Backend is a filesystem implementation of the portfolio.BlobStore interface
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{baseDir: config.BaseDir}, nil
}

var _ portfolio.BlobStore = (*Backend)(nil)

// path resolves objectKey inside baseDir, rejecting keys that would escape it.
func (b *Backend) path(op, objectKey string) (string, error) {
	if !filepath.IsLocal(objectKey) {
		return "", &portfolio.StorageError{Key: objectKey, Op: op, Err: portfolio.Invalid("key", "invalid object key")}
	}
	return filepath.Join(b.baseDir, objectKey), nil
}

func mapErr(op, key string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return &portfolio.StorageError{Key: key, Op: op, Err: portfolio.ErrObjectNotFound}
	}
	return &portfolio.StorageError{Key: key, Op: op, Err: err}
}

// GetObjectMeta retrieves metadata for an object in the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*portfolio.ObjectMeta, error) {
	filePath, err := b.path("stat", objectKey)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, mapErr("stat", objectKey, err)
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(filePath); err == nil {
		contentType = mt.String()
	}

	return &portfolio.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime().UTC(),
	}, nil
}

// Upload writes the content to a temporary file and renames it into place,
// so readers never observe a partial object.
func (b *Backend) Upload(ctx context.Context, params portfolio.UploadParams, reader io.Reader) error {
	filePath, err := b.path("upload", params.ObjectKey)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Download downloads content directly from the filesystem
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path("download", objectKey)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, mapErr("download", objectKey, err)
	}
	return file, nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path("delete", objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		return mapErr("delete", objectKey, err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == filepath.Clean(b.baseDir) {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
