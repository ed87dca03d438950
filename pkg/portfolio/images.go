package portfolio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// buildImage applies a put request on top of the existing record, or starts a
// new one when existing is nil. Data is not set.
func buildImage(existing *Image, req PutImageRequest) (*Image, error) {
	if !IsSlug(req.Slug) {
		return nil, Invalid("slug", "slug may only contain lowercase letters, digits and hyphens")
	}
	if req.Upload.Empty() {
		return nil, ErrEmptyUpload
	}

	now := time.Now().UTC()
	mimeType := DetectMimeType(req.Upload.MimeType, req.Upload.Data)

	var img Image
	if existing != nil {
		img = *existing
	} else {
		img = Image{
			ID:        uuid.NewString(),
			Slug:      req.Slug,
			Name:      req.Slug,
			Category:  ImageCategoryGeneral,
			CreatedAt: now,
		}
	}
	if req.Name != "" {
		img.Name = req.Name
	}
	if req.Category != "" {
		img.Category = req.Category
	}
	img.MimeType = mimeType
	img.Size = int64(len(req.Upload.Data))
	img.Filename = ImageFilename(req.Slug, req.Upload.Filename, mimeType)
	img.Data = nil
	img.UpdatedAt = now
	return &img, nil
}

func lookupImage(ctx context.Context, repo ImageRepository, slug string) (*Image, error) {
	existing, err := repo.GetImageBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return existing, err
}

func stripData(img *Image) *Image {
	out := *img
	out.Data = nil
	return &out
}

// inlineImageStore keeps image bytes inside the metadata record, the way the
// document-store variant embeds them.
type inlineImageStore struct {
	repo ImageRepository
}

// NewInlineImageStore returns an ImageStore that keeps bytes in the repository record.
func NewInlineImageStore(repo ImageRepository) ImageStore {
	return &inlineImageStore{repo: repo}
}

func (s *inlineImageStore) Put(ctx context.Context, req PutImageRequest) (*Image, error) {
	existing, err := lookupImage(ctx, s.repo, req.Slug)
	if err != nil {
		return nil, err
	}
	img, err := buildImage(existing, req)
	if err != nil {
		return nil, err
	}
	img.Data = req.Upload.Data

	if existing == nil {
		err = s.repo.CreateImage(ctx, img)
	} else {
		err = s.repo.UpdateImage(ctx, img)
	}
	if err != nil {
		return nil, err
	}
	return stripData(img), nil
}

func (s *inlineImageStore) Get(ctx context.Context, slug string) (*ImageContent, error) {
	img, err := s.repo.GetImageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if len(img.Data) == 0 {
		return nil, &StorageError{Key: img.Filename, Op: "get", Err: ErrObjectNotFound}
	}
	return &ImageContent{Slug: img.Slug, MimeType: img.MimeType, Data: img.Data}, nil
}

func (s *inlineImageStore) Stat(ctx context.Context, slug string) (*Image, error) {
	img, err := s.repo.GetImageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return stripData(img), nil
}

func (s *inlineImageStore) List(ctx context.Context, filter ImageFilter) ([]*Image, error) {
	return s.repo.ListImages(ctx, filter)
}

func (s *inlineImageStore) Delete(ctx context.Context, slug string) error {
	return s.repo.DeleteImage(ctx, slug)
}

func (s *inlineImageStore) Exists(ctx context.Context, image *Image) (bool, error) {
	img, err := s.repo.GetImageBySlug(ctx, image.Slug)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(img.Data) > 0, nil
}

// blobImageStore keeps metadata in the repository and bytes in a BlobStore
// under the image filename.
type blobImageStore struct {
	repo  ImageRepository
	blobs BlobStore
}

// NewBlobImageStore returns an ImageStore that splits metadata and bytes.
func NewBlobImageStore(repo ImageRepository, blobs BlobStore) ImageStore {
	return &blobImageStore{repo: repo, blobs: blobs}
}

// Put uploads the bytes before writing metadata. When the metadata write
// fails the blob store is put back the way it was: the previous bytes are
// restored if the key did not change, otherwise the new blob is removed.
func (s *blobImageStore) Put(ctx context.Context, req PutImageRequest) (*Image, error) {
	existing, err := lookupImage(ctx, s.repo, req.Slug)
	if err != nil {
		return nil, err
	}
	img, err := buildImage(existing, req)
	if err != nil {
		return nil, err
	}
	key := img.Filename

	var previous []byte
	if existing != nil && existing.Filename == key {
		previous, err = s.read(ctx, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	params := UploadParams{ObjectKey: key, MimeType: img.MimeType}
	if err := s.blobs.Upload(ctx, params, bytes.NewReader(req.Upload.Data)); err != nil {
		return nil, &StorageError{Key: key, Op: "upload", Err: err}
	}

	if existing == nil {
		err = s.repo.CreateImage(ctx, img)
	} else {
		err = s.repo.UpdateImage(ctx, img)
	}
	if err != nil {
		// A conflict means a concurrent put created the slug and owns the key now.
		if !errors.Is(err, ErrConflict) {
			s.rollback(ctx, key, existing, previous)
		}
		return nil, err
	}

	if existing != nil && existing.Filename != "" && existing.Filename != key {
		if err := s.blobs.Delete(ctx, existing.Filename); err != nil && !errors.Is(err, ErrNotFound) {
			slog.Warn("Failed to delete replaced image blob", "key", existing.Filename, "error", err)
		}
	}
	return img, nil
}

func (s *blobImageStore) rollback(ctx context.Context, key string, existing *Image, previous []byte) {
	if previous != nil {
		params := UploadParams{ObjectKey: key, MimeType: existing.MimeType}
		if err := s.blobs.Upload(ctx, params, bytes.NewReader(previous)); err != nil {
			slog.Error("Failed to restore image blob", "key", key, "error", err)
		}
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Error("Failed to remove orphaned image blob", "key", key, "error", err)
	}
}

func (s *blobImageStore) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.blobs.Download(ctx, key)
	if err != nil {
		return nil, &StorageError{Key: key, Op: "download", Err: err}
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &StorageError{Key: key, Op: "read", Err: err}
	}
	return data, nil
}

func (s *blobImageStore) Get(ctx context.Context, slug string) (*ImageContent, error) {
	img, err := s.repo.GetImageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	data, err := s.read(ctx, img.Filename)
	if err != nil {
		return nil, err
	}
	return &ImageContent{Slug: img.Slug, MimeType: img.MimeType, Data: data}, nil
}

func (s *blobImageStore) Stat(ctx context.Context, slug string) (*Image, error) {
	img, err := s.repo.GetImageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return stripData(img), nil
}

func (s *blobImageStore) List(ctx context.Context, filter ImageFilter) ([]*Image, error) {
	return s.repo.ListImages(ctx, filter)
}

// Delete removes the metadata first so a failed blob delete leaves an
// unreferenced blob rather than a record without bytes.
func (s *blobImageStore) Delete(ctx context.Context, slug string) error {
	img, err := s.repo.GetImageBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteImage(ctx, slug); err != nil {
		return err
	}
	if img.Filename == "" {
		return nil
	}
	if err := s.blobs.Delete(ctx, img.Filename); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("Failed to delete image blob", "key", img.Filename, "error", err)
	}
	return nil
}

func (s *blobImageStore) Exists(ctx context.Context, image *Image) (bool, error) {
	if image.Filename == "" {
		return false, nil
	}
	_, err := s.blobs.GetObjectMeta(ctx, image.Filename)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
