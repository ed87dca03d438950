package portfolio

import (
	"context"
	"errors"
	"strings"
)

func (s *service) CreateImage(ctx context.Context, req CreateImageRequest) (*Image, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == "" {
		if name == "" {
			return nil, Invalid("name", "name or slug is required")
		}
		slug = Slugify(name)
	}
	if !IsSlug(slug) {
		return nil, Invalid("slug", "slug may only contain lowercase letters, digits and hyphens")
	}
	if req.Upload.Empty() {
		return nil, ErrEmptyUpload
	}

	_, err := s.images.Stat(ctx, slug)
	if err == nil {
		return nil, ErrImageSlugTaken
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	img, err := s.images.Put(ctx, PutImageRequest{
		Slug:     slug,
		Name:     name,
		Category: req.Category,
		Upload:   req.Upload,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "image created", "slug", img.Slug, "size", img.Size, "mime_type", img.MimeType)
	return img, nil
}

func (s *service) ReplaceImage(ctx context.Context, slug string, req ReplaceImageRequest) (*Image, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.images.Stat(ctx, slug); err != nil {
		return nil, err
	}
	if req.Upload.Empty() {
		return nil, ErrEmptyUpload
	}

	put := PutImageRequest{Slug: slug, Upload: req.Upload}
	if req.Name != nil {
		put.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		put.Category = *req.Category
	}
	img, err := s.images.Put(ctx, put)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "image replaced", "slug", img.Slug, "size", img.Size, "mime_type", img.MimeType)
	return img, nil
}

func (s *service) GetImage(ctx context.Context, slug string) (*ImageContent, error) {
	return s.images.Get(ctx, slug)
}

func (s *service) GetImageMetadata(ctx context.Context, slug string) (*Image, error) {
	return s.images.Stat(ctx, slug)
}

func (s *service) ListImages(ctx context.Context, filter ImageFilter) ([]*Image, error) {
	switch filter.SortBy {
	case "", "name", "category":
	default:
		return nil, Invalid("sort", "sort must be one of: name category")
	}
	if filter.Category != "" && !validImageCategory(filter.Category) {
		return nil, Invalid("category", "category must be one of: project skill general icon")
	}
	return s.images.List(ctx, filter)
}

func (s *service) DeleteImage(ctx context.Context, slug string) error {
	if err := s.images.Delete(ctx, slug); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "image deleted", "slug", slug)
	return nil
}

func validImageCategory(c ImageCategory) bool {
	switch c {
	case ImageCategoryProject, ImageCategorySkill, ImageCategoryGeneral, ImageCategoryIcon:
		return true
	}
	return false
}
