package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.ShortDescription = strings.TrimSpace(req.ShortDescription)
	req.Technologies = cleanList(req.Technologies)
	if err := Validate(req); err != nil {
		return nil, err
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if !IsSlug(slug) {
		return nil, Invalid("slug", "slug may only contain lowercase letters, digits and hyphens")
	}
	if err := s.ensureProjectSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}

	now := s.now()
	p := &Project{
		ID:               s.newID(),
		Title:            req.Title,
		Slug:             slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Category:         req.Category,
		Technologies:     req.Technologies,
		Images:           append([]string(nil), req.Images...),
		LiveURL:          strings.TrimSpace(req.LiveURL),
		GithubURL:        strings.TrimSpace(req.GithubURL),
		Featured:         req.Featured,
		Order:            req.Order,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if req.ThumbnailSlug != "" {
		img, err := s.images.Stat(ctx, req.ThumbnailSlug)
		if errors.Is(err, ErrNotFound) {
			return nil, Invalid("thumbnailSlug", "image %q not found", req.ThumbnailSlug)
		}
		if err != nil {
			return nil, err
		}
		p.Thumbnail = img.Ref()
	}

	for i, in := range req.Screens {
		screen := Screen{Title: strings.TrimSpace(in.Title), Description: strings.TrimSpace(in.Description)}
		if in.ImageSlug != "" {
			img, err := s.images.Stat(ctx, in.ImageSlug)
			if errors.Is(err, ErrNotFound) {
				return nil, Invalid(fmt.Sprintf("screens[%d].imageSlug", i), "image %q not found", in.ImageSlug)
			}
			if err != nil {
				return nil, err
			}
			screen.Image = img.Ref()
		}
		p.Screens = append(p.Screens, screen)
	}

	p.Normalize()
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "project created", "id", p.ID, "slug", p.Slug)
	return p, nil
}

// GetProject looks the key up as an id first and as a slug second.
func (s *service) GetProject(ctx context.Context, key string) (*Project, error) {
	p, err := s.repo.GetProject(ctx, key)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.repo.GetProjectBySlug(ctx, strings.ToLower(key))
}

func (s *service) ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	if filter.Category != "" && !validProjectCategory(filter.Category) {
		return nil, Invalid("category", "category must be one of: ux-design ui-design branding web-development")
	}
	return s.repo.ListProjects(ctx, filter)
}

func (s *service) UpdateProject(ctx context.Context, key string, req UpdateProjectRequest) (*Project, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	return s.mutateProject(ctx, key, func(p *Project) error {
		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
		}
		if req.Slug != nil {
			slug := strings.ToLower(strings.TrimSpace(*req.Slug))
			if !IsSlug(slug) {
				return Invalid("slug", "slug may only contain lowercase letters, digits and hyphens")
			}
			if slug != p.Slug {
				if err := s.ensureProjectSlugFree(ctx, slug, p.ID); err != nil {
					return err
				}
				p.Slug = slug
			}
		}
		if req.Description != nil {
			p.Description = strings.TrimSpace(*req.Description)
		}
		if req.ShortDescription != nil {
			p.ShortDescription = strings.TrimSpace(*req.ShortDescription)
		}
		if req.Category != nil {
			p.Category = *req.Category
		}
		if req.Technologies != nil {
			p.Technologies = cleanList(*req.Technologies)
		}
		if req.Images != nil {
			p.Images = append([]string(nil), (*req.Images)...)
		}
		if req.LiveURL != nil {
			p.LiveURL = strings.TrimSpace(*req.LiveURL)
		}
		if req.GithubURL != nil {
			p.GithubURL = strings.TrimSpace(*req.GithubURL)
		}
		if req.Featured != nil {
			p.Featured = *req.Featured
		}
		if req.Order != nil {
			p.Order = *req.Order
		}
		return nil
	})
}

func (s *service) DeleteProject(ctx context.Context, key string) error {
	p, err := s.GetProject(ctx, key)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, p.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "project deleted", "id", p.ID, "slug", p.Slug)
	return nil
}

func (s *service) SetThumbnail(ctx context.Context, key, imageSlug string) (*Project, *Image, error) {
	if strings.TrimSpace(imageSlug) == "" {
		return nil, nil, Invalid("imageSlug", "imageSlug is required")
	}
	var img *Image
	p, err := s.mutateProject(ctx, key, func(p *Project) error {
		var err error
		img, err = s.images.Stat(ctx, imageSlug)
		if err != nil {
			return err
		}
		p.Thumbnail = img.Ref()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return p, img, nil
}

func (s *service) UploadThumbnail(ctx context.Context, key string, upload Upload) (*Project, *Image, error) {
	if upload.Empty() {
		return nil, nil, ErrEmptyUpload
	}
	var img *Image
	p, err := s.mutateProject(ctx, key, func(p *Project) error {
		var err error
		img, err = s.images.Put(ctx, PutImageRequest{
			Slug:     MockupImageSlug(p.Slug),
			Name:     p.Slug + " Mockup",
			Category: ImageCategoryProject,
			Upload:   upload,
		})
		if err != nil {
			return err
		}
		p.Thumbnail = img.Ref()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return p, img, nil
}

// mutateProject runs fn on a fresh copy of the project while holding the
// project's lock, then writes the whole record back. fn must not write the
// project itself.
func (s *service) mutateProject(ctx context.Context, key string, fn func(p *Project) error) (*Project, error) {
	current, err := s.GetProject(ctx, key)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, "project:"+current.ID)
	if err != nil {
		return nil, fmt.Errorf("lock project %s: %w", current.ID, err)
	}
	defer unlock()

	p, err := s.repo.GetProject(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	p.Normalize()
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ensureProjectSlugFree(ctx context.Context, slug, ownID string) error {
	existing, err := s.repo.GetProjectBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownID {
		return ErrProjectSlugTaken
	}
	return nil
}

func validProjectCategory(c ProjectCategory) bool {
	switch c {
	case ProjectCategoryUXDesign, ProjectCategoryUIDesign, ProjectCategoryBranding, ProjectCategoryWebDevelopment:
		return true
	}
	return false
}

// cleanList trims every entry and drops empty ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
