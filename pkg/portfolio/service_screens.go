package portfolio

import (
	"context"
	"strings"
)

func (s *service) AddScreen(ctx context.Context, key string, req AddScreenRequest) (*Project, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := Validate(req); err != nil {
		return nil, err
	}

	return s.mutateProject(ctx, key, func(p *Project) error {
		screen := Screen{Title: req.Title, Description: req.Description}
		img, err := s.screenImage(ctx, p, req.Title, req.Upload, req.ImageSlug)
		if err != nil {
			return err
		}
		if img != nil {
			screen.Image = img.Ref()
		}
		p.Screens = append(p.Screens, screen)
		return nil
	})
}

// UpdateScreen validates the index before touching any image, so an
// out-of-range request never leaves an uploaded image behind.
func (s *service) UpdateScreen(ctx context.Context, key string, index int, req UpdateScreenRequest) (*Project, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	return s.mutateProject(ctx, key, func(p *Project) error {
		if index < 0 || index >= len(p.Screens) {
			return ErrScreenIndexOutOfRange
		}
		screen := p.Screens[index]
		if v := trimmed(req.Title); v != "" {
			screen.Title = v
		}
		if v := trimmed(req.Description); v != "" {
			screen.Description = v
		}

		img, err := s.screenImage(ctx, p, screen.Title, req.Upload, trimmed(req.ImageSlug))
		if err != nil {
			return err
		}
		if img != nil {
			screen.Image = img.Ref()
		}
		p.Screens[index] = screen
		return nil
	})
}

func (s *service) DeleteScreen(ctx context.Context, key string, index int) (*Project, error) {
	return s.mutateProject(ctx, key, func(p *Project) error {
		if index < 0 || index >= len(p.Screens) {
			return ErrScreenIndexOutOfRange
		}
		p.Screens = append(p.Screens[:index], p.Screens[index+1:]...)
		return nil
	})
}

func (s *service) ReorderScreen(ctx context.Context, key string, req ReorderScreenRequest) (*Project, error) {
	return s.mutateProject(ctx, key, func(p *Project) error {
		n := len(p.Screens)
		if req.FromIndex < 0 || req.FromIndex >= n || req.ToIndex < 0 || req.ToIndex >= n {
			return ErrInvalidScreenIndex
		}
		moved := p.Screens[req.FromIndex]
		rest := append(p.Screens[:req.FromIndex:req.FromIndex], p.Screens[req.FromIndex+1:]...)
		out := make([]Screen, 0, n)
		out = append(out, rest[:req.ToIndex]...)
		out = append(out, moved)
		out = append(out, rest[req.ToIndex:]...)
		p.Screens = out
		return nil
	})
}

// screenImage stores an uploaded screen image under the slug derived from the
// project and screen title, or resolves an existing image by slug. It returns
// nil when neither is given.
func (s *service) screenImage(ctx context.Context, p *Project, title string, upload *Upload, imageSlug string) (*Image, error) {
	if !upload.Empty() {
		return s.images.Put(ctx, PutImageRequest{
			Slug:     ScreenImageSlug(p.Slug, title),
			Name:     title,
			Category: ImageCategoryProject,
			Upload:   *upload,
		})
	}
	if imageSlug != "" {
		return s.images.Stat(ctx, imageSlug)
	}
	return nil, nil
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
