package portfolio

import (
	"context"
)

// CheckIntegrity compares project references against the image store. It is
// read-only; dangling references are reported, not repaired.
func (s *service) CheckIntegrity(ctx context.Context) (*IntegrityReport, error) {
	projects, err := s.repo.ListProjects(ctx, ProjectFilter{})
	if err != nil {
		return nil, err
	}
	images, err := s.images.List(ctx, ImageFilter{})
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(images))
	for _, img := range images {
		known[img.Slug] = true
	}

	report := &IntegrityReport{
		DanglingThumbnails: []DanglingRef{},
		DanglingScreens:    []DanglingRef{},
		MissingContent:     []string{},
	}
	for _, p := range projects {
		if p.Thumbnail != nil && !known[p.Thumbnail.Slug] {
			report.DanglingThumbnails = append(report.DanglingThumbnails, DanglingRef{
				ProjectSlug: p.Slug,
				ScreenIndex: -1,
				ImageSlug:   p.Thumbnail.Slug,
			})
		}
		for i, screen := range p.Screens {
			if screen.Image != nil && !known[screen.Image.Slug] {
				report.DanglingScreens = append(report.DanglingScreens, DanglingRef{
					ProjectSlug: p.Slug,
					ScreenIndex: i,
					ImageSlug:   screen.Image.Slug,
				})
			}
		}
	}

	for _, img := range images {
		ok, err := s.images.Exists(ctx, img)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.MissingContent = append(report.MissingContent, img.Slug)
		}
	}

	if !report.OK() {
		s.logger.WarnContext(ctx, "integrity check found problems",
			"dangling_thumbnails", len(report.DanglingThumbnails),
			"dangling_screens", len(report.DanglingScreens),
			"missing_content", len(report.MissingContent))
	}
	return report, nil
}
