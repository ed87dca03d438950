// Package seed loads a YAML description of portfolio content and applies it
// through the service. Applying the same document twice updates records in
// place instead of duplicating them.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tendant/portfolio-content/pkg/portfolio"
	"gopkg.in/yaml.v3"
)

// Document is a seed file.
type Document struct {
	Images   []Image   `yaml:"images"`
	Skills   []Skill   `yaml:"skills"`
	Projects []Project `yaml:"projects"`

	// baseDir resolves relative image paths.
	baseDir string
}

// Image is an image file to upload under Slug.
type Image struct {
	Slug     string                  `yaml:"slug"`
	Name     string                  `yaml:"name"`
	Category portfolio.ImageCategory `yaml:"category"`
	File     string                  `yaml:"file"`
}

type Skill struct {
	Name        string                  `yaml:"name"`
	Icon        string                  `yaml:"icon"`
	Category    portfolio.SkillCategory `yaml:"category"`
	Proficiency int                     `yaml:"proficiency"`
	Order       int                     `yaml:"order"`
}

// Project refers to images by slug; they must be listed under images or
// already exist.
type Project struct {
	Title            string                    `yaml:"title"`
	Slug             string                    `yaml:"slug"`
	Description      string                    `yaml:"description"`
	ShortDescription string                    `yaml:"shortDescription"`
	Category         portfolio.ProjectCategory `yaml:"category"`
	Technologies     []string                  `yaml:"technologies"`
	Thumbnail        string                    `yaml:"thumbnail"`
	Screens          []Screen                  `yaml:"screens"`
	LiveURL          string                    `yaml:"liveUrl"`
	GithubURL        string                    `yaml:"githubUrl"`
	Featured         bool                      `yaml:"featured"`
	Order            int                       `yaml:"order"`
}

type Screen struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

// LoadFile parses a seed file. Image paths are resolved against the file's directory.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	doc.baseDir = filepath.Dir(path)
	return doc, nil
}

// Parse decodes a seed document. Relative image paths resolve against the
// working directory.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Counts tallies created and updated records.
type Counts struct {
	Created int
	Updated int
}

// Result summarizes an Apply.
type Result struct {
	Images   Counts
	Skills   Counts
	Projects Counts
}

// Apply writes the document through svc: images first so projects can refer
// to them, then skills, then projects.
func Apply(ctx context.Context, svc portfolio.Service, doc *Document, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	result := &Result{}

	for _, img := range doc.Images {
		created, err := applyImage(ctx, svc, doc.baseDir, img)
		if err != nil {
			return result, fmt.Errorf("image %s: %w", img.Slug, err)
		}
		count(&result.Images, created)
		logger.DebugContext(ctx, "seeded image", "slug", img.Slug, "created", created)
	}

	skills, err := svc.ListSkills(ctx, portfolio.SkillFilter{})
	if err != nil {
		return result, err
	}
	byName := make(map[string]*portfolio.Skill, len(skills))
	for _, s := range skills {
		byName[s.Name] = s
	}
	for _, skill := range doc.Skills {
		created, err := applySkill(ctx, svc, byName[skill.Name], skill)
		if err != nil {
			return result, fmt.Errorf("skill %s: %w", skill.Name, err)
		}
		count(&result.Skills, created)
	}

	for _, project := range doc.Projects {
		created, err := applyProject(ctx, svc, project)
		if err != nil {
			return result, fmt.Errorf("project %s: %w", project.Title, err)
		}
		count(&result.Projects, created)
		logger.DebugContext(ctx, "seeded project", "title", project.Title, "created", created)
	}

	logger.InfoContext(ctx, "seed applied",
		"images", len(doc.Images), "skills", len(doc.Skills), "projects", len(doc.Projects))
	return result, nil
}

func count(c *Counts, created bool) {
	if created {
		c.Created++
	} else {
		c.Updated++
	}
}

func applyImage(ctx context.Context, svc portfolio.Service, baseDir string, img Image) (bool, error) {
	path := img.File
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	upload := portfolio.Upload{Filename: filepath.Base(path), Data: data}

	_, err = svc.GetImageMetadata(ctx, img.Slug)
	switch {
	case err == nil:
		req := portfolio.ReplaceImageRequest{Upload: upload}
		if img.Name != "" {
			req.Name = &img.Name
		}
		if img.Category != "" {
			req.Category = &img.Category
		}
		_, err = svc.ReplaceImage(ctx, img.Slug, req)
		return false, err
	case errors.Is(err, portfolio.ErrNotFound):
		_, err = svc.CreateImage(ctx, portfolio.CreateImageRequest{
			Name:     img.Name,
			Slug:     img.Slug,
			Category: img.Category,
			Upload:   upload,
		})
		return true, err
	default:
		return false, err
	}
}

func applySkill(ctx context.Context, svc portfolio.Service, existing *portfolio.Skill, skill Skill) (bool, error) {
	if existing == nil {
		_, err := svc.CreateSkill(ctx, portfolio.CreateSkillRequest{
			Name:        skill.Name,
			Icon:        skill.Icon,
			Category:    skill.Category,
			Proficiency: skill.Proficiency,
			Order:       skill.Order,
		})
		return true, err
	}
	_, err := svc.UpdateSkill(ctx, existing.ID, portfolio.UpdateSkillRequest{
		Icon:        &skill.Icon,
		Category:    &skill.Category,
		Proficiency: &skill.Proficiency,
		Order:       &skill.Order,
	})
	return false, err
}

func applyProject(ctx context.Context, svc portfolio.Service, project Project) (bool, error) {
	slug := project.Slug
	if slug == "" {
		slug = portfolio.Slugify(project.Title)
	}

	existing, err := svc.GetProject(ctx, slug)
	if errors.Is(err, portfolio.ErrNotFound) {
		screens := make([]portfolio.ScreenInput, len(project.Screens))
		for i, s := range project.Screens {
			screens[i] = portfolio.ScreenInput{Title: s.Title, Description: s.Description, ImageSlug: s.Image}
		}
		_, err := svc.CreateProject(ctx, portfolio.CreateProjectRequest{
			Title:            project.Title,
			Slug:             slug,
			Description:      project.Description,
			ShortDescription: project.ShortDescription,
			Category:         project.Category,
			Technologies:     project.Technologies,
			ThumbnailSlug:    project.Thumbnail,
			Screens:          screens,
			LiveURL:          project.LiveURL,
			GithubURL:        project.GithubURL,
			Featured:         project.Featured,
			Order:            project.Order,
		})
		return true, err
	}
	if err != nil {
		return false, err
	}

	technologies := project.Technologies
	if technologies == nil {
		technologies = []string{}
	}
	_, err = svc.UpdateProject(ctx, existing.ID, portfolio.UpdateProjectRequest{
		Title:            &project.Title,
		Description:      &project.Description,
		ShortDescription: &project.ShortDescription,
		Category:         &project.Category,
		Technologies:     &technologies,
		LiveURL:          &project.LiveURL,
		GithubURL:        &project.GithubURL,
		Featured:         &project.Featured,
		Order:            &project.Order,
	})
	if err != nil {
		return false, err
	}
	if project.Thumbnail != "" {
		if _, _, err := svc.SetThumbnail(ctx, existing.ID, project.Thumbnail); err != nil {
			return false, err
		}
	}
	return false, syncScreens(ctx, svc, existing, project.Screens)
}

// syncScreens makes the stored screens match want position by position,
// trimming or appending at the end.
func syncScreens(ctx context.Context, svc portfolio.Service, current *portfolio.Project, want []Screen) error {
	for i := len(current.Screens) - 1; i >= len(want); i-- {
		if _, err := svc.DeleteScreen(ctx, current.ID, i); err != nil {
			return err
		}
	}
	for i, s := range want {
		title, description, image := s.Title, s.Description, s.Image
		if i < len(current.Screens) {
			req := portfolio.UpdateScreenRequest{Title: &title, Description: &description}
			if image != "" {
				req.ImageSlug = &image
			}
			if _, err := svc.UpdateScreen(ctx, current.ID, i, req); err != nil {
				return err
			}
			continue
		}
		if _, err := svc.AddScreen(ctx, current.ID, portfolio.AddScreenRequest{
			Title:       title,
			Description: description,
			ImageSlug:   image,
		}); err != nil {
			return err
		}
	}
	return nil
}
