// Package migrate copies portfolio content from one storage variant to
// another, for example from the document store with inline image bytes to a
// relational database with a blob bucket.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// Backend is one side of a migration.
type Backend struct {
	Repo   portfolio.Repository
	Images portfolio.ImageStore
}

// Counts tallies what happened to one entity type.
type Counts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Report summarizes a migration run.
type Report struct {
	DryRun   bool   `json:"dryRun"`
	Images   Counts `json:"images"`
	Skills   Counts `json:"skills"`
	Projects Counts `json:"projects"`
	Messages Counts `json:"messages"`
	Users    Counts `json:"users"`
	// Warnings lists records that were skipped or copied incompletely.
	Warnings []string `json:"warnings,omitempty"`
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Migrator copies every entity from Source to Target. Runs are idempotent:
// images, skills and projects are matched by slug or name and updated in
// place, messages and users are only created when absent.
type Migrator struct {
	Source Backend
	Target Backend
	// DryRun counts what would change without writing.
	DryRun bool
	Logger *slog.Logger
}

// Run performs the migration. It stops at the first storage error; content
// problems in single records are reported as warnings instead.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	if m.Source.Repo == nil || m.Target.Repo == nil {
		return nil, errors.New("source and target repositories are required")
	}
	if m.Source.Images == nil {
		m.Source.Images = portfolio.NewInlineImageStore(m.Source.Repo)
	}
	if m.Target.Images == nil {
		m.Target.Images = portfolio.NewInlineImageStore(m.Target.Repo)
	}
	if m.Logger == nil {
		m.Logger = slog.Default()
	}

	report := &Report{DryRun: m.DryRun}
	steps := []struct {
		name string
		run  func(context.Context, *Report) error
	}{
		{"images", m.migrateImages},
		{"skills", m.migrateSkills},
		{"projects", m.migrateProjects},
		{"messages", m.migrateMessages},
		{"users", m.migrateUsers},
	}
	for _, step := range steps {
		if err := step.run(ctx, report); err != nil {
			return report, fmt.Errorf("migrate %s: %w", step.name, err)
		}
		m.Logger.InfoContext(ctx, "migration step finished", "step", step.name, "dry_run", m.DryRun)
	}
	return report, nil
}

func (m *Migrator) migrateImages(ctx context.Context, report *Report) error {
	images, err := m.Source.Images.List(ctx, portfolio.ImageFilter{})
	if err != nil {
		return err
	}
	for _, img := range images {
		content, err := m.Source.Images.Get(ctx, img.Slug)
		if errors.Is(err, portfolio.ErrNotFound) {
			report.Images.Skipped++
			report.warn("image %s: bytes missing in source", img.Slug)
			continue
		}
		if err != nil {
			return err
		}

		_, err = m.Target.Images.Stat(ctx, img.Slug)
		exists := err == nil
		if err != nil && !errors.Is(err, portfolio.ErrNotFound) {
			return err
		}

		if !m.DryRun {
			_, err := m.Target.Images.Put(ctx, portfolio.PutImageRequest{
				Slug:     img.Slug,
				Name:     img.Name,
				Category: img.Category,
				Upload: portfolio.Upload{
					Filename: img.Filename,
					MimeType: content.MimeType,
					Data:     content.Data,
				},
			})
			if err != nil {
				return fmt.Errorf("put image %s: %w", img.Slug, err)
			}
		}
		if exists {
			report.Images.Updated++
		} else {
			report.Images.Created++
		}
	}
	return nil
}

func (m *Migrator) migrateSkills(ctx context.Context, report *Report) error {
	skills, err := m.Source.Repo.ListSkills(ctx, portfolio.SkillFilter{})
	if err != nil {
		return err
	}
	for _, skill := range skills {
		existing, err := m.Target.Repo.GetSkillByName(ctx, skill.Name)
		if err != nil && !errors.Is(err, portfolio.ErrNotFound) {
			return err
		}

		out := *skill
		if existing != nil {
			out.ID = existing.ID
			out.CreatedAt = existing.CreatedAt
			report.Skills.Updated++
		} else {
			report.Skills.Created++
		}
		if m.DryRun {
			continue
		}
		if existing != nil {
			err = m.Target.Repo.UpdateSkill(ctx, &out)
		} else {
			err = m.Target.Repo.CreateSkill(ctx, &out)
		}
		if err != nil {
			return fmt.Errorf("write skill %s: %w", skill.Name, err)
		}
	}
	return nil
}

func (m *Migrator) migrateProjects(ctx context.Context, report *Report) error {
	refs, err := m.targetImageRefs(ctx)
	if err != nil {
		return err
	}

	projects, err := m.Source.Repo.ListProjects(ctx, portfolio.ProjectFilter{})
	if err != nil {
		return err
	}
	for _, project := range projects {
		existing, err := m.Target.Repo.GetProjectBySlug(ctx, project.Slug)
		if err != nil && !errors.Is(err, portfolio.ErrNotFound) {
			return err
		}

		out := project.Clone()
		out.Thumbnail = resolveRef(out.Thumbnail, refs, func(slug string) {
			report.warn("project %s: thumbnail image %s not found, dropped", project.Slug, slug)
		})
		for i := range out.Screens {
			out.Screens[i].Image = resolveRef(out.Screens[i].Image, refs, func(slug string) {
				report.warn("project %s: screen %d image %s not found, dropped", project.Slug, i, slug)
			})
		}
		out.Normalize()

		if existing != nil {
			out.ID = existing.ID
			report.Projects.Updated++
		} else {
			report.Projects.Created++
		}
		if m.DryRun {
			continue
		}
		if existing != nil {
			err = m.Target.Repo.UpdateProject(ctx, out)
		} else {
			err = m.Target.Repo.CreateProject(ctx, out)
		}
		if err != nil {
			return fmt.Errorf("write project %s: %w", project.Slug, err)
		}
	}
	return nil
}

// targetImageRefs maps slug to the image reference valid in the target. In a
// dry run nothing was copied, so source images stand in for the ones that
// would have been.
func (m *Migrator) targetImageRefs(ctx context.Context) (map[string]*portfolio.ImageRef, error) {
	refs := make(map[string]*portfolio.ImageRef)
	stores := []portfolio.ImageStore{m.Target.Images}
	if m.DryRun {
		stores = append(stores, m.Source.Images)
	}
	for _, store := range stores {
		images, err := store.List(ctx, portfolio.ImageFilter{})
		if err != nil {
			return nil, err
		}
		for _, img := range images {
			if _, ok := refs[img.Slug]; !ok {
				refs[img.Slug] = img.Ref()
			}
		}
	}
	return refs, nil
}

func resolveRef(ref *portfolio.ImageRef, refs map[string]*portfolio.ImageRef, missing func(slug string)) *portfolio.ImageRef {
	if ref == nil {
		return nil
	}
	resolved, ok := refs[ref.Slug]
	if !ok {
		missing(ref.Slug)
		return nil
	}
	out := *resolved
	return &out
}

func (m *Migrator) migrateMessages(ctx context.Context, report *Report) error {
	messages, err := m.Source.Repo.ListMessages(ctx, portfolio.MessageFilter{})
	if err != nil {
		return err
	}
	for _, msg := range messages {
		_, err := m.Target.Repo.GetMessage(ctx, msg.ID)
		if err == nil {
			report.Messages.Skipped++
			continue
		}
		if !errors.Is(err, portfolio.ErrNotFound) {
			return err
		}
		report.Messages.Created++
		if m.DryRun {
			continue
		}
		if err := m.Target.Repo.CreateMessage(ctx, msg); err != nil {
			return fmt.Errorf("write message %s: %w", msg.ID, err)
		}
	}
	return nil
}

func (m *Migrator) migrateUsers(ctx context.Context, report *Report) error {
	users, err := m.Source.Repo.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		_, err := m.Target.Repo.GetUserByEmail(ctx, user.Email)
		if err == nil {
			report.Users.Skipped++
			continue
		}
		if !errors.Is(err, portfolio.ErrNotFound) {
			return err
		}
		report.Users.Created++
		if m.DryRun {
			continue
		}
		if err := m.Target.Repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("write user %s: %w", user.Email, err)
		}
	}
	return nil
}
