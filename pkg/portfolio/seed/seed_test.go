package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/memory"
	"github.com/tendant/portfolio-content/pkg/portfolio/seed"
)

func newService(t *testing.T) portfolio.Service {
	t.Helper()
	svc, err := portfolio.New(portfolio.WithRepository(memory.New()))
	require.NoError(t, err)
	return svc
}

func TestApplySeedFile(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	doc, err := seed.LoadFile("testdata/portfolio.yaml")
	require.NoError(t, err)
	require.Len(t, doc.Projects, 1)

	result, err := seed.Apply(ctx, svc, doc, nil)
	require.NoError(t, err)
	assert.Equal(t, seed.Counts{Created: 2}, result.Images)
	assert.Equal(t, seed.Counts{Created: 2}, result.Skills)
	assert.Equal(t, seed.Counts{Created: 1}, result.Projects)

	img, err := svc.GetImageMetadata(ctx, "project-atlas-mockup")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, portfolio.ImageCategoryProject, img.Category)

	project, err := svc.GetProject(ctx, "atlas")
	require.NoError(t, err)
	assert.Equal(t, "/images/project-atlas-mockup", project.ThumbnailURL)
	require.Len(t, project.Screens, 1)
	assert.Equal(t, "Home", project.Screens[0].Title)
	assert.Equal(t, "/images/project-atlas-home", project.Screens[0].ImageURL)
	assert.True(t, project.Featured)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	doc, err := seed.LoadFile("testdata/portfolio.yaml")
	require.NoError(t, err)
	_, err = seed.Apply(ctx, svc, doc, nil)
	require.NoError(t, err)

	doc.Skills[0].Proficiency = 3
	doc.Projects[0].Screens[0].Title = "Overview"
	result, err := seed.Apply(ctx, svc, doc, nil)
	require.NoError(t, err)
	assert.Equal(t, seed.Counts{Updated: 2}, result.Images)
	assert.Equal(t, seed.Counts{Updated: 2}, result.Skills)
	assert.Equal(t, seed.Counts{Updated: 1}, result.Projects)

	skills, err := svc.ListSkills(ctx, portfolio.SkillFilter{})
	require.NoError(t, err)
	require.Len(t, skills, 2)
	for _, s := range skills {
		if s.Name == "Figma" {
			assert.Equal(t, 3, s.Proficiency)
		}
	}

	projects, err := svc.ListProjects(ctx, portfolio.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Len(t, projects[0].Screens, 1)
	assert.Equal(t, "Overview", projects[0].Screens[0].Title)

	images, err := svc.ListImages(ctx, portfolio.ImageFilter{})
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestApplyTrimsRemovedScreens(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	doc, err := seed.LoadFile("testdata/portfolio.yaml")
	require.NoError(t, err)
	doc.Projects[0].Screens = append(doc.Projects[0].Screens, seed.Screen{Title: "Detail", Image: "project-atlas-home"})
	_, err = seed.Apply(ctx, svc, doc, nil)
	require.NoError(t, err)

	doc.Projects[0].Screens = doc.Projects[0].Screens[:1]
	_, err = seed.Apply(ctx, svc, doc, nil)
	require.NoError(t, err)

	project, err := svc.GetProject(ctx, "atlas")
	require.NoError(t, err)
	require.Len(t, project.Screens, 1)
	assert.Equal(t, "Home", project.Screens[0].Title)
}

func TestApplyMissingImageFile(t *testing.T) {
	doc, err := seed.Parse([]byte("images:\n  - slug: missing\n    file: testdata/nope.png\n"))
	require.NoError(t, err)

	_, err = seed.Apply(context.Background(), newService(t), doc, nil)
	assert.ErrorContains(t, err, "image missing")
}

func TestApplyUnknownThumbnail(t *testing.T) {
	doc, err := seed.Parse([]byte(`
projects:
  - title: Ghost
    description: No images
    shortDescription: Ghost
    category: branding
    thumbnail: not-there
`))
	require.NoError(t, err)

	_, err = seed.Apply(context.Background(), newService(t), doc, nil)
	require.Error(t, err)
}
