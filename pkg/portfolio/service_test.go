package portfolio_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/memory"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n0000000000000000")

func newService(t *testing.T, opts ...portfolio.Option) portfolio.Service {
	t.Helper()
	svc, err := portfolio.New(append([]portfolio.Option{portfolio.WithRepository(memory.New())}, opts...)...)
	require.NoError(t, err)
	return svc
}

func createImage(t *testing.T, svc portfolio.Service, slug string) *portfolio.Image {
	t.Helper()
	img, err := svc.CreateImage(context.Background(), portfolio.CreateImageRequest{
		Slug:     slug,
		Category: portfolio.ImageCategoryProject,
		Upload:   portfolio.Upload{Filename: slug + ".png", Data: pngBytes},
	})
	require.NoError(t, err)
	return img
}

func projectRequest(title string) portfolio.CreateProjectRequest {
	return portfolio.CreateProjectRequest{
		Title:            title,
		Description:      "Long description of " + title,
		ShortDescription: title,
		Category:         portfolio.ProjectCategoryUXDesign,
		Technologies:     []string{" Figma ", "", "Sketch"},
	}
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []portfolio.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			expectError: true,
		},
		{
			name:    "with repository should succeed",
			options: []portfolio.Option{portfolio.WithRepository(memory.New())},
		},
		{
			name: "with every option should succeed",
			options: []portfolio.Option{
				portfolio.WithRepository(memory.New()),
				portfolio.WithLocker(portfolio.NewLocalLocker()),
				portfolio.WithClock(time.Now),
				portfolio.WithIDGenerator(func() string { return "fixed" }),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := portfolio.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(t, portfolio.WithClock(func() time.Time { return now }))
	cover := createImage(t, svc, "cover")
	createImage(t, svc, "home")

	req := projectRequest("Soundcloud  Redesign!")
	req.ThumbnailSlug = "cover"
	req.Screens = []portfolio.ScreenInput{{Title: " Home ", ImageSlug: "home"}, {Title: "Empty"}}
	project, err := svc.CreateProject(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "soundcloud-redesign", project.Slug)
	assert.Equal(t, []string{"Figma", "Sketch"}, project.Technologies)
	assert.Equal(t, cover.ID, project.Thumbnail.ID)
	assert.Equal(t, "/images/cover", project.ThumbnailURL)
	require.Len(t, project.Screens, 2)
	assert.Equal(t, "Home", project.Screens[0].Title)
	assert.Equal(t, "/images/home", project.Screens[0].ImageURL)
	assert.Empty(t, project.Screens[1].ImageURL)
	assert.Equal(t, now, project.CreatedAt)

	byID, err := svc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	bySlug, err := svc.GetProject(ctx, "SOUNDCLOUD-REDESIGN")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, bySlug.ID)
}

func TestCreateProjectErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := svc.CreateProject(ctx, projectRequest("Atlas"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*portfolio.CreateProjectRequest)
		kind   error
	}{
		{"missing title", func(r *portfolio.CreateProjectRequest) { r.Title = "  " }, portfolio.ErrValidation},
		{"bad category", func(r *portfolio.CreateProjectRequest) { r.Category = "games" }, portfolio.ErrValidation},
		{"bad url", func(r *portfolio.CreateProjectRequest) { r.LiveURL = "not a url" }, portfolio.ErrValidation},
		{"bad slug", func(r *portfolio.CreateProjectRequest) { r.Slug = "bad slug!" }, portfolio.ErrValidation},
		{"unknown thumbnail", func(r *portfolio.CreateProjectRequest) { r.ThumbnailSlug = "missing" }, portfolio.ErrValidation},
		{"unknown screen image", func(r *portfolio.CreateProjectRequest) {
			r.Screens = []portfolio.ScreenInput{{Title: "Home", ImageSlug: "missing"}}
		}, portfolio.ErrValidation},
		{"duplicate slug", func(r *portfolio.CreateProjectRequest) { r.Title = "ATLAS" }, portfolio.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := projectRequest("Other")
			tt.mutate(&req)
			_, err := svc.CreateProject(ctx, req)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	atlas, err := svc.CreateProject(ctx, projectRequest("Atlas"))
	require.NoError(t, err)
	_, err = svc.CreateProject(ctx, projectRequest("Beacon"))
	require.NoError(t, err)

	title := "Atlas v2"
	featured := true
	technologies := []string{"Go"}
	updated, err := svc.UpdateProject(ctx, "atlas", portfolio.UpdateProjectRequest{
		Title:        &title,
		Featured:     &featured,
		Technologies: &technologies,
	})
	require.NoError(t, err)
	assert.Equal(t, atlas.ID, updated.ID)
	assert.Equal(t, "Atlas v2", updated.Title)
	assert.Equal(t, "atlas", updated.Slug, "slug is kept when only the title changes")
	assert.True(t, updated.Featured)
	assert.Equal(t, []string{"Go"}, updated.Technologies)
	assert.Equal(t, atlas.Description, updated.Description)

	taken := "beacon"
	_, err = svc.UpdateProject(ctx, atlas.ID, portfolio.UpdateProjectRequest{Slug: &taken})
	assert.ErrorIs(t, err, portfolio.ErrProjectSlugTaken)

	empty := ""
	_, err = svc.UpdateProject(ctx, atlas.ID, portfolio.UpdateProjectRequest{Description: &empty})
	assert.ErrorIs(t, err, portfolio.ErrValidation)

	_, err = svc.UpdateProject(ctx, "missing", portfolio.UpdateProjectRequest{Title: &title})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func TestUpdateProjectClearsLinks(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	req := projectRequest("Atlas")
	req.LiveURL = "https://atlas.example.com"
	req.GithubURL = "https://github.com/example/atlas"
	_, err := svc.CreateProject(ctx, req)
	require.NoError(t, err)

	bad := "not a url"
	_, err = svc.UpdateProject(ctx, "atlas", portfolio.UpdateProjectRequest{LiveURL: &bad})
	assert.ErrorIs(t, err, portfolio.ErrValidation)

	empty := ""
	updated, err := svc.UpdateProject(ctx, "atlas", portfolio.UpdateProjectRequest{LiveURL: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.LiveURL)
	assert.Equal(t, "https://github.com/example/atlas", updated.GithubURL)

	stored, err := svc.GetProject(ctx, "atlas")
	require.NoError(t, err)
	assert.Empty(t, stored.LiveURL)
}

func TestGetProjectMatchesCreate(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	req := projectRequest("Bare")
	req.Technologies = nil
	created, err := svc.CreateProject(ctx, req)
	require.NoError(t, err)

	fetched, err := svc.GetProject(ctx, "bare")
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
	assert.NotNil(t, fetched.Technologies)
	assert.NotNil(t, fetched.Images)
	assert.NotNil(t, fetched.Screens)
}

func TestListAndDeleteProjects(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	first := projectRequest("First")
	first.Order = 1
	first.Featured = true
	second := projectRequest("Second")
	second.Order = 2
	second.Category = portfolio.ProjectCategoryBranding
	for _, req := range []portfolio.CreateProjectRequest{second, first} {
		_, err := svc.CreateProject(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.ListProjects(ctx, portfolio.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Slug)

	featured := true
	list, err := svc.ListProjects(ctx, portfolio.ProjectFilter{Featured: &featured})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Slug)

	list, err = svc.ListProjects(ctx, portfolio.ProjectFilter{Category: portfolio.ProjectCategoryBranding})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Slug)

	_, err = svc.ListProjects(ctx, portfolio.ProjectFilter{Category: "games"})
	assert.ErrorIs(t, err, portfolio.ErrValidation)

	require.NoError(t, svc.DeleteProject(ctx, "first"))
	_, err = svc.GetProject(ctx, "first")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProject(ctx, "first"), portfolio.ErrNotFound)
}

func TestThumbnail(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	project, err := svc.CreateProject(ctx, projectRequest("Atlas"))
	require.NoError(t, err)

	p, img, err := svc.UploadThumbnail(ctx, project.ID, portfolio.Upload{Filename: "mock.png", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "project-atlas-mockup", img.Slug)
	assert.Equal(t, "project-atlas-mockup.png", img.Filename)
	assert.Equal(t, "/images/project-atlas-mockup", p.ThumbnailURL)

	_, _, err = svc.UploadThumbnail(ctx, project.ID, portfolio.Upload{})
	assert.ErrorIs(t, err, portfolio.ErrEmptyUpload)

	createImage(t, svc, "existing")
	p, img, err = svc.SetThumbnail(ctx, "atlas", "existing")
	require.NoError(t, err)
	assert.Equal(t, "existing", img.Slug)
	assert.Equal(t, "/images/existing", p.ThumbnailURL)

	_, _, err = svc.SetThumbnail(ctx, "atlas", "missing")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	_, _, err = svc.SetThumbnail(ctx, "atlas", " ")
	assert.ErrorIs(t, err, portfolio.ErrValidation)

	stored, err := svc.GetProject(ctx, "atlas")
	require.NoError(t, err)
	assert.Equal(t, "/images/existing", stored.ThumbnailURL, "failed calls leave the project unchanged")
}

func TestSkills(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	figma, err := svc.CreateSkill(ctx, portfolio.CreateSkillRequest{
		Name: "Figma", Icon: "figma.svg", Category: portfolio.SkillCategoryDesign, Proficiency: 5,
	})
	require.NoError(t, err)
	_, err = svc.CreateSkill(ctx, portfolio.CreateSkillRequest{
		Name: "Go", Icon: "go.svg", Category: portfolio.SkillCategoryDevelopment, Proficiency: 4,
	})
	require.NoError(t, err)

	_, err = svc.CreateSkill(ctx, portfolio.CreateSkillRequest{
		Name: "Figma", Icon: "x.svg", Category: portfolio.SkillCategoryDesign, Proficiency: 3,
	})
	assert.ErrorIs(t, err, portfolio.ErrSkillNameTaken)

	_, err = svc.CreateSkill(ctx, portfolio.CreateSkillRequest{
		Name: "Sketch", Icon: "sketch.svg", Category: portfolio.SkillCategoryDesign, Proficiency: 6,
	})
	assert.ErrorIs(t, err, portfolio.ErrValidation)

	design, err := svc.ListSkills(ctx, portfolio.SkillFilter{Category: portfolio.SkillCategoryDesign})
	require.NoError(t, err)
	require.Len(t, design, 1)
	assert.Equal(t, "Figma", design[0].Name)

	_, err = svc.ListSkills(ctx, portfolio.SkillFilter{Category: "cooking"})
	assert.ErrorIs(t, err, portfolio.ErrValidation)

	proficiency := 3
	updated, err := svc.UpdateSkill(ctx, figma.ID, portfolio.UpdateSkillRequest{Proficiency: &proficiency})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Proficiency)
	assert.Equal(t, "Figma", updated.Name)

	name := "Go"
	_, err = svc.UpdateSkill(ctx, figma.ID, portfolio.UpdateSkillRequest{Name: &name})
	assert.ErrorIs(t, err, portfolio.ErrConflict)

	require.NoError(t, svc.DeleteSkill(ctx, figma.ID))
	_, err = svc.GetSkill(ctx, figma.ID)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	msg, err := svc.CreateMessage(ctx, portfolio.CreateMessageRequest{
		Name: " Ann ", Email: "Ann@Example.COM", Subject: "Hello", Message: "Nice work",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", msg.Name)
	assert.Equal(t, "ann@example.com", msg.Email)
	assert.False(t, msg.Read)

	_, err = svc.CreateMessage(ctx, portfolio.CreateMessageRequest{
		Name: "Bob", Email: "not-an-email", Subject: "Hi", Message: "Hi",
	})
	var verr *portfolio.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "email", verr.Fields[0].Field)

	read, err := svc.MarkMessageRead(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)
	again, err := svc.MarkMessageRead(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, again.Read)

	unread := false
	list, err := svc.ListMessages(ctx, portfolio.MessageFilter{Read: &unread})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.DeleteMessage(ctx, msg.ID))
	_, err = svc.GetMessage(ctx, msg.ID)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func TestProjectStats(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for _, title := range []string{"One", "Two"} {
		req := projectRequest(title)
		req.Featured = title == "One"
		req.Screens = []portfolio.ScreenInput{{Title: "Home"}}
		_, err := svc.CreateProject(ctx, req)
		require.NoError(t, err)
	}
	req := projectRequest("Brand")
	req.Category = portfolio.ProjectCategoryBranding
	req.Technologies = []string{"Illustrator"}
	_, err := svc.CreateProject(ctx, req)
	require.NoError(t, err)

	stats, err := svc.ProjectStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, portfolio.CategoryStats{
		Category:        portfolio.ProjectCategoryUXDesign,
		Count:           2,
		FeaturedCount:   1,
		AvgTechnologies: 2,
		TotalScreens:    2,
	}, stats.ByCategory[0])
	assert.Equal(t, portfolio.StatsTotals{
		TotalProjects:      3,
		TotalFeatured:      1,
		TotalScreens:       2,
		UniqueTechnologies: 3,
	}, stats.Totals)
}

func TestCheckIntegrity(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	createImage(t, svc, "cover")
	createImage(t, svc, "home")

	req := projectRequest("Atlas")
	req.ThumbnailSlug = "cover"
	req.Screens = []portfolio.ScreenInput{{Title: "Home", ImageSlug: "home"}}
	_, err := svc.CreateProject(ctx, req)
	require.NoError(t, err)

	report, err := svc.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())

	require.NoError(t, svc.DeleteImage(ctx, "cover"))
	require.NoError(t, svc.DeleteImage(ctx, "home"))

	report, err = svc.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, []portfolio.DanglingRef{{ProjectSlug: "atlas", ScreenIndex: -1, ImageSlug: "cover"}}, report.DanglingThumbnails)
	assert.Equal(t, []portfolio.DanglingRef{{ProjectSlug: "atlas", ScreenIndex: 0, ImageSlug: "home"}}, report.DanglingScreens)
}
