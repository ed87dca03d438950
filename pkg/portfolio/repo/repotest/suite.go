// Package repotest holds the behavioural test suite every
// portfolio.Repository implementation must pass.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// Factory returns an empty repository for one subtest.
type Factory func(t *testing.T) portfolio.Repository

// Run exercises the full Repository contract against repositories from newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("Images", func(t *testing.T) { testImages(t, newRepo(t)) })
	t.Run("Projects", func(t *testing.T) { testProjects(t, newRepo(t)) })
	t.Run("Skills", func(t *testing.T) { testSkills(t, newRepo(t)) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, newRepo(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newRepo(t)) })
}

// stamp is a timestamp every backend can round-trip exactly.
func stamp(offset time.Duration) time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(offset)
}

func assertSameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func newImage(slug string, category portfolio.ImageCategory, data []byte) *portfolio.Image {
	return &portfolio.Image{
		ID:        uuid.NewString(),
		Name:      slug + " name",
		Slug:      slug,
		Category:  category,
		MimeType:  "image/png",
		Size:      int64(len(data)),
		Filename:  slug + ".png",
		Data:      data,
		CreatedAt: stamp(0),
		UpdatedAt: stamp(0),
	}
}

func testImages(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()
	logo := newImage("logo", portfolio.ImageCategoryGeneral, []byte("logo-bytes"))

	t.Run("CreateAndGet", func(t *testing.T) {
		require.NoError(t, repo.CreateImage(ctx, logo))

		got, err := repo.GetImageBySlug(ctx, "logo")
		require.NoError(t, err)
		assert.Equal(t, logo.ID, got.ID)
		assert.Equal(t, "logo name", got.Name)
		assert.Equal(t, portfolio.ImageCategoryGeneral, got.Category)
		assert.Equal(t, "image/png", got.MimeType)
		assert.Equal(t, int64(10), got.Size)
		assert.Equal(t, "logo.png", got.Filename)
		assert.Equal(t, []byte("logo-bytes"), got.Data)
		assertSameTime(t, logo.CreatedAt, got.CreatedAt)

		byID, err := repo.GetImage(ctx, logo.ID)
		require.NoError(t, err)
		assert.Equal(t, "logo", byID.Slug)
	})

	t.Run("DuplicateSlug", func(t *testing.T) {
		dup := newImage("logo", portfolio.ImageCategoryIcon, []byte("x"))
		err := repo.CreateImage(ctx, dup)
		assert.ErrorIs(t, err, portfolio.ErrConflict)
	})

	t.Run("UpdateKeepsDataWhenNil", func(t *testing.T) {
		got, err := repo.GetImageBySlug(ctx, "logo")
		require.NoError(t, err)
		got.Data = nil
		got.Name = "Renamed"
		got.UpdatedAt = stamp(time.Hour)
		require.NoError(t, repo.UpdateImage(ctx, got))

		after, err := repo.GetImageBySlug(ctx, "logo")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", after.Name)
		assert.Equal(t, []byte("logo-bytes"), after.Data)
		assertSameTime(t, stamp(time.Hour), after.UpdatedAt)
	})

	t.Run("UpdateReplacesData", func(t *testing.T) {
		got, err := repo.GetImageBySlug(ctx, "logo")
		require.NoError(t, err)
		got.Data = []byte("new")
		got.Size = 3
		got.MimeType = "image/jpeg"
		require.NoError(t, repo.UpdateImage(ctx, got))

		after, err := repo.GetImageBySlug(ctx, "logo")
		require.NoError(t, err)
		assert.Equal(t, logo.ID, after.ID)
		assert.Equal(t, []byte("new"), after.Data)
		assert.Equal(t, int64(3), after.Size)
		assert.Equal(t, "image/jpeg", after.MimeType)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := repo.UpdateImage(ctx, newImage("ghost", portfolio.ImageCategoryGeneral, nil))
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
	})

	t.Run("ListExcludesDataAndFilters", func(t *testing.T) {
		require.NoError(t, repo.CreateImage(ctx, newImage("figma", portfolio.ImageCategorySkill, []byte("f"))))
		require.NoError(t, repo.CreateImage(ctx, newImage("aaa-shot", portfolio.ImageCategoryProject, []byte("a"))))

		all, err := repo.ListImages(ctx, portfolio.ImageFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		for _, img := range all {
			assert.Nil(t, img.Data)
		}
		assert.Equal(t, []string{"Renamed", "aaa-shot name", "figma name"}, imageNames(all))

		byCategory, err := repo.ListImages(ctx, portfolio.ImageFilter{SortBy: "category"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Renamed", "aaa-shot name", "figma name"}, imageNames(byCategory))
		assert.Equal(t, portfolio.ImageCategoryGeneral, byCategory[0].Category)
		assert.Equal(t, portfolio.ImageCategoryProject, byCategory[1].Category)

		skills, err := repo.ListImages(ctx, portfolio.ImageFilter{Category: portfolio.ImageCategorySkill})
		require.NoError(t, err)
		require.Len(t, skills, 1)
		assert.Equal(t, "figma", skills[0].Slug)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteImage(ctx, "figma"))
		_, err := repo.GetImageBySlug(ctx, "figma")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteImage(ctx, "figma"), portfolio.ErrNotFound)
	})
}

func imageNames(images []*portfolio.Image) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = img.Name
	}
	return out
}

func newProject(slug string, category portfolio.ProjectCategory, order int, created time.Time) *portfolio.Project {
	p := &portfolio.Project{
		ID:               uuid.NewString(),
		Title:            "Project " + slug,
		Slug:             slug,
		Description:      "d",
		ShortDescription: "sd",
		Category:         category,
		Technologies:     []string{"Figma", "React"},
		Order:            order,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	p.Normalize()
	return p
}

func testProjects(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()

	alpha := newProject("alpha", portfolio.ProjectCategoryBranding, 1, stamp(0))
	alpha.Thumbnail = &portfolio.ImageRef{ID: "img-1", Slug: "project-alpha-mockup"}
	alpha.Images = []string{"legacy.png"}
	alpha.Screens = []portfolio.Screen{
		{Title: "Home", Description: "Landing", Image: &portfolio.ImageRef{ID: "img-2", Slug: "project-alpha-home"}},
		{Title: "Text only", Description: "No image"},
	}
	alpha.LiveURL = "https://alpha.example.com"
	alpha.Featured = true
	alpha.Normalize()

	t.Run("CreateAndGet", func(t *testing.T) {
		require.NoError(t, repo.CreateProject(ctx, alpha))

		for _, get := range []func() (*portfolio.Project, error){
			func() (*portfolio.Project, error) { return repo.GetProject(ctx, alpha.ID) },
			func() (*portfolio.Project, error) { return repo.GetProjectBySlug(ctx, "alpha") },
		} {
			got, err := get()
			require.NoError(t, err)
			assert.Equal(t, alpha.ID, got.ID)
			assert.Equal(t, "Project alpha", got.Title)
			assert.Equal(t, portfolio.ProjectCategoryBranding, got.Category)
			assert.Equal(t, []string{"Figma", "React"}, got.Technologies)
			assert.Equal(t, []string{"legacy.png"}, got.Images)
			assert.Equal(t, alpha.Thumbnail, got.Thumbnail)
			assert.Equal(t, "/images/project-alpha-mockup", got.ThumbnailURL)
			assert.Equal(t, alpha.Screens, got.Screens)
			assert.Equal(t, "https://alpha.example.com", got.LiveURL)
			assert.Empty(t, got.GithubURL)
			assert.True(t, got.Featured)
			assert.Equal(t, 1, got.Order)
			assertSameTime(t, alpha.CreatedAt, got.CreatedAt)
		}
	})

	t.Run("EmptyCollections", func(t *testing.T) {
		bare := newProject("bare", portfolio.ProjectCategoryUIDesign, 0, stamp(time.Minute))
		bare.Technologies = nil
		bare.Normalize()
		require.NoError(t, repo.CreateProject(ctx, bare))

		got, err := repo.GetProjectBySlug(ctx, "bare")
		require.NoError(t, err)
		assert.NotNil(t, got.Technologies)
		assert.Empty(t, got.Technologies)
		assert.NotNil(t, got.Images)
		assert.Empty(t, got.Images)
		assert.NotNil(t, got.Screens)
		assert.Empty(t, got.Screens)
		assert.Nil(t, got.Thumbnail)
		assert.Empty(t, got.ThumbnailURL)
	})

	t.Run("DuplicateSlug", func(t *testing.T) {
		err := repo.CreateProject(ctx, newProject("alpha", portfolio.ProjectCategoryBranding, 0, stamp(0)))
		assert.ErrorIs(t, err, portfolio.ErrConflict)
	})

	t.Run("UpdateRewritesScreens", func(t *testing.T) {
		got, err := repo.GetProject(ctx, alpha.ID)
		require.NoError(t, err)
		got.Screens = []portfolio.Screen{got.Screens[1], got.Screens[0]}
		got.Slug = "alpha-renamed"
		got.UpdatedAt = stamp(2 * time.Hour)
		got.Normalize()
		require.NoError(t, repo.UpdateProject(ctx, got))

		after, err := repo.GetProjectBySlug(ctx, "alpha-renamed")
		require.NoError(t, err)
		require.Len(t, after.Screens, 2)
		assert.Equal(t, "Text only", after.Screens[0].Title)
		assert.Equal(t, "/images/project-alpha-home", after.Screens[1].ImageURL)
		assertSameTime(t, stamp(2*time.Hour), after.UpdatedAt)

		_, err = repo.GetProjectBySlug(ctx, "alpha")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
	})

	t.Run("UpdateSlugConflict", func(t *testing.T) {
		got, err := repo.GetProjectBySlug(ctx, "bare")
		require.NoError(t, err)
		got.Slug = "alpha-renamed"
		assert.ErrorIs(t, repo.UpdateProject(ctx, got), portfolio.ErrConflict)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := repo.UpdateProject(ctx, newProject("ghost", portfolio.ProjectCategoryBranding, 0, stamp(0)))
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
	})

	t.Run("ListOrderAndFilters", func(t *testing.T) {
		older := newProject("older", portfolio.ProjectCategoryBranding, 0, stamp(-time.Hour))
		require.NoError(t, repo.CreateProject(ctx, older))

		all, err := repo.ListProjects(ctx, portfolio.ProjectFilter{})
		require.NoError(t, err)
		// order 0 first (newest first among equals), then order 1
		assert.Equal(t, []string{"bare", "older", "alpha-renamed"}, projectSlugs(all))

		branding, err := repo.ListProjects(ctx, portfolio.ProjectFilter{Category: portfolio.ProjectCategoryBranding})
		require.NoError(t, err)
		assert.Equal(t, []string{"older", "alpha-renamed"}, projectSlugs(branding))

		featured := true
		onlyFeatured, err := repo.ListProjects(ctx, portfolio.ProjectFilter{Featured: &featured})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha-renamed"}, projectSlugs(onlyFeatured))

		notFeatured := false
		rest, err := repo.ListProjects(ctx, portfolio.ProjectFilter{Featured: &notFeatured})
		require.NoError(t, err)
		assert.Equal(t, []string{"bare", "older"}, projectSlugs(rest))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteProject(ctx, alpha.ID))
		_, err := repo.GetProject(ctx, alpha.ID)
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteProject(ctx, alpha.ID), portfolio.ErrNotFound)
	})
}

func projectSlugs(projects []*portfolio.Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.Slug
	}
	return out
}

func testSkills(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()
	newSkill := func(name string, category portfolio.SkillCategory, proficiency, order int) *portfolio.Skill {
		return &portfolio.Skill{
			ID:          uuid.NewString(),
			Name:        name,
			Icon:        "/images/" + name,
			Category:    category,
			Proficiency: proficiency,
			Order:       order,
			CreatedAt:   stamp(0),
			UpdatedAt:   stamp(0),
		}
	}

	figma := newSkill("Figma", portfolio.SkillCategoryDesign, 5, 1)
	goSkill := newSkill("Go", portfolio.SkillCategoryDevelopment, 3, 0)
	git := newSkill("Git", portfolio.SkillCategoryTools, 4, 1)

	t.Run("Create", func(t *testing.T) {
		for _, s := range []*portfolio.Skill{figma, goSkill, git} {
			require.NoError(t, repo.CreateSkill(ctx, s))
		}
		err := repo.CreateSkill(ctx, newSkill("Figma", portfolio.SkillCategoryTools, 1, 0))
		assert.ErrorIs(t, err, portfolio.ErrConflict)
	})

	t.Run("Get", func(t *testing.T) {
		got, err := repo.GetSkill(ctx, figma.ID)
		require.NoError(t, err)
		assert.Equal(t, "Figma", got.Name)
		assert.Equal(t, 5, got.Proficiency)

		byName, err := repo.GetSkillByName(ctx, "Git")
		require.NoError(t, err)
		assert.Equal(t, git.ID, byName.ID)

		_, err = repo.GetSkillByName(ctx, "Cobol")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
	})

	t.Run("ListOrder", func(t *testing.T) {
		all, err := repo.ListSkills(ctx, portfolio.SkillFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Go", "Figma", "Git"}, skillNames(all))

		tools, err := repo.ListSkills(ctx, portfolio.SkillFilter{Category: portfolio.SkillCategoryTools})
		require.NoError(t, err)
		assert.Equal(t, []string{"Git"}, skillNames(tools))
	})

	t.Run("Update", func(t *testing.T) {
		goSkill.Proficiency = 4
		goSkill.Name = "Golang"
		require.NoError(t, repo.UpdateSkill(ctx, goSkill))
		got, err := repo.GetSkill(ctx, goSkill.ID)
		require.NoError(t, err)
		assert.Equal(t, "Golang", got.Name)
		assert.Equal(t, 4, got.Proficiency)

		clash := *git
		clash.Name = "Figma"
		assert.ErrorIs(t, repo.UpdateSkill(ctx, &clash), portfolio.ErrConflict)
		assert.ErrorIs(t, repo.UpdateSkill(ctx, newSkill("Ghost", portfolio.SkillCategoryTools, 1, 0)), portfolio.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteSkill(ctx, git.ID))
		_, err := repo.GetSkill(ctx, git.ID)
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteSkill(ctx, git.ID), portfolio.ErrNotFound)
	})
}

func skillNames(skills []*portfolio.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = s.Name
	}
	return out
}

func testMessages(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()
	newMessage := func(subject string, created time.Time) *portfolio.Message {
		return &portfolio.Message{
			ID:        uuid.NewString(),
			Name:      "Ada",
			Email:     "ada@example.com",
			Subject:   subject,
			Message:   "Hello",
			CreatedAt: created,
		}
	}

	first := newMessage("first", stamp(0))
	second := newMessage("second", stamp(time.Minute))

	t.Run("CreateAndGet", func(t *testing.T) {
		require.NoError(t, repo.CreateMessage(ctx, first))
		require.NoError(t, repo.CreateMessage(ctx, second))
		assert.ErrorIs(t, repo.CreateMessage(ctx, first), portfolio.ErrConflict)

		got, err := repo.GetMessage(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Subject)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.False(t, got.Read)
		assertSameTime(t, first.CreatedAt, got.CreatedAt)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		all, err := repo.ListMessages(ctx, portfolio.MessageFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "second", all[0].Subject)
		assert.Equal(t, "first", all[1].Subject)
	})

	t.Run("ReadFilter", func(t *testing.T) {
		first.Read = true
		require.NoError(t, repo.UpdateMessage(ctx, first))

		read := true
		onlyRead, err := repo.ListMessages(ctx, portfolio.MessageFilter{Read: &read})
		require.NoError(t, err)
		require.Len(t, onlyRead, 1)
		assert.Equal(t, first.ID, onlyRead[0].ID)

		unread := false
		onlyUnread, err := repo.ListMessages(ctx, portfolio.MessageFilter{Read: &unread})
		require.NoError(t, err)
		require.Len(t, onlyUnread, 1)
		assert.Equal(t, second.ID, onlyUnread[0].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteMessage(ctx, first.ID))
		_, err := repo.GetMessage(ctx, first.ID)
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteMessage(ctx, first.ID), portfolio.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateMessage(ctx, first), portfolio.ErrNotFound)
	})
}

func testUsers(t *testing.T, repo portfolio.Repository) {
	ctx := context.Background()
	admin := &portfolio.User{
		ID:           uuid.NewString(),
		Email:        "admin@example.com",
		Name:         "Admin",
		PasswordHash: "hash",
		Salt:         "salt",
		CreatedAt:    stamp(0),
		UpdatedAt:    stamp(0),
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		require.NoError(t, repo.CreateUser(ctx, admin))

		got, err := repo.GetUser(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", got.Email)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.Equal(t, "salt", got.Salt)

		byEmail, err := repo.GetUserByEmail(ctx, "ADMIN@example.com")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, byEmail.ID)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		dup := *admin
		dup.ID = uuid.NewString()
		assert.ErrorIs(t, repo.CreateUser(ctx, &dup), portfolio.ErrConflict)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := repo.GetUser(ctx, uuid.NewString())
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
		_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, portfolio.ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		users, err := repo.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, admin.ID, users[0].ID)
	})
}
