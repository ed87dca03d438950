package portfolio_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

func screenTitles(p *portfolio.Project) []string {
	titles := make([]string, len(p.Screens))
	for i, s := range p.Screens {
		titles[i] = s.Title
	}
	return titles
}

func newProjectWithScreens(t *testing.T, svc portfolio.Service, titles ...string) *portfolio.Project {
	t.Helper()
	req := projectRequest("Atlas")
	for _, title := range titles {
		req.Screens = append(req.Screens, portfolio.ScreenInput{Title: title})
	}
	p, err := svc.CreateProject(context.Background(), req)
	require.NoError(t, err)
	return p
}

func TestAddScreen(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	project := newProjectWithScreens(t, svc)

	p, err := svc.AddScreen(ctx, project.ID, portfolio.AddScreenRequest{
		Title:       "Home Page",
		Description: "Landing",
		Upload:      &portfolio.Upload{Filename: "home.png", Data: pngBytes},
	})
	require.NoError(t, err)
	require.Len(t, p.Screens, 1)
	assert.Equal(t, "/images/project-atlas-home-page", p.Screens[0].ImageURL)

	img, err := svc.GetImageMetadata(ctx, "project-atlas-home-page")
	require.NoError(t, err)
	assert.Equal(t, portfolio.ImageCategoryProject, img.Category)
	assert.Equal(t, "Home Page", img.Name)

	createImage(t, svc, "shared")
	p, err = svc.AddScreen(ctx, "atlas", portfolio.AddScreenRequest{Title: "Shared", ImageSlug: "shared"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Home Page", "Shared"}, screenTitles(p))
	assert.Equal(t, "/images/shared", p.Screens[1].ImageURL)

	p, err = svc.AddScreen(ctx, "atlas", portfolio.AddScreenRequest{Title: "Text only"})
	require.NoError(t, err)
	assert.Empty(t, p.Screens[2].ImageURL)

	_, err = svc.AddScreen(ctx, "atlas", portfolio.AddScreenRequest{Title: " "})
	assert.ErrorIs(t, err, portfolio.ErrValidation)
	_, err = svc.AddScreen(ctx, "atlas", portfolio.AddScreenRequest{Title: "Ghost", ImageSlug: "missing"})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	_, err = svc.AddScreen(ctx, "nope", portfolio.AddScreenRequest{Title: "Home"})
	assert.ErrorIs(t, err, portfolio.ErrProjectNotFound)

	stored, err := svc.GetProject(ctx, "atlas")
	require.NoError(t, err)
	assert.Len(t, stored.Screens, 3)
}

func TestUpdateScreen(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	project := newProjectWithScreens(t, svc, "One", "Two")

	title := "Uno"
	blank := "  "
	p, err := svc.UpdateScreen(ctx, project.ID, 0, portfolio.UpdateScreenRequest{Title: &title, Description: &blank})
	require.NoError(t, err)
	assert.Equal(t, []string{"Uno", "Two"}, screenTitles(p))

	p, err = svc.UpdateScreen(ctx, project.ID, 1, portfolio.UpdateScreenRequest{
		Upload: &portfolio.Upload{Filename: "two.png", Data: pngBytes},
	})
	require.NoError(t, err)
	assert.Equal(t, "/images/project-atlas-two", p.Screens[1].ImageURL)

	_, err = svc.UpdateScreen(ctx, project.ID, 2, portfolio.UpdateScreenRequest{
		Title:  &title,
		Upload: &portfolio.Upload{Filename: "x.png", Data: pngBytes},
	})
	assert.ErrorIs(t, err, portfolio.ErrScreenIndexOutOfRange)
	_, err = svc.GetImageMetadata(ctx, "project-atlas-uno")
	assert.ErrorIs(t, err, portfolio.ErrNotFound, "an out-of-range update stores no image")

	_, err = svc.UpdateScreen(ctx, project.ID, -1, portfolio.UpdateScreenRequest{Title: &title})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func TestDeleteScreen(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	project := newProjectWithScreens(t, svc, "One", "Two", "Three")

	p, err := svc.DeleteScreen(ctx, project.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Three"}, screenTitles(p))

	_, err = svc.DeleteScreen(ctx, project.ID, 2)
	assert.ErrorIs(t, err, portfolio.ErrScreenIndexOutOfRange)
}

func TestReorderScreen(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
		err      error
	}{
		{"forward", 0, 2, []string{"B", "C", "A", "D"}, nil},
		{"backward", 3, 1, []string{"A", "D", "B", "C"}, nil},
		{"same index", 1, 1, []string{"A", "B", "C", "D"}, nil},
		{"to last", 1, 3, []string{"A", "C", "D", "B"}, nil},
		{"from out of range", 4, 0, nil, portfolio.ErrInvalidScreenIndex},
		{"negative to", 0, -1, nil, portfolio.ErrInvalidScreenIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			project := newProjectWithScreens(t, svc, "A", "B", "C", "D")

			p, err := svc.ReorderScreen(context.Background(), project.ID, portfolio.ReorderScreenRequest{FromIndex: tt.from, ToIndex: tt.to})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.ErrorIs(t, err, portfolio.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, screenTitles(p))
		})
	}
}

func TestConcurrentScreenAppends(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	project := newProjectWithScreens(t, svc)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddScreen(ctx, project.ID, portfolio.AddScreenRequest{Title: "Screen"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := svc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Screens, n, "no append is lost")
}
