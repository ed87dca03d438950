package portfolio_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/memory"
	memorystorage "github.com/tendant/portfolio-content/pkg/portfolio/storage/memory"
)

var errWrite = errors.New("write failed")

// failingRepo fails image metadata writes while fail is set.
type failingRepo struct {
	*memory.Repository
	fail bool
}

func (r *failingRepo) CreateImage(ctx context.Context, image *portfolio.Image) error {
	if r.fail {
		return errWrite
	}
	return r.Repository.CreateImage(ctx, image)
}

func (r *failingRepo) UpdateImage(ctx context.Context, image *portfolio.Image) error {
	if r.fail {
		return errWrite
	}
	return r.Repository.UpdateImage(ctx, image)
}

func TestImageLifecycle(t *testing.T) {
	stores := map[string]func(repo *memory.Repository) portfolio.ImageStore{
		"inline": func(repo *memory.Repository) portfolio.ImageStore {
			return portfolio.NewInlineImageStore(repo)
		},
		"blob": func(repo *memory.Repository) portfolio.ImageStore {
			return portfolio.NewBlobImageStore(repo, memorystorage.New())
		},
	}
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := memory.New()
			svc, err := portfolio.New(portfolio.WithRepository(repo), portfolio.WithImageStore(newStore(repo)))
			require.NoError(t, err)

			img, err := svc.CreateImage(ctx, portfolio.CreateImageRequest{
				Name:   "Soundcloud Mockup",
				Upload: portfolio.Upload{Filename: "mock.PNG", Data: pngBytes},
			})
			require.NoError(t, err)
			assert.Equal(t, "soundcloud-mockup", img.Slug)
			assert.Equal(t, "soundcloud-mockup.PNG", img.Filename)
			assert.Equal(t, "image/png", img.MimeType)
			assert.Equal(t, int64(len(pngBytes)), img.Size)
			assert.Equal(t, portfolio.ImageCategoryGeneral, img.Category)
			assert.Nil(t, img.Data)

			_, err = svc.CreateImage(ctx, portfolio.CreateImageRequest{
				Name:   "Soundcloud Mockup",
				Upload: portfolio.Upload{Filename: "mock.png", Data: pngBytes},
			})
			assert.ErrorIs(t, err, portfolio.ErrImageSlugTaken)

			content, err := svc.GetImage(ctx, "soundcloud-mockup")
			require.NoError(t, err)
			assert.Equal(t, pngBytes, content.Data)
			assert.Equal(t, "image/png", content.MimeType)

			svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
			category := portfolio.ImageCategoryIcon
			replaced, err := svc.ReplaceImage(ctx, "soundcloud-mockup", portfolio.ReplaceImageRequest{
				Category: &category,
				Upload:   portfolio.Upload{Filename: "mock.svg", MimeType: "image/svg+xml", Data: svg},
			})
			require.NoError(t, err)
			assert.Equal(t, img.ID, replaced.ID)
			assert.Equal(t, img.CreatedAt, replaced.CreatedAt)
			assert.Equal(t, "Soundcloud Mockup", replaced.Name, "name is kept when not given")
			assert.Equal(t, portfolio.ImageCategoryIcon, replaced.Category)
			assert.Equal(t, "soundcloud-mockup.svg", replaced.Filename)

			content, err = svc.GetImage(ctx, "soundcloud-mockup")
			require.NoError(t, err)
			assert.Equal(t, svg, content.Data)
			assert.Equal(t, "image/svg+xml", content.MimeType)

			integrity, err := svc.CheckIntegrity(ctx)
			require.NoError(t, err)
			assert.Empty(t, integrity.MissingContent)

			require.NoError(t, svc.DeleteImage(ctx, "soundcloud-mockup"))
			_, err = svc.GetImage(ctx, "soundcloud-mockup")
			assert.ErrorIs(t, err, portfolio.ErrNotFound)
			assert.ErrorIs(t, svc.DeleteImage(ctx, "soundcloud-mockup"), portfolio.ErrNotFound)
		})
	}
}

func TestCreateImageErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	tests := []struct {
		name string
		req  portfolio.CreateImageRequest
		err  error
	}{
		{"no name or slug", portfolio.CreateImageRequest{Upload: portfolio.Upload{Data: pngBytes}}, portfolio.ErrValidation},
		{"empty upload", portfolio.CreateImageRequest{Slug: "empty"}, portfolio.ErrEmptyUpload},
		{"bad slug", portfolio.CreateImageRequest{Slug: "a/b", Upload: portfolio.Upload{Data: pngBytes}}, portfolio.ErrValidation},
		{"bad category", portfolio.CreateImageRequest{Slug: "ok", Category: "poster", Upload: portfolio.Upload{Data: pngBytes}}, portfolio.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateImage(ctx, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := svc.ReplaceImage(ctx, "missing", portfolio.ReplaceImageRequest{Upload: portfolio.Upload{Data: pngBytes}})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func TestListImages(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	for _, req := range []portfolio.CreateImageRequest{
		{Name: "Zeta", Category: portfolio.ImageCategoryIcon},
		{Name: "Alpha", Category: portfolio.ImageCategoryProject},
		{Name: "Beta", Category: portfolio.ImageCategoryIcon},
	} {
		req.Upload = portfolio.Upload{Filename: "x.png", Data: pngBytes}
		_, err := svc.CreateImage(ctx, req)
		require.NoError(t, err)
	}

	names := func(images []*portfolio.Image) []string {
		out := make([]string, len(images))
		for i, img := range images {
			out[i] = img.Name
		}
		return out
	}

	all, err := svc.ListImages(ctx, portfolio.ImageFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta", "Zeta"}, names(all))

	byCategory, err := svc.ListImages(ctx, portfolio.ImageFilter{SortBy: "category"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Zeta", "Alpha"}, names(byCategory))

	icons, err := svc.ListImages(ctx, portfolio.ImageFilter{Category: portfolio.ImageCategoryIcon})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Zeta"}, names(icons))

	_, err = svc.ListImages(ctx, portfolio.ImageFilter{SortBy: "size"})
	assert.ErrorIs(t, err, portfolio.ErrValidation)
}

func TestBlobPutRemovesBlobWhenMetadataWriteFails(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{Repository: memory.New(), fail: true}
	blobs := memorystorage.New()
	store := portfolio.NewBlobImageStore(repo, blobs)

	_, err := store.Put(ctx, portfolio.PutImageRequest{
		Slug:   "logo",
		Upload: portfolio.Upload{Filename: "logo.png", Data: pngBytes},
	})
	assert.ErrorIs(t, err, errWrite)
	assert.Empty(t, blobs.Keys())
}

func TestBlobPutRestoresPreviousBytesWhenMetadataWriteFails(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{Repository: memory.New()}
	blobs := memorystorage.New()
	store := portfolio.NewBlobImageStore(repo, blobs)

	_, err := store.Put(ctx, portfolio.PutImageRequest{
		Slug:   "logo",
		Upload: portfolio.Upload{Filename: "logo.png", Data: pngBytes},
	})
	require.NoError(t, err)

	repo.fail = true
	_, err = store.Put(ctx, portfolio.PutImageRequest{
		Slug:   "logo",
		Upload: portfolio.Upload{Filename: "logo.png", MimeType: "image/png", Data: []byte("\x89PNG\r\n\x1a\nreplacement")},
	})
	assert.ErrorIs(t, err, errWrite)

	content, err := store.Get(ctx, "logo")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, content.Data)
}

func TestBlobPutDeletesReplacedKey(t *testing.T) {
	ctx := context.Background()
	blobs := memorystorage.New()
	store := portfolio.NewBlobImageStore(memory.New(), blobs)

	_, err := store.Put(ctx, portfolio.PutImageRequest{Slug: "logo", Upload: portfolio.Upload{Filename: "logo.png", Data: pngBytes}})
	require.NoError(t, err)
	_, err = store.Put(ctx, portfolio.PutImageRequest{Slug: "logo", Upload: portfolio.Upload{Filename: "logo.jpg", MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"logo.jpg"}, blobs.Keys())
}

func TestIntegrityReportsMissingBlob(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	blobs := memorystorage.New()
	svc, err := portfolio.New(portfolio.WithRepository(repo), portfolio.WithImageStore(portfolio.NewBlobImageStore(repo, blobs)))
	require.NoError(t, err)

	createImage(t, svc, "logo")
	require.NoError(t, blobs.Delete(ctx, "logo.png"))

	report, err := svc.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"logo"}, report.MissingContent)

	_, err = svc.GetImage(ctx, "logo")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	var storageErr *portfolio.StorageError
	assert.ErrorAs(t, err, &storageErr)
}
