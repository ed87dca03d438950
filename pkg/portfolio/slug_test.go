package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Soundcloud Mockup", "soundcloud-mockup"},
		{"  Home \t Page  ", "home-page"},
		{"What's New?", "whats-new"},
		{"already-a-slug", "already-a-slug"},
		{"Café Menu", "caf-menu"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestDerivedImageSlugs(t *testing.T) {
	assert.True(t, IsSlug("project-atlas-1"))
	assert.False(t, IsSlug(""))
	assert.False(t, IsSlug("Upper"))

	assert.Equal(t, "project-soundcloud-mockup", MockupImageSlug("soundcloud"))
	assert.Equal(t, "project-soundcloud-search-results", ScreenImageSlug("soundcloud", "Search Results"))
	assert.Equal(t, "/images/logo", ImageURL("logo"))
	assert.Empty(t, ImageURL(""))
}

func TestImageFilename(t *testing.T) {
	assert.Equal(t, "logo.JPG", ImageFilename("logo", "Photo.JPG", "image/jpeg"))
	assert.Equal(t, "logo.png", ImageFilename("logo", "", "image/png"))
	assert.Equal(t, "logo", ImageFilename("logo", "", ""))
}

func TestDetectMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	assert.Equal(t, "image/webp", DetectMimeType("image/webp", png))
	assert.Equal(t, "image/png", DetectMimeType("image/png; charset=binary", nil))
	assert.Equal(t, "image/png", DetectMimeType("", png))
	assert.Equal(t, "image/png", DetectMimeType("application/octet-stream", png))
	assert.Equal(t, "image/png", DetectMimeType("text/html", png))
}
