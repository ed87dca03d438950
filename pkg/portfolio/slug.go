package portfolio

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Slugify lowercases s, collapses every whitespace run into one hyphen and
// strips all characters outside [a-z0-9-].
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}

// IsSlug reports whether s is a non-empty sanitized slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// ImageURL is the display URL of the image with the given slug.
func ImageURL(slug string) string {
	if slug == "" {
		return ""
	}
	return "/images/" + slug
}

// MockupImageSlug is the slug of a project's uploaded thumbnail.
func MockupImageSlug(projectSlug string) string {
	return "project-" + Slugify(projectSlug) + "-mockup"
}

// ScreenImageSlug is the slug of an uploaded screen image.
func ScreenImageSlug(projectSlug, screenTitle string) string {
	return "project-" + Slugify(projectSlug) + "-" + Slugify(screenTitle)
}

// ImageFilename returns {slug}{ext}. The extension comes from the original
// filename when it has one, else from the mime type.
func ImageFilename(slug, originalName, mimeType string) string {
	ext := filepath.Ext(originalName)
	if ext == "" && mimeType != "" {
		if m := mimetype.Lookup(mimeType); m != nil {
			ext = m.Extension()
		}
	}
	return slug + ext
}

// DetectMimeType returns declared when it names an image type. Anything else,
// including an empty declaration, is replaced by the type sniffed from data.
func DetectMimeType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if strings.HasPrefix(strings.ToLower(declared), "image/") {
		return declared
	}
	return mimetype.Detect(data).String()
}
