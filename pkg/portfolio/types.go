package portfolio

import (
	"time"
)

// ImageCategory groups images for listing.
type ImageCategory string

const (
	ImageCategoryProject ImageCategory = "project"
	ImageCategorySkill   ImageCategory = "skill"
	ImageCategoryGeneral ImageCategory = "general"
	ImageCategoryIcon    ImageCategory = "icon"
)

// ProjectCategory is the discipline a project belongs to.
type ProjectCategory string

const (
	ProjectCategoryUXDesign       ProjectCategory = "ux-design"
	ProjectCategoryUIDesign       ProjectCategory = "ui-design"
	ProjectCategoryBranding       ProjectCategory = "branding"
	ProjectCategoryWebDevelopment ProjectCategory = "web-development"
)

// SkillCategory groups skills on the about page.
type SkillCategory string

const (
	SkillCategoryDesign      SkillCategory = "design"
	SkillCategoryDevelopment SkillCategory = "development"
	SkillCategoryTools       SkillCategory = "tools"
)

// Image is the metadata record of a stored image.
//
// Filename is always {slug}{ext}. In the blob-backed variant it is the blob
// key; in the inline variant the bytes travel in Data, which is only populated
// by single-image reads and never serialized.
type Image struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Slug      string        `json:"slug"`
	Category  ImageCategory `json:"category"`
	MimeType  string        `json:"mimeType"`
	Size      int64         `json:"size"`
	Filename  string        `json:"filename"`
	Data      []byte        `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// URL returns the public display URL of the image.
func (i *Image) URL() string {
	return ImageURL(i.Slug)
}

// Ref returns a reference to the image suitable for embedding in a project.
func (i *Image) Ref() *ImageRef {
	return &ImageRef{ID: i.ID, Slug: i.Slug}
}

// ImageContent is the binary payload of an image.
type ImageContent struct {
	Slug     string
	MimeType string
	Data     []byte
}

// ImageRef points at an Image from a project or screen.
type ImageRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// Screen is one showcased image with caption text, embedded in a Project.
type Screen struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       *ImageRef `json:"image,omitempty"`
	ImageURL    string    `json:"imageUrl"`
}

// Project is a portfolio entry.
type Project struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Slug             string          `json:"slug"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	Category         ProjectCategory `json:"category"`
	Technologies     []string        `json:"technologies"`
	Thumbnail        *ImageRef       `json:"thumbnail,omitempty"`
	ThumbnailURL     string          `json:"thumbnailUrl"`
	Images           []string        `json:"images"`
	Screens          []Screen        `json:"screens"`
	LiveURL          string          `json:"liveUrl,omitempty"`
	GithubURL        string          `json:"githubUrl,omitempty"`
	Featured         bool            `json:"featured"`
	Order            int             `json:"order"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.Technologies = append([]string{}, p.Technologies...)
	c.Images = append([]string{}, p.Images...)
	if p.Thumbnail != nil {
		ref := *p.Thumbnail
		c.Thumbnail = &ref
	}
	c.Screens = make([]Screen, len(p.Screens))
	for i, s := range p.Screens {
		c.Screens[i] = s
		if s.Image != nil {
			ref := *s.Image
			c.Screens[i].Image = &ref
		}
	}
	return &c
}

// Normalize fills nil collections and recomputes every derived URL from its
// reference. Repositories call it on every read and write.
func (p *Project) Normalize() {
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Screens == nil {
		p.Screens = []Screen{}
	}
	p.ThumbnailURL = ""
	if p.Thumbnail != nil {
		p.ThumbnailURL = ImageURL(p.Thumbnail.Slug)
	}
	for i := range p.Screens {
		p.Screens[i].ImageURL = ""
		if p.Screens[i].Image != nil {
			p.Screens[i].ImageURL = ImageURL(p.Screens[i].Image.Slug)
		}
	}
}

// Skill is a flat skill entry.
type Skill struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Icon        string        `json:"icon"`
	Category    SkillCategory `json:"category"`
	Proficiency int           `json:"proficiency"`
	Order       int           `json:"order"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Message is a contact form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an administrator account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProjectStats is the aggregate report over all projects.
type ProjectStats struct {
	ByCategory []CategoryStats `json:"byCategory"`
	Totals     StatsTotals     `json:"totals"`
}

// CategoryStats aggregates the projects of one category.
type CategoryStats struct {
	Category        ProjectCategory `json:"category"`
	Count           int             `json:"count"`
	FeaturedCount   int             `json:"featuredCount"`
	AvgTechnologies float64         `json:"avgTechnologies"`
	TotalScreens    int             `json:"totalScreens"`
}

// StatsTotals aggregates every project.
type StatsTotals struct {
	TotalProjects      int `json:"totalProjects"`
	TotalFeatured      int `json:"totalFeatured"`
	TotalScreens       int `json:"totalScreens"`
	UniqueTechnologies int `json:"uniqueTechnologies"`
}

// IntegrityReport lists references and records that no longer line up.
type IntegrityReport struct {
	DanglingThumbnails []DanglingRef `json:"danglingThumbnails"`
	DanglingScreens    []DanglingRef `json:"danglingScreens"`
	MissingContent     []string      `json:"missingContent"`
}

// OK reports whether the check found nothing.
func (r *IntegrityReport) OK() bool {
	return len(r.DanglingThumbnails) == 0 && len(r.DanglingScreens) == 0 && len(r.MissingContent) == 0
}

// DanglingRef is a project reference to an image that does not exist.
type DanglingRef struct {
	ProjectSlug string `json:"projectSlug"`
	ScreenIndex int    `json:"screenIndex"`
	ImageSlug   string `json:"imageSlug"`
}
