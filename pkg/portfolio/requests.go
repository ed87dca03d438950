package portfolio

// Upload is an uploaded file held fully in memory.
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

// Empty reports whether the upload carries no bytes.
func (u *Upload) Empty() bool {
	return u == nil || len(u.Data) == 0
}

// CreateImageRequest creates an image. Slug defaults to Slugify(Name) and
// Name defaults to the slug.
type CreateImageRequest struct {
	Name     string        `json:"name" validate:"max=200"`
	Slug     string        `json:"slug" validate:"omitempty,max=200"`
	Category ImageCategory `json:"category" validate:"omitempty,oneof=project skill general icon"`
	Upload   Upload        `json:"-"`
}

// ReplaceImageRequest replaces the bytes of an existing image.
type ReplaceImageRequest struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category *ImageCategory `json:"category,omitempty" validate:"omitempty,oneof=project skill general icon"`
	Upload   Upload         `json:"-"`
}

// ScreenInput declares a screen on project creation. The image must already exist.
type ScreenInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	ImageSlug   string `json:"imageSlug"`
}

// CreateProjectRequest contains parameters for creating a project
type CreateProjectRequest struct {
	Title            string          `json:"title" validate:"required,max=100"`
	Slug             string          `json:"slug" validate:"omitempty,max=100"`
	Description      string          `json:"description" validate:"required,max=5000"`
	ShortDescription string          `json:"shortDescription" validate:"required,max=300"`
	Category         ProjectCategory `json:"category" validate:"required,oneof=ux-design ui-design branding web-development"`
	Technologies     []string        `json:"technologies" validate:"dive,required,max=100"`
	Images           []string        `json:"images"`
	ThumbnailSlug    string          `json:"thumbnailSlug"`
	Screens          []ScreenInput   `json:"screens" validate:"dive"`
	LiveURL          string          `json:"liveUrl" validate:"omitempty,url"`
	GithubURL        string          `json:"githubUrl" validate:"omitempty,url"`
	Featured         bool            `json:"featured"`
	Order            int             `json:"order"`
}

// UpdateProjectRequest is a partial update; nil fields are left unchanged.
// An empty LiveURL or GithubURL clears the link.
type UpdateProjectRequest struct {
	Title            *string          `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Slug             *string          `json:"slug,omitempty" validate:"omitempty,min=1,max=100"`
	Description      *string          `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	ShortDescription *string          `json:"shortDescription,omitempty" validate:"omitempty,min=1,max=300"`
	Category         *ProjectCategory `json:"category,omitempty" validate:"omitempty,oneof=ux-design ui-design branding web-development"`
	Technologies     *[]string        `json:"technologies,omitempty"`
	Images           *[]string        `json:"images,omitempty"`
	LiveURL          *string          `json:"liveUrl,omitempty" validate:"omitempty,url_or_empty"`
	GithubURL        *string          `json:"githubUrl,omitempty" validate:"omitempty,url_or_empty"`
	Featured         *bool            `json:"featured,omitempty"`
	Order            *int             `json:"order,omitempty"`
}

// AddScreenRequest appends a screen. At most one of Upload and ImageSlug is used;
// Upload wins when both are set.
type AddScreenRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	ImageSlug   string  `json:"imageSlug"`
	Upload      *Upload `json:"-"`
}

// UpdateScreenRequest edits a screen in place. Empty text fields are ignored.
type UpdateScreenRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	ImageSlug   *string `json:"imageSlug,omitempty"`
	Upload      *Upload `json:"-"`
}

// ReorderScreenRequest moves the screen at FromIndex to ToIndex.
type ReorderScreenRequest struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

// CreateSkillRequest contains parameters for creating a skill
type CreateSkillRequest struct {
	Name        string        `json:"name" validate:"required,max=100"`
	Icon        string        `json:"icon" validate:"required,max=500"`
	Category    SkillCategory `json:"category" validate:"required,oneof=design development tools"`
	Proficiency int           `json:"proficiency" validate:"min=1,max=5"`
	Order       int           `json:"order"`
}

// UpdateSkillRequest is a partial update; nil fields are left unchanged.
type UpdateSkillRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Icon        *string        `json:"icon,omitempty" validate:"omitempty,min=1,max=500"`
	Category    *SkillCategory `json:"category,omitempty" validate:"omitempty,oneof=design development tools"`
	Proficiency *int           `json:"proficiency,omitempty" validate:"omitempty,min=1,max=5"`
	Order       *int           `json:"order,omitempty"`
}

// CreateMessageRequest is a contact form submission.
type CreateMessageRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,max=254,loose_email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}
