package portfolio

import (
	"context"
	"io"
	"time"
)

// Repository bundles the per-entity repositories of one storage backend.
type Repository interface {
	ImageRepository
	ProjectRepository
	SkillRepository
	MessageRepository
	UserRepository
}

// ImageFilter narrows and orders image listings.
type ImageFilter struct {
	Category ImageCategory
	// SortBy is "name" (default) or "category".
	SortBy string
}

// ImageRepository stores image metadata and, for inline stores, bytes.
type ImageRepository interface {
	CreateImage(ctx context.Context, image *Image) error
	// GetImageBySlug returns the record including Data when the backend holds it.
	GetImageBySlug(ctx context.Context, slug string) (*Image, error)
	GetImage(ctx context.Context, id string) (*Image, error)
	// UpdateImage replaces the record with the same ID. A nil Data leaves stored bytes untouched.
	UpdateImage(ctx context.Context, image *Image) error
	DeleteImage(ctx context.Context, slug string) error
	// ListImages returns metadata only; Data is always nil.
	ListImages(ctx context.Context, filter ImageFilter) ([]*Image, error)
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Category ProjectCategory
	Featured *bool
}

// ProjectRepository stores whole project records, screens included.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*Project, error)
	// UpdateProject rewrites the entire record, screens array included.
	UpdateProject(ctx context.Context, project *Project) error
	DeleteProject(ctx context.Context, id string) error
	// ListProjects orders by Order ascending, then CreatedAt descending.
	ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)
}

// SkillFilter narrows skill listings.
type SkillFilter struct {
	Category SkillCategory
}

// SkillRepository stores skills.
type SkillRepository interface {
	CreateSkill(ctx context.Context, skill *Skill) error
	GetSkill(ctx context.Context, id string) (*Skill, error)
	GetSkillByName(ctx context.Context, name string) (*Skill, error)
	UpdateSkill(ctx context.Context, skill *Skill) error
	DeleteSkill(ctx context.Context, id string) error
	// ListSkills orders by Order ascending, then Proficiency descending.
	ListSkills(ctx context.Context, filter SkillFilter) ([]*Skill, error)
}

// MessageFilter narrows message listings.
type MessageFilter struct {
	Read *bool
}

// MessageRepository stores contact messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *Message) error
	GetMessage(ctx context.Context, id string) (*Message, error)
	UpdateMessage(ctx context.Context, message *Message) error
	DeleteMessage(ctx context.Context, id string) error
	// ListMessages orders newest first.
	ListMessages(ctx context.Context, filter MessageFilter) ([]*Message, error)
}

// UserRepository stores admin accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}

// ObjectMeta describes a stored blob.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams carries the key and content type of a blob upload.
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// BlobStore holds raw image bytes keyed by filename.
type BlobStore interface {
	Upload(ctx context.Context, params UploadParams, reader io.Reader) error
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectKey string) error
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// PutImageRequest carries the content of an image put.
type PutImageRequest struct {
	Slug     string
	Name     string
	Category ImageCategory
	Upload   Upload
}

// ImageStore combines image metadata with image bytes. Put is an upsert
// keyed by slug.
type ImageStore interface {
	Put(ctx context.Context, req PutImageRequest) (*Image, error)
	Get(ctx context.Context, slug string) (*ImageContent, error)
	Stat(ctx context.Context, slug string) (*Image, error)
	List(ctx context.Context, filter ImageFilter) ([]*Image, error)
	Delete(ctx context.Context, slug string) error
	// Exists reports whether the bytes behind a metadata record are present.
	Exists(ctx context.Context, image *Image) (bool, error)
}

// Locker serializes mutations per key.
type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}
