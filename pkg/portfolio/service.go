package portfolio

import (
	"context"
)

// Service defines the content operations behind the portfolio API
type Service interface {
	// Image operations
	CreateImage(ctx context.Context, req CreateImageRequest) (*Image, error)
	ReplaceImage(ctx context.Context, slug string, req ReplaceImageRequest) (*Image, error)
	GetImage(ctx context.Context, slug string) (*ImageContent, error)
	GetImageMetadata(ctx context.Context, slug string) (*Image, error)
	ListImages(ctx context.Context, filter ImageFilter) ([]*Image, error)
	DeleteImage(ctx context.Context, slug string) error

	// Project operations; key is an id or a slug
	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)
	GetProject(ctx context.Context, key string) (*Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	UpdateProject(ctx context.Context, key string, req UpdateProjectRequest) (*Project, error)
	DeleteProject(ctx context.Context, key string) error
	ProjectStats(ctx context.Context) (*ProjectStats, error)

	// Thumbnail operations return the updated project and the thumbnail image
	SetThumbnail(ctx context.Context, key, imageSlug string) (*Project, *Image, error)
	UploadThumbnail(ctx context.Context, key string, upload Upload) (*Project, *Image, error)

	// Screen operations
	AddScreen(ctx context.Context, key string, req AddScreenRequest) (*Project, error)
	UpdateScreen(ctx context.Context, key string, index int, req UpdateScreenRequest) (*Project, error)
	DeleteScreen(ctx context.Context, key string, index int) (*Project, error)
	ReorderScreen(ctx context.Context, key string, req ReorderScreenRequest) (*Project, error)

	// Skill operations
	CreateSkill(ctx context.Context, req CreateSkillRequest) (*Skill, error)
	GetSkill(ctx context.Context, id string) (*Skill, error)
	ListSkills(ctx context.Context, filter SkillFilter) ([]*Skill, error)
	UpdateSkill(ctx context.Context, id string, req UpdateSkillRequest) (*Skill, error)
	DeleteSkill(ctx context.Context, id string) error

	// Message operations
	CreateMessage(ctx context.Context, req CreateMessageRequest) (*Message, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	ListMessages(ctx context.Context, filter MessageFilter) ([]*Message, error)
	MarkMessageRead(ctx context.Context, id string) (*Message, error)
	DeleteMessage(ctx context.Context, id string) error

	// CheckIntegrity reports dangling image references and missing image bytes.
	CheckIntegrity(ctx context.Context) (*IntegrityReport, error)
}
