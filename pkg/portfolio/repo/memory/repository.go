package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// Repository implements portfolio.Repository using in-memory storage.
// Records are copied on the way in and out.
type Repository struct {
	mu             sync.RWMutex
	images         map[string]*portfolio.Image // id -> image
	imagesBySlug   map[string]string           // slug -> id
	projects       map[string]*portfolio.Project
	projectsBySlug map[string]string
	skills         map[string]*portfolio.Skill
	messages       map[string]*portfolio.Message
	users          map[string]*portfolio.User
	usersByEmail   map[string]string
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		images:         make(map[string]*portfolio.Image),
		imagesBySlug:   make(map[string]string),
		projects:       make(map[string]*portfolio.Project),
		projectsBySlug: make(map[string]string),
		skills:         make(map[string]*portfolio.Skill),
		messages:       make(map[string]*portfolio.Message),
		users:          make(map[string]*portfolio.User),
		usersByEmail:   make(map[string]string),
	}
}

var _ portfolio.Repository = (*Repository)(nil)

// Image operations

func copyImage(img *portfolio.Image, withData bool) *portfolio.Image {
	c := *img
	if withData && img.Data != nil {
		c.Data = append([]byte(nil), img.Data...)
	} else {
		c.Data = nil
	}
	return &c
}

func (r *Repository) CreateImage(ctx context.Context, image *portfolio.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.imagesBySlug[image.Slug]; exists {
		return portfolio.ErrImageSlugTaken
	}
	if _, exists := r.images[image.ID]; exists {
		return portfolio.ErrImageSlugTaken
	}
	r.images[image.ID] = copyImage(image, true)
	r.imagesBySlug[image.Slug] = image.ID
	return nil
}

func (r *Repository) GetImageBySlug(ctx context.Context, slug string) (*portfolio.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.imagesBySlug[slug]
	if !exists {
		return nil, portfolio.ErrImageNotFound
	}
	return copyImage(r.images[id], true), nil
}

func (r *Repository) GetImage(ctx context.Context, id string) (*portfolio.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, exists := r.images[id]
	if !exists {
		return nil, portfolio.ErrImageNotFound
	}
	return copyImage(img, true), nil
}

func (r *Repository) UpdateImage(ctx context.Context, image *portfolio.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.images[image.ID]
	if !exists {
		return portfolio.ErrImageNotFound
	}
	if id, taken := r.imagesBySlug[image.Slug]; taken && id != image.ID {
		return portfolio.ErrImageSlugTaken
	}

	next := copyImage(image, true)
	if next.Data == nil {
		next.Data = current.Data
	}
	delete(r.imagesBySlug, current.Slug)
	r.images[image.ID] = next
	r.imagesBySlug[image.Slug] = image.ID
	return nil
}

func (r *Repository) DeleteImage(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.imagesBySlug[slug]
	if !exists {
		return portfolio.ErrImageNotFound
	}
	delete(r.images, id)
	delete(r.imagesBySlug, slug)
	return nil
}

func (r *Repository) ListImages(ctx context.Context, filter portfolio.ImageFilter) ([]*portfolio.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*portfolio.Image{}
	for _, img := range r.images {
		if filter.Category != "" && img.Category != filter.Category {
			continue
		}
		result = append(result, copyImage(img, false))
	}

	sort.Slice(result, func(i, j int) bool {
		if filter.SortBy == "category" && result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Slug < result[j].Slug
	})
	return result, nil
}

// Project operations

func (r *Repository) CreateProject(ctx context.Context, project *portfolio.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projectsBySlug[project.Slug]; exists {
		return portfolio.ErrProjectSlugTaken
	}
	if _, exists := r.projects[project.ID]; exists {
		return portfolio.ErrProjectSlugTaken
	}
	r.projects[project.ID] = project.Clone()
	r.projectsBySlug[project.Slug] = project.ID
	return nil
}

func (r *Repository) GetProject(ctx context.Context, id string) (*portfolio.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.projects[id]
	if !exists {
		return nil, portfolio.ErrProjectNotFound
	}
	return p.Clone(), nil
}

func (r *Repository) GetProjectBySlug(ctx context.Context, slug string) (*portfolio.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.projectsBySlug[slug]
	if !exists {
		return nil, portfolio.ErrProjectNotFound
	}
	return r.projects[id].Clone(), nil
}

func (r *Repository) UpdateProject(ctx context.Context, project *portfolio.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.projects[project.ID]
	if !exists {
		return portfolio.ErrProjectNotFound
	}
	if id, taken := r.projectsBySlug[project.Slug]; taken && id != project.ID {
		return portfolio.ErrProjectSlugTaken
	}
	delete(r.projectsBySlug, current.Slug)
	r.projects[project.ID] = project.Clone()
	r.projectsBySlug[project.Slug] = project.ID
	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.projects[id]
	if !exists {
		return portfolio.ErrProjectNotFound
	}
	delete(r.projectsBySlug, p.Slug)
	delete(r.projects, id)
	return nil
}

func (r *Repository) ListProjects(ctx context.Context, filter portfolio.ProjectFilter) ([]*portfolio.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*portfolio.Project{}
	for _, p := range r.projects {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		result = append(result, p.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Skill operations

func (r *Repository) CreateSkill(ctx context.Context, skill *portfolio.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.skillByName(skill.Name) != nil {
		return portfolio.ErrSkillNameTaken
	}
	c := *skill
	r.skills[skill.ID] = &c
	return nil
}

func (r *Repository) skillByName(name string) *portfolio.Skill {
	for _, s := range r.skills {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (r *Repository) GetSkill(ctx context.Context, id string) (*portfolio.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.skills[id]
	if !exists {
		return nil, portfolio.ErrSkillNotFound
	}
	c := *s
	return &c, nil
}

func (r *Repository) GetSkillByName(ctx context.Context, name string) (*portfolio.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := r.skillByName(name)
	if s == nil {
		return nil, portfolio.ErrSkillNotFound
	}
	c := *s
	return &c, nil
}

func (r *Repository) UpdateSkill(ctx context.Context, skill *portfolio.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[skill.ID]; !exists {
		return portfolio.ErrSkillNotFound
	}
	if other := r.skillByName(skill.Name); other != nil && other.ID != skill.ID {
		return portfolio.ErrSkillNameTaken
	}
	c := *skill
	r.skills[skill.ID] = &c
	return nil
}

func (r *Repository) DeleteSkill(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[id]; !exists {
		return portfolio.ErrSkillNotFound
	}
	delete(r.skills, id)
	return nil
}

func (r *Repository) ListSkills(ctx context.Context, filter portfolio.SkillFilter) ([]*portfolio.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*portfolio.Skill{}
	for _, s := range r.skills {
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		c := *s
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		if result[i].Proficiency != result[j].Proficiency {
			return result[i].Proficiency > result[j].Proficiency
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Message operations

func (r *Repository) CreateMessage(ctx context.Context, message *portfolio.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.messages[message.ID]; exists {
		return portfolio.ErrMessageExists
	}
	c := *message
	r.messages[message.ID] = &c
	return nil
}

func (r *Repository) GetMessage(ctx context.Context, id string) (*portfolio.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.messages[id]
	if !exists {
		return nil, portfolio.ErrMessageNotFound
	}
	c := *m
	return &c, nil
}

func (r *Repository) UpdateMessage(ctx context.Context, message *portfolio.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.messages[message.ID]; !exists {
		return portfolio.ErrMessageNotFound
	}
	c := *message
	r.messages[message.ID] = &c
	return nil
}

func (r *Repository) DeleteMessage(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.messages[id]; !exists {
		return portfolio.ErrMessageNotFound
	}
	delete(r.messages, id)
	return nil
}

func (r *Repository) ListMessages(ctx context.Context, filter portfolio.MessageFilter) ([]*portfolio.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*portfolio.Message{}
	for _, m := range r.messages {
		if filter.Read != nil && m.Read != *filter.Read {
			continue
		}
		c := *m
		result = append(result, &c)
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *portfolio.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.usersByEmail[email]; exists {
		return portfolio.ErrEmailTaken
	}
	c := *user
	r.users[user.ID] = &c
	r.usersByEmail[email] = user.ID
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*portfolio.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[id]
	if !exists {
		return nil, portfolio.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*portfolio.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[strings.ToLower(email)]
	if !exists {
		return nil, portfolio.ErrUserNotFound
	}
	c := *r.users[id]
	return &c, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*portfolio.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*portfolio.User{}
	for _, u := range r.users {
		c := *u
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
