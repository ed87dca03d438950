package mongodb

import (
	"strings"
	"time"

	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// Documents keep the field names of the original document store so that
// existing collections can be read without conversion.

type imageDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Slug      string    `bson:"slug"`
	Category  string    `bson:"category"`
	MimeType  string    `bson:"mimeType"`
	Size      int64     `bson:"size"`
	Filename  string    `bson:"filename"`
	Data      []byte    `bson:"data,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toImageDoc(img *portfolio.Image) imageDoc {
	return imageDoc{
		ID:        img.ID,
		Name:      img.Name,
		Slug:      img.Slug,
		Category:  string(img.Category),
		MimeType:  img.MimeType,
		Size:      img.Size,
		Filename:  img.Filename,
		Data:      img.Data,
		CreatedAt: img.CreatedAt,
		UpdatedAt: img.UpdatedAt,
	}
}

func (d imageDoc) toImage() *portfolio.Image {
	return &portfolio.Image{
		ID:        d.ID,
		Name:      d.Name,
		Slug:      d.Slug,
		Category:  portfolio.ImageCategory(d.Category),
		MimeType:  d.MimeType,
		Size:      d.Size,
		Filename:  d.Filename,
		Data:      d.Data,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type imageRefDoc struct {
	ID   string `bson:"id"`
	Slug string `bson:"slug"`
}

func toRefDoc(ref *portfolio.ImageRef) *imageRefDoc {
	if ref == nil {
		return nil
	}
	return &imageRefDoc{ID: ref.ID, Slug: ref.Slug}
}

func (d *imageRefDoc) toRef() *portfolio.ImageRef {
	if d == nil {
		return nil
	}
	return &portfolio.ImageRef{ID: d.ID, Slug: d.Slug}
}

type screenDoc struct {
	Title       string       `bson:"title"`
	Description string       `bson:"description"`
	Image       *imageRefDoc `bson:"image,omitempty"`
}

type projectDoc struct {
	ID               string       `bson:"_id"`
	Title            string       `bson:"title"`
	Slug             string       `bson:"slug"`
	Description      string       `bson:"description"`
	ShortDescription string       `bson:"shortDescription"`
	Category         string       `bson:"category"`
	Technologies     []string     `bson:"technologies"`
	Thumbnail        *imageRefDoc `bson:"thumbnail,omitempty"`
	Images           []string     `bson:"images"`
	Screens          []screenDoc  `bson:"screens"`
	LiveURL          string       `bson:"liveUrl,omitempty"`
	GithubURL        string       `bson:"githubUrl,omitempty"`
	Featured         bool         `bson:"featured"`
	Order            int          `bson:"order"`
	CreatedAt        time.Time    `bson:"createdAt"`
	UpdatedAt        time.Time    `bson:"updatedAt"`
}

func toProjectDoc(p *portfolio.Project) projectDoc {
	doc := projectDoc{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Category:         string(p.Category),
		Technologies:     append([]string{}, p.Technologies...),
		Thumbnail:        toRefDoc(p.Thumbnail),
		Images:           append([]string{}, p.Images...),
		Screens:          make([]screenDoc, len(p.Screens)),
		LiveURL:          p.LiveURL,
		GithubURL:        p.GithubURL,
		Featured:         p.Featured,
		Order:            p.Order,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	for i, s := range p.Screens {
		doc.Screens[i] = screenDoc{Title: s.Title, Description: s.Description, Image: toRefDoc(s.Image)}
	}
	return doc
}

func (d projectDoc) toProject() *portfolio.Project {
	p := &portfolio.Project{
		ID:               d.ID,
		Title:            d.Title,
		Slug:             d.Slug,
		Description:      d.Description,
		ShortDescription: d.ShortDescription,
		Category:         portfolio.ProjectCategory(d.Category),
		Technologies:     d.Technologies,
		Thumbnail:        d.Thumbnail.toRef(),
		Images:           d.Images,
		Screens:          make([]portfolio.Screen, len(d.Screens)),
		LiveURL:          d.LiveURL,
		GithubURL:        d.GithubURL,
		Featured:         d.Featured,
		Order:            d.Order,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
	for i, s := range d.Screens {
		p.Screens[i] = portfolio.Screen{Title: s.Title, Description: s.Description, Image: s.Image.toRef()}
	}
	p.Normalize()
	return p
}

type skillDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Icon        string    `bson:"icon"`
	Category    string    `bson:"category"`
	Proficiency int       `bson:"proficiency"`
	Order       int       `bson:"order"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func toSkillDoc(s *portfolio.Skill) skillDoc {
	return skillDoc{
		ID:          s.ID,
		Name:        s.Name,
		Icon:        s.Icon,
		Category:    string(s.Category),
		Proficiency: s.Proficiency,
		Order:       s.Order,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (d skillDoc) toSkill() *portfolio.Skill {
	return &portfolio.Skill{
		ID:          d.ID,
		Name:        d.Name,
		Icon:        d.Icon,
		Category:    portfolio.SkillCategory(d.Category),
		Proficiency: d.Proficiency,
		Order:       d.Order,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type messageDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Subject   string    `bson:"subject"`
	Message   string    `bson:"message"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"createdAt"`
}

func toMessageDoc(m *portfolio.Message) messageDoc {
	return messageDoc{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

func (d messageDoc) toMessage() *portfolio.Message {
	return &portfolio.Message{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Subject:   d.Subject,
		Message:   d.Message,
		Read:      d.Read,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	EmailKey     string    `bson:"emailKey"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"passwordHash"`
	Salt         string    `bson:"salt"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toUserDoc(u *portfolio.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Email:        u.Email,
		EmailKey:     strings.ToLower(u.Email),
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Salt:         u.Salt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toUser() *portfolio.User {
	return &portfolio.User{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Salt:         d.Salt,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
