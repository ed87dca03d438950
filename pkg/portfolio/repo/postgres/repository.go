package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements portfolio.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

var _ portfolio.Repository = (*Repository)(nil)

// Error handling helper. conflict is returned for unique violations.
func (r *Repository) handlePostgresError(operation string, err error, conflict error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return conflict
		case "23502": // not_null_violation
			return portfolio.Invalid(pgErr.ColumnName, "%s is required", pgErr.ColumnName)
		case "23514": // check_violation
			return portfolio.Invalid(pgErr.ConstraintName, "%s", pgErr.Message)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func blobArg(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func requireRow(tag pgconn.CommandTag, notFound error) error {
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

// Image operations

const imageColumns = `id, name, slug, category, mime_type, size, filename, created_at, updated_at`

func scanImage(row pgx.Row, withData bool) (*portfolio.Image, error) {
	var img portfolio.Image
	dest := []any{&img.ID, &img.Name, &img.Slug, &img.Category, &img.MimeType, &img.Size, &img.Filename, &img.CreatedAt, &img.UpdatedAt}
	if withData {
		dest = append(dest, &img.Data)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	img.CreatedAt = img.CreatedAt.UTC()
	img.UpdatedAt = img.UpdatedAt.UTC()
	return &img, nil
}

func (r *Repository) CreateImage(ctx context.Context, image *portfolio.Image) error {
	query := `
		INSERT INTO images (id, name, slug, category, mime_type, size, filename, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		image.ID, image.Name, image.Slug, image.Category, image.MimeType, image.Size,
		image.Filename, blobArg(image.Data), image.CreatedAt, image.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create image", err, portfolio.ErrImageSlugTaken)
	}
	return nil
}

func (r *Repository) getImage(ctx context.Context, column, value string) (*portfolio.Image, error) {
	query := `SELECT ` + imageColumns + `, data FROM images WHERE ` + column + ` = $1`

	img, err := scanImage(r.db.QueryRow(ctx, query, value), true)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, portfolio.ErrImageNotFound
	}
	if err != nil {
		return nil, r.handlePostgresError("get image", err, portfolio.ErrConflict)
	}
	return img, nil
}

func (r *Repository) GetImageBySlug(ctx context.Context, slug string) (*portfolio.Image, error) {
	return r.getImage(ctx, "slug", slug)
}

func (r *Repository) GetImage(ctx context.Context, id string) (*portfolio.Image, error) {
	return r.getImage(ctx, "id", id)
}

func (r *Repository) UpdateImage(ctx context.Context, image *portfolio.Image) error {
	query := `
		UPDATE images SET
			name = $2, slug = $3, category = $4, mime_type = $5, size = $6,
			filename = $7, data = COALESCE($8::bytea, data), updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		image.ID, image.Name, image.Slug, image.Category, image.MimeType, image.Size,
		image.Filename, blobArg(image.Data), image.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update image", err, portfolio.ErrImageSlugTaken)
	}
	return requireRow(tag, portfolio.ErrImageNotFound)
}

func (r *Repository) DeleteImage(ctx context.Context, slug string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM images WHERE slug = $1`, slug)
	if err != nil {
		return r.handlePostgresError("delete image", err, portfolio.ErrConflict)
	}
	return requireRow(tag, portfolio.ErrImageNotFound)
}

func (r *Repository) ListImages(ctx context.Context, filter portfolio.ImageFilter) ([]*portfolio.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, filter.Category)
	}
	if filter.SortBy == "category" {
		query += ` ORDER BY category, name COLLATE "C", slug COLLATE "C"`
	} else {
		query += ` ORDER BY name COLLATE "C", slug COLLATE "C"`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list images", err, portfolio.ErrConflict)
	}
	defer rows.Close()

	images := []*portfolio.Image{}
	for rows.Next() {
		img, err := scanImage(rows, false)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Project operations

const projectColumns = `id, title, slug, description, short_description, category, technologies,
	thumbnail, images, screens, live_url, github_url, featured, sort_order, created_at, updated_at`

func scanProject(row pgx.Row) (*portfolio.Project, error) {
	var (
		p                  portfolio.Project
		thumbnail, screens []byte
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.ShortDescription, &p.Category,
		&p.Technologies, &thumbnail, &p.Images, &screens, &p.LiveURL, &p.GithubURL,
		&p.Featured, &p.Order, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(thumbnail) > 0 {
		if err := json.Unmarshal(thumbnail, &p.Thumbnail); err != nil {
			return nil, fmt.Errorf("decode thumbnail of project %s: %w", p.ID, err)
		}
	}
	if err := json.Unmarshal(screens, &p.Screens); err != nil {
		return nil, fmt.Errorf("decode screens of project %s: %w", p.ID, err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.Normalize()
	return &p, nil
}

// encodeProject returns the JSON columns of p.
func encodeProject(p *portfolio.Project) (thumbnail, screens []byte, err error) {
	if p.Thumbnail != nil {
		if thumbnail, err = json.Marshal(p.Thumbnail); err != nil {
			return nil, nil, err
		}
	}
	if screens, err = json.Marshal(p.Screens); err != nil {
		return nil, nil, err
	}
	return thumbnail, screens, nil
}

func (r *Repository) CreateProject(ctx context.Context, project *portfolio.Project) error {
	p := project.Clone()
	p.Normalize()
	thumbnail, screens, err := encodeProject(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.db.Exec(ctx, query,
		p.ID, p.Title, p.Slug, p.Description, p.ShortDescription, p.Category, p.Technologies,
		thumbnail, p.Images, screens, p.LiveURL, p.GithubURL, p.Featured, p.Order,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create project", err, portfolio.ErrProjectSlugTaken)
	}
	return nil
}

func (r *Repository) getProject(ctx context.Context, column, value string) (*portfolio.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + column + ` = $1`

	p, err := scanProject(r.db.QueryRow(ctx, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, portfolio.ErrProjectNotFound
	}
	if err != nil {
		return nil, r.handlePostgresError("get project", err, portfolio.ErrConflict)
	}
	return p, nil
}

func (r *Repository) GetProject(ctx context.Context, id string) (*portfolio.Project, error) {
	return r.getProject(ctx, "id", id)
}

func (r *Repository) GetProjectBySlug(ctx context.Context, slug string) (*portfolio.Project, error) {
	return r.getProject(ctx, "slug", slug)
}

func (r *Repository) UpdateProject(ctx context.Context, project *portfolio.Project) error {
	p := project.Clone()
	p.Normalize()
	thumbnail, screens, err := encodeProject(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	query := `
		UPDATE projects SET
			title = $2, slug = $3, description = $4, short_description = $5, category = $6,
			technologies = $7, thumbnail = $8, images = $9, screens = $10, live_url = $11,
			github_url = $12, featured = $13, sort_order = $14, updated_at = $15
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Title, p.Slug, p.Description, p.ShortDescription, p.Category, p.Technologies,
		thumbnail, p.Images, screens, p.LiveURL, p.GithubURL, p.Featured, p.Order, p.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update project", err, portfolio.ErrProjectSlugTaken)
	}
	return requireRow(tag, portfolio.ErrProjectNotFound)
}

func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete project", err, portfolio.ErrConflict)
	}
	return requireRow(tag, portfolio.ErrProjectNotFound)
}

func (r *Repository) ListProjects(ctx context.Context, filter portfolio.ProjectFilter) ([]*portfolio.Project, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conds = append(conds, fmt.Sprintf("featured = $%d", len(args)))
	}
	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list projects", err, portfolio.ErrConflict)
	}
	defer rows.Close()

	projects := []*portfolio.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Skill operations

const skillColumns = `id, name, icon, category, proficiency, sort_order, created_at, updated_at`

func scanSkill(row pgx.Row) (*portfolio.Skill, error) {
	var s portfolio.Skill
	if err := row.Scan(&s.ID, &s.Name, &s.Icon, &s.Category, &s.Proficiency, &s.Order, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

func (r *Repository) CreateSkill(ctx context.Context, skill *portfolio.Skill) error {
	query := `INSERT INTO skills (` + skillColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		skill.ID, skill.Name, skill.Icon, skill.Category, skill.Proficiency, skill.Order,
		skill.CreatedAt, skill.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create skill", err, portfolio.ErrSkillNameTaken)
	}
	return nil
}

func (r *Repository) getSkill(ctx context.Context, column, value string) (*portfolio.Skill, error) {
	query := `SELECT ` + skillColumns + ` FROM skills WHERE ` + column + ` = $1`

	s, err := scanSkill(r.db.QueryRow(ctx, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, portfolio.ErrSkillNotFound
	}
	if err != nil {
		return nil, r.handlePostgresError("get skill", err, portfolio.ErrConflict)
	}
	return s, nil
}

func (r *Repository) GetSkill(ctx context.Context, id string) (*portfolio.Skill, error) {
	return r.getSkill(ctx, "id", id)
}

func (r *Repository) GetSkillByName(ctx context.Context, name string) (*portfolio.Skill, error) {
	return r.getSkill(ctx, "name", name)
}

func (r *Repository) UpdateSkill(ctx context.Context, skill *portfolio.Skill) error {
	query := `
		UPDATE skills SET
			name = $2, icon = $3, category = $4, proficiency = $5, sort_order = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		skill.ID, skill.Name, skill.Icon, skill.Category, skill.Proficiency, skill.Order, skill.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update skill", err, portfolio.ErrSkillNameTaken)
	}
	return requireRow(tag, portfolio.ErrSkillNotFound)
}

func (r *Repository) DeleteSkill(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete skill", err, portfolio.ErrConflict)
	}
	return requireRow(tag, portfolio.ErrSkillNotFound)
}

func (r *Repository) ListSkills(ctx context.Context, filter portfolio.SkillFilter) ([]*portfolio.Skill, error) {
	query := `SELECT ` + skillColumns + ` FROM skills`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY sort_order ASC, proficiency DESC, name COLLATE "C" ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list skills", err, portfolio.ErrConflict)
	}
	defer rows.Close()

	skills := []*portfolio.Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// Message operations

const messageColumns = `id, name, email, subject, message, read, created_at`

func scanMessage(row pgx.Row) (*portfolio.Message, error) {
	var m portfolio.Message
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Read, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func (r *Repository) CreateMessage(ctx context.Context, message *portfolio.Message) error {
	query := `INSERT INTO messages (` + messageColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		message.ID, message.Name, message.Email, message.Subject, message.Message,
		message.Read, message.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create message", err, portfolio.ErrMessageExists)
	}
	return nil
}

func (r *Repository) GetMessage(ctx context.Context, id string) (*portfolio.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	m, err := scanMessage(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, portfolio.ErrMessageNotFound
	}
	if err != nil {
		return nil, r.handlePostgresError("get message", err, portfolio.ErrConflict)
	}
	return m, nil
}

func (r *Repository) UpdateMessage(ctx context.Context, message *portfolio.Message) error {
	query := `
		UPDATE messages SET name = $2, email = $3, subject = $4, message = $5, read = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		message.ID, message.Name, message.Email, message.Subject, message.Message, message.Read)
	if err != nil {
		return r.handlePostgresError("update message", err, portfolio.ErrConflict)
	}
	return requireRow(tag, portfolio.ErrMessageNotFound)
}

func (r *Repository) DeleteMessage(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete message", err, portfolio.ErrConflict)
	}
	return requireRow(tag, portfolio.ErrMessageNotFound)
}

func (r *Repository) ListMessages(ctx context.Context, filter portfolio.MessageFilter) ([]*portfolio.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	var args []any
	if filter.Read != nil {
		query += ` WHERE read = $1`
		args = append(args, *filter.Read)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list messages", err, portfolio.ErrConflict)
	}
	defer rows.Close()

	messages := []*portfolio.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// User operations

const userColumns = `id, email, name, password_hash, salt, created_at, updated_at`

func scanUser(row pgx.Row) (*portfolio.User, error) {
	var u portfolio.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Salt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *portfolio.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Salt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create user", err, portfolio.ErrEmailTaken)
	}
	return nil
}

func (r *Repository) getUser(ctx context.Context, where, value string) (*portfolio.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	u, err := scanUser(r.db.QueryRow(ctx, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, portfolio.ErrUserNotFound
	}
	if err != nil {
		return nil, r.handlePostgresError("get user", err, portfolio.ErrConflict)
	}
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*portfolio.User, error) {
	return r.getUser(ctx, "id = $1", id)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*portfolio.User, error) {
	return r.getUser(ctx, "lower(email) = lower($1)", email)
}

func (r *Repository) ListUsers(ctx context.Context) ([]*portfolio.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, r.handlePostgresError("list users", err, portfolio.ErrConflict)
	}
	defer rows.Close()

	users := []*portfolio.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
