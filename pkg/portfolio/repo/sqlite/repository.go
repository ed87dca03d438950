package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tendant/portfolio-content/pkg/portfolio"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository implements portfolio.Repository on SQLite.
type Repository struct {
	db *sql.DB
}

// Open opens the database at dsn. Writes are serialized through a single
// connection, which SQLite requires anyway.
func Open(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var _ portfolio.Repository = (*Repository)(nil)

// Migrate creates any missing tables and indexes.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) handleError(operation string, err error, conflict error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return conflict
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%s: table does not exist - database migration required", operation)
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func blobArg(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

// Image operations

const imageColumns = `id, name, slug, category, mime_type, size, filename, created_at, updated_at`

func scanImage(row scanner, withData bool) (*portfolio.Image, error) {
	var (
		img              portfolio.Image
		created, updated string
	)
	dest := []any{&img.ID, &img.Name, &img.Slug, &img.Category, &img.MimeType, &img.Size, &img.Filename, &created, &updated}
	if withData {
		dest = append(dest, &img.Data)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	var err error
	if img.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if img.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *Repository) CreateImage(ctx context.Context, image *portfolio.Image) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO images (id, name, slug, category, mime_type, size, filename, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		image.ID, image.Name, image.Slug, image.Category, image.MimeType, image.Size,
		image.Filename, blobArg(image.Data), formatTime(image.CreatedAt), formatTime(image.UpdatedAt))
	if err != nil {
		return r.handleError("create image", err, portfolio.ErrImageSlugTaken)
	}
	return nil
}

func (r *Repository) getImage(ctx context.Context, where string, arg any) (*portfolio.Image, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+imageColumns+`, data FROM images WHERE `+where+` = ?`, arg)
	img, err := scanImage(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, portfolio.ErrImageNotFound
	}
	if err != nil {
		return nil, r.handleError("get image", err, portfolio.ErrConflict)
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
	res, err := r.db.ExecContext(ctx, `
		UPDATE images SET
			name = ?, slug = ?, category = ?, mime_type = ?, size = ?, filename = ?,
			data = COALESCE(?, data), updated_at = ?
		WHERE id = ?`,
		image.Name, image.Slug, image.Category, image.MimeType, image.Size, image.Filename,
		blobArg(image.Data), formatTime(image.UpdatedAt), image.ID)
	if err != nil {
		return r.handleError("update image", err, portfolio.ErrImageSlugTaken)
	}
	return requireRow(res, portfolio.ErrImageNotFound)
}

func (r *Repository) DeleteImage(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE slug = ?`, slug)
	if err != nil {
		return r.handleError("delete image", err, portfolio.ErrConflict)
	}
	return requireRow(res, portfolio.ErrImageNotFound)
}

func (r *Repository) ListImages(ctx context.Context, filter portfolio.ImageFilter) ([]*portfolio.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, filter.Category)
	}
	if filter.SortBy == "category" {
		query += ` ORDER BY category, name, slug`
	} else {
		query += ` ORDER BY name, slug`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.handleError("list images", err, portfolio.ErrConflict)
	}
	defer func() {
		_ = rows.Close()
	}()

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

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// Project operations

const projectColumns = `id, title, slug, description, short_description, category, technologies,
	thumbnail_id, thumbnail_slug, images, screens, live_url, github_url, featured, sort_order,
	created_at, updated_at`

func scanProject(row scanner) (*portfolio.Project, error) {
	var (
		p                             portfolio.Project
		technologies, images, screens string
		thumbnailID, thumbnailSlug    sql.NullString
		featured                      int
		created, updated              string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.ShortDescription, &p.Category,
		&technologies, &thumbnailID, &thumbnailSlug, &images, &screens, &p.LiveURL, &p.GithubURL,
		&featured, &p.Order, &created, &updated)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(technologies), &p.Technologies); err != nil {
		return nil, fmt.Errorf("decode technologies of project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return nil, fmt.Errorf("decode images of project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(screens), &p.Screens); err != nil {
		return nil, fmt.Errorf("decode screens of project %s: %w", p.ID, err)
	}
	if thumbnailSlug.Valid {
		p.Thumbnail = &portfolio.ImageRef{ID: thumbnailID.String, Slug: thumbnailSlug.String}
	}
	p.Featured = featured != 0
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// projectArgs returns the column values of p in projectColumns order.
func projectArgs(p *portfolio.Project) ([]any, error) {
	c := p.Clone()
	c.Normalize()
	technologies, err := json.Marshal(c.Technologies)
	if err != nil {
		return nil, err
	}
	images, err := json.Marshal(c.Images)
	if err != nil {
		return nil, err
	}
	screens, err := json.Marshal(c.Screens)
	if err != nil {
		return nil, err
	}
	var thumbnailID, thumbnailSlug sql.NullString
	if c.Thumbnail != nil {
		thumbnailID = nullString(c.Thumbnail.ID)
		thumbnailSlug = sql.NullString{String: c.Thumbnail.Slug, Valid: true}
	}
	return []any{
		c.ID, c.Title, c.Slug, c.Description, c.ShortDescription, c.Category, string(technologies),
		thumbnailID, thumbnailSlug, string(images), string(screens), c.LiveURL, c.GithubURL,
		boolInt(c.Featured), c.Order, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	}, nil
}

func (r *Repository) CreateProject(ctx context.Context, project *portfolio.Project) error {
	args, err := projectArgs(project)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return r.handleError("create project", err, portfolio.ErrProjectSlugTaken)
	}
	return nil
}

func (r *Repository) getProject(ctx context.Context, where string, arg any) (*portfolio.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+where+` = ?`, arg)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, portfolio.ErrProjectNotFound
	}
	if err != nil {
		return nil, r.handleError("get project", err, portfolio.ErrConflict)
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
	args, err := projectArgs(project)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	// created_at is immutable; id moves to the WHERE clause
	values := append([]any{}, args[1:15]...)
	values = append(values, args[16], args[0])
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET
			title = ?, slug = ?, description = ?, short_description = ?, category = ?,
			technologies = ?, thumbnail_id = ?, thumbnail_slug = ?, images = ?, screens = ?,
			live_url = ?, github_url = ?, featured = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`, values...)
	if err != nil {
		return r.handleError("update project", err, portfolio.ErrProjectSlugTaken)
	}
	return requireRow(res, portfolio.ErrProjectNotFound)
}

func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return r.handleError("delete project", err, portfolio.ErrConflict)
	}
	return requireRow(res, portfolio.ErrProjectNotFound)
}

func (r *Repository) ListProjects(ctx context.Context, filter portfolio.ProjectFilter) ([]*portfolio.Project, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Featured != nil {
		conds = append(conds, "featured = ?")
		args = append(args, boolInt(*filter.Featured))
	}
	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.handleError("list projects", err, portfolio.ErrConflict)
	}
	defer func() {
		_ = rows.Close()
	}()

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

func scanSkill(row scanner) (*portfolio.Skill, error) {
	var (
		s                portfolio.Skill
		created, updated string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Icon, &s.Category, &s.Proficiency, &s.Order, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if s.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateSkill(ctx context.Context, skill *portfolio.Skill) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO skills (`+skillColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		skill.ID, skill.Name, skill.Icon, skill.Category, skill.Proficiency, skill.Order,
		formatTime(skill.CreatedAt), formatTime(skill.UpdatedAt))
	if err != nil {
		return r.handleError("create skill", err, portfolio.ErrSkillNameTaken)
	}
	return nil
}

func (r *Repository) getSkill(ctx context.Context, where string, arg any) (*portfolio.Skill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+skillColumns+` FROM skills WHERE `+where+` = ?`, arg)
	s, err := scanSkill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, portfolio.ErrSkillNotFound
	}
	if err != nil {
		return nil, r.handleError("get skill", err, portfolio.ErrConflict)
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
	res, err := r.db.ExecContext(ctx, `
		UPDATE skills SET name = ?, icon = ?, category = ?, proficiency = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`,
		skill.Name, skill.Icon, skill.Category, skill.Proficiency, skill.Order, formatTime(skill.UpdatedAt), skill.ID)
	if err != nil {
		return r.handleError("update skill", err, portfolio.ErrSkillNameTaken)
	}
	return requireRow(res, portfolio.ErrSkillNotFound)
}

func (r *Repository) DeleteSkill(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM skills WHERE id = ?`, id)
	if err != nil {
		return r.handleError("delete skill", err, portfolio.ErrConflict)
	}
	return requireRow(res, portfolio.ErrSkillNotFound)
}

func (r *Repository) ListSkills(ctx context.Context, filter portfolio.SkillFilter) ([]*portfolio.Skill, error) {
	query := `SELECT ` + skillColumns + ` FROM skills`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY sort_order ASC, proficiency DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.handleError("list skills", err, portfolio.ErrConflict)
	}
	defer func() {
		_ = rows.Close()
	}()

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

func scanMessage(row scanner) (*portfolio.Message, error) {
	var (
		m       portfolio.Message
		read    int
		created string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &read, &created); err != nil {
		return nil, err
	}
	m.Read = read != 0
	var err error
	if m.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) CreateMessage(ctx context.Context, message *portfolio.Message) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		message.ID, message.Name, message.Email, message.Subject, message.Message,
		boolInt(message.Read), formatTime(message.CreatedAt))
	if err != nil {
		return r.handleError("create message", err, portfolio.ErrMessageExists)
	}
	return nil
}

func (r *Repository) GetMessage(ctx context.Context, id string) (*portfolio.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, portfolio.ErrMessageNotFound
	}
	if err != nil {
		return nil, r.handleError("get message", err, portfolio.ErrConflict)
	}
	return m, nil
}

func (r *Repository) UpdateMessage(ctx context.Context, message *portfolio.Message) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET name = ?, email = ?, subject = ?, message = ?, read = ? WHERE id = ?`,
		message.Name, message.Email, message.Subject, message.Message, boolInt(message.Read), message.ID)
	if err != nil {
		return r.handleError("update message", err, portfolio.ErrConflict)
	}
	return requireRow(res, portfolio.ErrMessageNotFound)
}

func (r *Repository) DeleteMessage(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return r.handleError("delete message", err, portfolio.ErrConflict)
	}
	return requireRow(res, portfolio.ErrMessageNotFound)
}

func (r *Repository) ListMessages(ctx context.Context, filter portfolio.MessageFilter) ([]*portfolio.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	var args []any
	if filter.Read != nil {
		query += ` WHERE read = ?`
		args = append(args, boolInt(*filter.Read))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.handleError("list messages", err, portfolio.ErrConflict)
	}
	defer func() {
		_ = rows.Close()
	}()

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

func scanUser(row scanner) (*portfolio.User, error) {
	var (
		u                portfolio.User
		created, updated string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Salt, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *portfolio.User) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Salt,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	if err != nil {
		return r.handleError("create user", err, portfolio.ErrEmailTaken)
	}
	return nil
}

func (r *Repository) getUser(ctx context.Context, where string, arg any) (*portfolio.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, portfolio.ErrUserNotFound
	}
	if err != nil {
		return nil, r.handleError("get user", err, portfolio.ErrConflict)
	}
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*portfolio.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*portfolio.User, error) {
	return r.getUser(ctx, "lower(email) = lower(?)", email)
}

func (r *Repository) ListUsers(ctx context.Context) ([]*portfolio.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, r.handleError("list users", err, portfolio.ErrConflict)
	}
	defer func() {
		_ = rows.Close()
	}()

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
