// Package mongodb stores the portfolio in MongoDB. It is the document
// variant: projects carry their screens inline and images carry their bytes.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tendant/portfolio-content/pkg/portfolio"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names
const (
	imagesCollection   = "images"
	projectsCollection = "projects"
	skillsCollection   = "skills"
	messagesCollection = "messages"
	usersCollection    = "users"
)

// Repository implements portfolio.Repository on a MongoDB database.
type Repository struct {
	db *mongo.Database
}

// New wraps a database handle. Call EnsureIndexes before first use.
func New(db *mongo.Database) *Repository {
	return &Repository{db: db}
}

var _ portfolio.Repository = (*Repository)(nil)

// Connect dials uri and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}, Options: options.Index().SetUnique(true)}
	}
	plain := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys}
	}

	indexes := map[string][]mongo.IndexModel{
		imagesCollection: {unique("slug"), plain(bson.D{{Key: "category", Value: 1}})},
		projectsCollection: {
			unique("slug"),
			plain(bson.D{{Key: "category", Value: 1}}),
			plain(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
		skillsCollection:   {unique("name"), plain(bson.D{{Key: "order", Value: 1}, {Key: "proficiency", Value: -1}})},
		messagesCollection: {plain(bson.D{{Key: "createdAt", Value: -1}})},
		usersCollection:    {unique("emailKey")},
	}
	for name, models := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (r *Repository) handleError(operation string, err error, conflict error) error {
	if mongo.IsDuplicateKeyError(err) {
		return conflict
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// findAll decodes every document matching filter into docs.
func (r *Repository) findAll(ctx context.Context, collection string, filter bson.M, opts *options.FindOptionsBuilder, docs any) error {
	cur, err := r.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, docs)
}

// Image operations

func (r *Repository) CreateImage(ctx context.Context, image *portfolio.Image) error {
	_, err := r.db.Collection(imagesCollection).InsertOne(ctx, toImageDoc(image))
	if err != nil {
		return r.handleError("create image", err, portfolio.ErrImageSlugTaken)
	}
	return nil
}

func (r *Repository) getImage(ctx context.Context, filter bson.M) (*portfolio.Image, error) {
	var doc imageDoc
	err := r.db.Collection(imagesCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, portfolio.ErrImageNotFound
	}
	if err != nil {
		return nil, r.handleError("get image", err, portfolio.ErrConflict)
	}
	return doc.toImage(), nil
}

func (r *Repository) GetImageBySlug(ctx context.Context, slug string) (*portfolio.Image, error) {
	return r.getImage(ctx, bson.M{"slug": slug})
}

func (r *Repository) GetImage(ctx context.Context, id string) (*portfolio.Image, error) {
	return r.getImage(ctx, bson.M{"_id": id})
}

func (r *Repository) UpdateImage(ctx context.Context, image *portfolio.Image) error {
	set := bson.M{
		"name":      image.Name,
		"slug":      image.Slug,
		"category":  string(image.Category),
		"mimeType":  image.MimeType,
		"size":      image.Size,
		"filename":  image.Filename,
		"updatedAt": image.UpdatedAt,
	}
	if image.Data != nil {
		set["data"] = image.Data
	}
	res, err := r.db.Collection(imagesCollection).UpdateOne(ctx, bson.M{"_id": image.ID}, bson.M{"$set": set})
	if err != nil {
		return r.handleError("update image", err, portfolio.ErrImageSlugTaken)
	}
	if res.MatchedCount == 0 {
		return portfolio.ErrImageNotFound
	}
	return nil
}

func (r *Repository) DeleteImage(ctx context.Context, slug string) error {
	res, err := r.db.Collection(imagesCollection).DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return r.handleError("delete image", err, portfolio.ErrConflict)
	}
	if res.DeletedCount == 0 {
		return portfolio.ErrImageNotFound
	}
	return nil
}

func (r *Repository) ListImages(ctx context.Context, filter portfolio.ImageFilter) ([]*portfolio.Image, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	sort := bson.D{{Key: "name", Value: 1}, {Key: "slug", Value: 1}}
	if filter.SortBy == "category" {
		sort = append(bson.D{{Key: "category", Value: 1}}, sort...)
	}
	opts := options.Find().SetSort(sort).SetProjection(bson.M{"data": 0})

	var docs []imageDoc
	if err := r.findAll(ctx, imagesCollection, query, opts, &docs); err != nil {
		return nil, r.handleError("list images", err, portfolio.ErrConflict)
	}
	images := make([]*portfolio.Image, len(docs))
	for i, d := range docs {
		images[i] = d.toImage()
	}
	return images, nil
}

// Project operations

func (r *Repository) CreateProject(ctx context.Context, project *portfolio.Project) error {
	_, err := r.db.Collection(projectsCollection).InsertOne(ctx, toProjectDoc(project))
	if err != nil {
		return r.handleError("create project", err, portfolio.ErrProjectSlugTaken)
	}
	return nil
}

func (r *Repository) getProject(ctx context.Context, filter bson.M) (*portfolio.Project, error) {
	var doc projectDoc
	err := r.db.Collection(projectsCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, portfolio.ErrProjectNotFound
	}
	if err != nil {
		return nil, r.handleError("get project", err, portfolio.ErrConflict)
	}
	return doc.toProject(), nil
}

func (r *Repository) GetProject(ctx context.Context, id string) (*portfolio.Project, error) {
	return r.getProject(ctx, bson.M{"_id": id})
}

func (r *Repository) GetProjectBySlug(ctx context.Context, slug string) (*portfolio.Project, error) {
	return r.getProject(ctx, bson.M{"slug": slug})
}

// UpdateProject replaces the whole document, screens included, keeping createdAt.
func (r *Repository) UpdateProject(ctx context.Context, project *portfolio.Project) error {
	doc := toProjectDoc(project)
	update := bson.M{"$set": bson.M{
		"title":            doc.Title,
		"slug":             doc.Slug,
		"description":      doc.Description,
		"shortDescription": doc.ShortDescription,
		"category":         doc.Category,
		"technologies":     doc.Technologies,
		"thumbnail":        doc.Thumbnail,
		"images":           doc.Images,
		"screens":          doc.Screens,
		"liveUrl":          doc.LiveURL,
		"githubUrl":        doc.GithubURL,
		"featured":         doc.Featured,
		"order":            doc.Order,
		"updatedAt":        doc.UpdatedAt,
	}}
	res, err := r.db.Collection(projectsCollection).UpdateOne(ctx, bson.M{"_id": project.ID}, update)
	if err != nil {
		return r.handleError("update project", err, portfolio.ErrProjectSlugTaken)
	}
	if res.MatchedCount == 0 {
		return portfolio.ErrProjectNotFound
	}
	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.Collection(projectsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return r.handleError("delete project", err, portfolio.ErrConflict)
	}
	if res.DeletedCount == 0 {
		return portfolio.ErrProjectNotFound
	}
	return nil
}

func (r *Repository) ListProjects(ctx context.Context, filter portfolio.ProjectFilter) ([]*portfolio.Project, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.Featured != nil {
		query["featured"] = *filter.Featured
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}})

	var docs []projectDoc
	if err := r.findAll(ctx, projectsCollection, query, opts, &docs); err != nil {
		return nil, r.handleError("list projects", err, portfolio.ErrConflict)
	}
	projects := make([]*portfolio.Project, len(docs))
	for i, d := range docs {
		projects[i] = d.toProject()
	}
	return projects, nil
}

// Skill operations

func (r *Repository) CreateSkill(ctx context.Context, skill *portfolio.Skill) error {
	_, err := r.db.Collection(skillsCollection).InsertOne(ctx, toSkillDoc(skill))
	if err != nil {
		return r.handleError("create skill", err, portfolio.ErrSkillNameTaken)
	}
	return nil
}

func (r *Repository) getSkill(ctx context.Context, filter bson.M) (*portfolio.Skill, error) {
	var doc skillDoc
	err := r.db.Collection(skillsCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, portfolio.ErrSkillNotFound
	}
	if err != nil {
		return nil, r.handleError("get skill", err, portfolio.ErrConflict)
	}
	return doc.toSkill(), nil
}

func (r *Repository) GetSkill(ctx context.Context, id string) (*portfolio.Skill, error) {
	return r.getSkill(ctx, bson.M{"_id": id})
}

func (r *Repository) GetSkillByName(ctx context.Context, name string) (*portfolio.Skill, error) {
	return r.getSkill(ctx, bson.M{"name": name})
}

func (r *Repository) UpdateSkill(ctx context.Context, skill *portfolio.Skill) error {
	doc := toSkillDoc(skill)
	update := bson.M{"$set": bson.M{
		"name":        doc.Name,
		"icon":        doc.Icon,
		"category":    doc.Category,
		"proficiency": doc.Proficiency,
		"order":       doc.Order,
		"updatedAt":   doc.UpdatedAt,
	}}
	res, err := r.db.Collection(skillsCollection).UpdateOne(ctx, bson.M{"_id": skill.ID}, update)
	if err != nil {
		return r.handleError("update skill", err, portfolio.ErrSkillNameTaken)
	}
	if res.MatchedCount == 0 {
		return portfolio.ErrSkillNotFound
	}
	return nil
}

func (r *Repository) DeleteSkill(ctx context.Context, id string) error {
	res, err := r.db.Collection(skillsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return r.handleError("delete skill", err, portfolio.ErrConflict)
	}
	if res.DeletedCount == 0 {
		return portfolio.ErrSkillNotFound
	}
	return nil
}

func (r *Repository) ListSkills(ctx context.Context, filter portfolio.SkillFilter) ([]*portfolio.Skill, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "order", Value: 1},
		{Key: "proficiency", Value: -1},
		{Key: "name", Value: 1},
	})

	var docs []skillDoc
	if err := r.findAll(ctx, skillsCollection, query, opts, &docs); err != nil {
		return nil, r.handleError("list skills", err, portfolio.ErrConflict)
	}
	skills := make([]*portfolio.Skill, len(docs))
	for i, d := range docs {
		skills[i] = d.toSkill()
	}
	return skills, nil
}

// Message operations

func (r *Repository) CreateMessage(ctx context.Context, message *portfolio.Message) error {
	_, err := r.db.Collection(messagesCollection).InsertOne(ctx, toMessageDoc(message))
	if err != nil {
		return r.handleError("create message", err, portfolio.ErrMessageExists)
	}
	return nil
}

func (r *Repository) GetMessage(ctx context.Context, id string) (*portfolio.Message, error) {
	var doc messageDoc
	err := r.db.Collection(messagesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, portfolio.ErrMessageNotFound
	}
	if err != nil {
		return nil, r.handleError("get message", err, portfolio.ErrConflict)
	}
	return doc.toMessage(), nil
}

func (r *Repository) UpdateMessage(ctx context.Context, message *portfolio.Message) error {
	res, err := r.db.Collection(messagesCollection).ReplaceOne(ctx, bson.M{"_id": message.ID}, toMessageDoc(message))
	if err != nil {
		return r.handleError("update message", err, portfolio.ErrConflict)
	}
	if res.MatchedCount == 0 {
		return portfolio.ErrMessageNotFound
	}
	return nil
}

func (r *Repository) DeleteMessage(ctx context.Context, id string) error {
	res, err := r.db.Collection(messagesCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return r.handleError("delete message", err, portfolio.ErrConflict)
	}
	if res.DeletedCount == 0 {
		return portfolio.ErrMessageNotFound
	}
	return nil
}

func (r *Repository) ListMessages(ctx context.Context, filter portfolio.MessageFilter) ([]*portfolio.Message, error) {
	query := bson.M{}
	if filter.Read != nil {
		query["read"] = *filter.Read
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var docs []messageDoc
	if err := r.findAll(ctx, messagesCollection, query, opts, &docs); err != nil {
		return nil, r.handleError("list messages", err, portfolio.ErrConflict)
	}
	messages := make([]*portfolio.Message, len(docs))
	for i, d := range docs {
		messages[i] = d.toMessage()
	}
	return messages, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *portfolio.User) error {
	_, err := r.db.Collection(usersCollection).InsertOne(ctx, toUserDoc(user))
	if err != nil {
		return r.handleError("create user", err, portfolio.ErrEmailTaken)
	}
	return nil
}

func (r *Repository) getUser(ctx context.Context, filter bson.M) (*portfolio.User, error) {
	var doc userDoc
	err := r.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, portfolio.ErrUserNotFound
	}
	if err != nil {
		return nil, r.handleError("get user", err, portfolio.ErrConflict)
	}
	return doc.toUser(), nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*portfolio.User, error) {
	return r.getUser(ctx, bson.M{"_id": id})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*portfolio.User, error) {
	return r.getUser(ctx, bson.M{"emailKey": strings.ToLower(email)})
}

func (r *Repository) ListUsers(ctx context.Context) ([]*portfolio.User, error) {
	var docs []userDoc
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := r.findAll(ctx, usersCollection, bson.M{}, opts, &docs); err != nil {
		return nil, r.handleError("list users", err, portfolio.ErrConflict)
	}
	users := make([]*portfolio.User, len(docs))
	for i, d := range docs {
		users[i] = d.toUser()
	}
	return users, nil
}
