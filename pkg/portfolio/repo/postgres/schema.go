package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const schema = `
CREATE TABLE IF NOT EXISTS images (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL,
	category    TEXT NOT NULL,
	mime_type   TEXT NOT NULL,
	size        BIGINT NOT NULL DEFAULT 0,
	filename    TEXT NOT NULL,
	data        BYTEA,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT images_slug_key UNIQUE (slug)
);

CREATE INDEX IF NOT EXISTS idx_images_category ON images(category);

CREATE TABLE IF NOT EXISTS projects (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	slug              TEXT NOT NULL,
	description       TEXT NOT NULL,
	short_description TEXT NOT NULL,
	category          TEXT NOT NULL,
	technologies      TEXT[] NOT NULL DEFAULT '{}',
	thumbnail         JSONB,
	images            TEXT[] NOT NULL DEFAULT '{}',
	screens           JSONB NOT NULL DEFAULT '[]',
	live_url          TEXT NOT NULL DEFAULT '',
	github_url        TEXT NOT NULL DEFAULT '',
	featured          BOOLEAN NOT NULL DEFAULT FALSE,
	sort_order        INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	CONSTRAINT projects_slug_key UNIQUE (slug)
);

CREATE INDEX IF NOT EXISTS idx_projects_category ON projects(category);
CREATE INDEX IF NOT EXISTS idx_projects_featured ON projects(featured);

CREATE TABLE IF NOT EXISTS skills (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	icon        TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	proficiency INTEGER NOT NULL CHECK (proficiency BETWEEN 1 AND 5),
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT skills_name_key UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	subject    TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	salt          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users(lower(email));
`

// Migrate creates any missing tables and indexes in the current search path.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate postgres schema: %w", err)
	}
	return nil
}

// EnsureSchema creates the named Postgres schema if it does not exist.
func EnsureSchema(ctx context.Context, db DBTX, name string) error {
	if _, err := db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("create schema %s: %w", name, err)
	}
	return nil
}
