package sqlite

// schema mirrors the relational layout of the edge deployment: scalar
// columns per entity with JSON text for list-valued project fields.
const schema = `
CREATE TABLE IF NOT EXISTS images (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	category    TEXT NOT NULL,
	mime_type   TEXT NOT NULL,
	size        INTEGER NOT NULL DEFAULT 0,
	filename    TEXT NOT NULL,
	data        BLOB,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_images_category ON images(category);

CREATE TABLE IF NOT EXISTS projects (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	slug              TEXT NOT NULL UNIQUE,
	description       TEXT NOT NULL,
	short_description TEXT NOT NULL,
	category          TEXT NOT NULL,
	technologies      TEXT NOT NULL DEFAULT '[]',
	thumbnail_id      TEXT,
	thumbnail_slug    TEXT,
	images            TEXT NOT NULL DEFAULT '[]',
	screens           TEXT NOT NULL DEFAULT '[]',
	live_url          TEXT NOT NULL DEFAULT '',
	github_url        TEXT NOT NULL DEFAULT '',
	featured          INTEGER NOT NULL DEFAULT 0,
	sort_order        INTEGER NOT NULL DEFAULT 0,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_category ON projects(category);
CREATE INDEX IF NOT EXISTS idx_projects_featured ON projects(featured);

CREATE TABLE IF NOT EXISTS skills (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	icon        TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	proficiency INTEGER NOT NULL,
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	subject    TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	salt          TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(lower(email));
`
