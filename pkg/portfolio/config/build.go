package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/auth"
	redislock "github.com/tendant/portfolio-content/pkg/portfolio/lock/redis"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/memory"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/mongodb"
	repopg "github.com/tendant/portfolio-content/pkg/portfolio/repo/postgres"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/sqlite"
	fsstorage "github.com/tendant/portfolio-content/pkg/portfolio/storage/fs"
	memorystorage "github.com/tendant/portfolio-content/pkg/portfolio/storage/memory"
	s3storage "github.com/tendant/portfolio-content/pkg/portfolio/storage/s3"
)

// Backend is an opened storage variant: a repository and the image store
// that sits on top of it.
type Backend struct {
	Repo   portfolio.Repository
	Images portfolio.ImageStore
	// Ping checks the database connection.
	Ping    func(ctx context.Context) error
	closers []func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// OpenBackend connects the configured repository and image store, creating
// schemas and indexes as needed.
func (c *ServerConfig) OpenBackend(ctx context.Context) (*Backend, error) {
	b := &Backend{Ping: func(context.Context) error { return nil }}
	if err := c.openRepository(ctx, b); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	blobs, err := c.buildBlobStore(ctx)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageType, err)
	}
	if blobs == nil {
		b.Images = portfolio.NewInlineImageStore(b.Repo)
	} else {
		b.Images = portfolio.NewBlobImageStore(b.Repo, blobs)
	}
	return b, nil
}

func (c *ServerConfig) openRepository(ctx context.Context, b *Backend) error {
	switch c.DatabaseType {
	case "memory":
		b.Repo = memory.New()
		return nil

	case "postgres":
		pool, err := c.connectPostgres(ctx)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
		b.Ping = pool.Ping
		if c.DBSchema != "" {
			if err := repopg.EnsureSchema(ctx, pool, c.DBSchema); err != nil {
				return err
			}
		}
		if err := repopg.Migrate(ctx, pool); err != nil {
			return err
		}
		b.Repo = repopg.NewWithPool(pool)
		return nil

	case "sqlite":
		repo, err := sqlite.Open(c.DatabaseURL)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, repo.Close)
		b.Ping = repo.Ping
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		b.Repo = repo
		return nil

	case "mongo":
		client, err := mongodb.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		})
		b.Ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		repo := mongodb.New(client.Database(c.DatabaseName))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		b.Repo = repo
		return nil

	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// connectPostgres opens a pool whose sessions use the configured schema.
func (c *ServerConfig) connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema := c.DBSchema; schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// buildBlobStore returns nil for inline storage.
func (c *ServerConfig) buildBlobStore(ctx context.Context) (portfolio.BlobStore, error) {
	switch c.StorageType {
	case "inline":
		return nil, nil
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.StorageDir})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}

// App is the wired application: storage, service and authenticator.
type App struct {
	Config  *ServerConfig
	Logger  *slog.Logger
	Backend *Backend
	Service portfolio.Service
	Auth    *auth.Authenticator
	closers []func() error
}

// Close releases every resource held by the app.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// Build wires the service and authenticator on top of the configured backend.
func (c *ServerConfig) Build(ctx context.Context, logger *slog.Logger) (*App, error) {
	if c.JWTSecret == "" {
		return nil, errors.New("jwt_secret is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := c.OpenBackend(ctx)
	if err != nil {
		return nil, err
	}
	app := &App{Config: c, Logger: logger, Backend: backend, closers: []func() error{backend.Close}}

	options := []portfolio.Option{
		portfolio.WithRepository(backend.Repo),
		portfolio.WithImageStore(backend.Images),
		portfolio.WithLogger(logger),
	}
	if c.RedisURL != "" {
		client, err := redislock.Dial(ctx, c.RedisURL)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		options = append(options, portfolio.WithLocker(redislock.New(client,
			redislock.WithTTL(c.LockTTL),
			redislock.WithLogger(logger),
		)))
	}

	app.Service, err = portfolio.New(options...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Auth, err = auth.New(backend.Repo, c.JWTSecret,
		auth.WithTokenTTL(c.JWTExpiration),
		auth.WithLogger(logger),
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// NewLogger builds the process logger: tint for text, JSON otherwise.
func (c *ServerConfig) NewLogger() *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}
