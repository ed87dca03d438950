package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "inline", cfg.StorageType)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.ProtectReads)
}

func TestWithEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DATABASE_URL", "file:portfolio.db")
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("BLOB_BUCKET", "portfolio-images")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("JWT_EXPIRATION", "1h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("PROTECT_READS", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")

	cfg, err := Load(WithEnv())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "file:portfolio.db", cfg.DatabaseURL)
	assert.Equal(t, "s3", cfg.StorageType)
	assert.Equal(t, "portfolio-images", cfg.S3.Bucket)
	assert.Equal(t, "auto", cfg.S3.Region, "unset variables keep defaults")
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, time.Hour, cfg.JWTExpiration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.ProtectReads)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestWithYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_type: postgres
database_url: postgres://localhost/portfolio
db_schema: portfolio
storage_type: fs
storage_dir: /var/lib/portfolio
jwt_expiration: 30m
`), 0o600))

	cfg, err := Load(WithYAMLFile(path))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "portfolio", cfg.DBSchema)
	assert.Equal(t, "fs", cfg.StorageType)
	assert.Equal(t, "/var/lib/portfolio", cfg.StorageDir)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, "8080", cfg.Port)

	_, err = Load(WithYAMLFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestWithDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORTFOLIO_DOTENV_PROBE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PORTFOLIO_DOTENV_PROBE") })

	_, err := Load(WithDotEnv(path, filepath.Join(t.TempDir(), "absent.env")))
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("PORTFOLIO_DOTENV_PROBE"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"UnknownDatabase", []Option{WithDatabase("mysql", "x")}},
		{"PostgresWithoutURL", []Option{WithDatabase("postgres", "")}},
		{"UnknownStorage", []Option{WithStorage("ftp")}},
		{"S3WithoutBucket", []Option{WithStorage("s3")}},
		{"EmptyPort", []Option{func(c *ServerConfig) error { c.Port = ""; return nil }}},
		{"BadLogLevel", []Option{func(c *ServerConfig) error { c.LogLevel = "loud"; return nil }}},
		{"BadLogFormat", []Option{func(c *ServerConfig) error { c.LogFormat = "xml"; return nil }}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestBuildRequiresSecret(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	_, err = cfg.Build(context.Background(), nil)
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	pngBytes := []byte("\x89PNG\r\n\x1a\n0000000000000000")

	tests := []struct {
		name string
		opts []Option
	}{
		{"MemoryInline", nil},
		{"MemoryBlobs", []Option{WithStorage("memory")}},
		{"SQLiteFilesystem", []Option{
			WithDatabase("sqlite", filepath.Join(t.TempDir(), "portfolio.db")),
			WithStorage("fs"),
			func(c *ServerConfig) error { c.StorageDir = t.TempDir(); return nil },
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(append(tt.opts, WithJWTSecret("secret"))...)
			require.NoError(t, err)

			app, err := cfg.Build(ctx, nil)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, app.Close()) })

			require.NoError(t, app.Backend.Ping(ctx))
			img, err := app.Service.CreateImage(ctx, portfolio.CreateImageRequest{
				Slug:   "logo",
				Upload: portfolio.Upload{Filename: "logo.png", Data: pngBytes},
			})
			require.NoError(t, err)
			assert.Equal(t, "logo.png", img.Filename)

			content, err := app.Service.GetImage(ctx, "logo")
			require.NoError(t, err)
			assert.Equal(t, pngBytes, content.Data)
		})
	}
}

func TestBuildWithRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg, err := Load(WithJWTSecret("secret"), func(c *ServerConfig) error {
		c.RedisURL = "redis://" + mr.Addr()
		return nil
	})
	require.NoError(t, err)

	app, err := cfg.Build(context.Background(), nil)
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	_, err = app.Service.CreateProject(ctx, portfolio.CreateProjectRequest{
		Title:            "Locked",
		Description:      "d",
		ShortDescription: "sd",
		Category:         portfolio.ProjectCategoryBranding,
	})
	require.NoError(t, err)
	p, err := app.Service.AddScreen(ctx, "locked", portfolio.AddScreenRequest{Title: "Home"})
	require.NoError(t, err)
	assert.Len(t, p.Screens, 1)
}

func TestNewLogger(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg.NewLogger())

	cfg.LogFormat = "json"
	cfg.LogLevel = "debug"
	logger := cfg.NewLogger()
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
