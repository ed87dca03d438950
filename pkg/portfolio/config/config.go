package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/tendant/portfolio-content/pkg/portfolio/api"
	"github.com/tendant/portfolio-content/pkg/portfolio/auth"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		DatabaseType:   "memory",
		DatabaseName:   "portfolio",
		StorageType:    "inline",
		StorageDir:     "./data/images",
		JWTExpiration:  auth.DefaultTokenTTL,
		AllowedOrigins: []string{"*"},
		LockTTL:        30 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
		MaxUploadBytes: api.DefaultMaxUploadBytes,
		S3: S3Config{
			Region: "auto",
		},
	}
}

// ServerConfig is the process configuration, resolved once at startup and
// passed to the components that need it.
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT"`
	Environment string `yaml:"environment" env:"ENVIRONMENT"` // development, production, testing

	// Database configuration
	DatabaseType string `yaml:"database_type" env:"DATABASE_TYPE"` // memory, postgres, sqlite, mongo
	DatabaseURL  string `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseName string `yaml:"database_name" env:"DATABASE_NAME"` // MongoDB database
	DBSchema     string `yaml:"db_schema" env:"DB_SCHEMA"`         // Postgres search_path schema

	// Image byte storage. inline keeps bytes in the database record.
	StorageType string   `yaml:"storage_type" env:"STORAGE_TYPE"` // inline, memory, fs, s3
	StorageDir  string   `yaml:"storage_dir" env:"STORAGE_DIR"`
	S3          S3Config `yaml:"s3"`

	// Auth
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiration time.Duration `yaml:"jwt_expiration" env:"JWT_EXPIRATION"`
	ProtectReads  bool          `yaml:"protect_reads" env:"PROTECT_READS"`

	// HTTP
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`

	// Project locks. Without REDIS_URL the lock is process local.
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`   // debug, info, warn, error
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"` // text, json
}

// S3Config configures an S3 compatible bucket (AWS, MinIO, R2).
type S3Config struct {
	Bucket          string `yaml:"bucket" env:"BLOB_BUCKET"`
	Region          string `yaml:"region" env:"S3_REGION"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"S3_USE_PATH_STYLE"`
	CreateBucket    bool   `yaml:"create_bucket" env:"S3_CREATE_BUCKET"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres", "sqlite", "mongo":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("database_type must be one of memory, postgres, sqlite, mongo; got %q", c.DatabaseType)
	}

	switch c.StorageType {
	case "inline", "memory":
	case "fs":
		if c.StorageDir == "" {
			return errors.New("storage_dir is required when using fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("blob bucket is required when using s3 storage")
		}
	default:
		return fmt.Errorf("storage_type must be one of inline, memory, fs, s3; got %q", c.StorageType)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json; got %q", c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.JWTExpiration <= 0 {
		return errors.New("jwt_expiration must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	if c.LockTTL <= 0 {
		return errors.New("lock_ttl must be positive")
	}
	return nil
}

// IsProduction reports whether the process runs in production.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}
