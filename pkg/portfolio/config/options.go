package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// WithDotEnv loads .env files into the process environment. Missing files
// are skipped; variables that are already set are not overridden.
func WithDotEnv(paths ...string) Option {
	return func(c *ServerConfig) error {
		if len(paths) == 0 {
			paths = []string{".env"}
		}
		for _, path := range paths {
			if err := godotenv.Load(path); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return fmt.Errorf("load %s: %w", path, err)
			}
		}
		return nil
	}
}

// WithEnv applies environment variable overrides. Fields whose variable is
// unset keep their current value.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}

// WithYAMLFile applies the keys present in a YAML file.
func WithYAMLFile(path string) Option {
	return func(c *ServerConfig) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithStorage configures where image bytes are kept
func WithStorage(storageType string) Option {
	return func(c *ServerConfig) error {
		c.StorageType = storageType
		return nil
	}
}

// WithJWTSecret sets the token signing secret
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}
