// Package config loads the service configuration from a YAML file, an
// optional .env file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Editor  EditorConfig  `yaml:"editor"`
	Export  ExportConfig  `yaml:"export"`
	Photo   PhotoConfig   `yaml:"photo"`
	AI      AIConfig      `yaml:"ai"`
	Auth    AuthConfig    `yaml:"auth"`
	Redis   RedisConfig   `yaml:"redis"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	PublicURL       string        `yaml:"public_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowOrigins    string        `yaml:"allow_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	// Driver is one of postgres, firestore or sqlite.
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	ProjectID   string `yaml:"project_id"`
	Collection  string `yaml:"collection"`
}

type EditorConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	SaveTimeout time.Duration `yaml:"save_timeout"`
}

type ExportConfig struct {
	ChromePath string        `yaml:"chrome_path"`
	Scale      float64       `yaml:"scale"`
	Format     string        `yaml:"format"`
	Timeout    time.Duration `yaml:"timeout"`
	History    bool          `yaml:"history"`
}

type PhotoConfig struct {
	// Driver is gcs or local.
	Driver        string `yaml:"driver"`
	Bucket        string `yaml:"bucket"`
	Dir           string `yaml:"dir"`
	PublicBaseURL string `yaml:"public_base_url"`
	MaxDimension  int    `yaml:"max_dimension"`
	Quality       int    `yaml:"quality"`
}

type AIConfig struct {
	// Provider is http or vertex.
	Provider   string        `yaml:"provider"`
	ServiceURL string        `yaml:"service_url"`
	Timeout    time.Duration `yaml:"timeout"`
	ProjectID  string        `yaml:"project_id"`
	Region     string        `yaml:"region"`
	Model      string        `yaml:"model"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	PublicKeyPath string `yaml:"public_key_path"`
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
	CookieName    string `yaml:"cookie_name"`
	CookieSecure  bool   `yaml:"cookie_secure"`
	// Registry is memory or redis.
	Registry string `yaml:"registry"`
}

type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	Cluster  bool     `yaml:"cluster"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":3000", PublicURL: "http://localhost:3000", ShutdownTimeout: 10 * time.Second},
		Log:     LogConfig{Level: "info", Format: "json"},
		Storage: StorageConfig{Driver: "sqlite", SQLitePath: "data/cv.db", Collection: "cvs"},
		Editor:  EditorConfig{Debounce: 1500 * time.Millisecond, SaveTimeout: 10 * time.Second},
		Export:  ExportConfig{Scale: 2, Format: "A4", Timeout: 60 * time.Second, History: true},
		Photo:   PhotoConfig{Driver: "local", Dir: "data/media", Quality: 85},
		AI:      AIConfig{Provider: "http", ServiceURL: "http://ai-service:8000", Timeout: 60 * time.Second, Region: "us-central1", Model: "gemini-1.5-pro"},
		Auth:    AuthConfig{CookieName: "cv_session", Registry: "memory"},
		Redis:   RedisConfig{Addrs: []string{"localhost:6379"}},
	}
}

// Load reads .env (if present), then CONFIG_FILE (default config.yaml; a
// missing file keeps the defaults), then applies environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFile(path)
}

func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		cfg.Server.PublicURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		cfg.Export.ChromePath = v
	}
	if v := os.Getenv("AI_SERVICE_URL"); v != "" {
		cfg.AI.ServiceURL = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addrs = strings.Split(v, ",")
	}
	if v := os.Getenv("GCS_BUCKET"); v != "" {
		cfg.Photo.Bucket = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		if cfg.Storage.ProjectID == "" {
			cfg.Storage.ProjectID = v
		}
		if cfg.AI.ProjectID == "" {
			cfg.AI.ProjectID = v
		}
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage: postgres driver needs database_url")
		}
	case "firestore":
		if c.Storage.ProjectID == "" {
			return errors.New("storage: firestore driver needs project_id")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("storage: sqlite driver needs sqlite_path")
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}

	switch c.Photo.Driver {
	case "gcs":
		if c.Photo.Bucket == "" {
			return errors.New("photo: gcs driver needs bucket")
		}
	case "local":
		if c.Photo.Dir == "" {
			return errors.New("photo: local driver needs dir")
		}
	default:
		return fmt.Errorf("photo: unknown driver %q", c.Photo.Driver)
	}
	if c.Photo.MaxDimension < 0 {
		return errors.New("photo: max_dimension must not be negative")
	}

	switch c.AI.Provider {
	case "http":
		if c.AI.ServiceURL == "" {
			return errors.New("ai: http provider needs service_url")
		}
	case "vertex":
		if c.AI.ProjectID == "" || c.AI.Region == "" {
			return errors.New("ai: vertex provider needs project_id and region")
		}
	default:
		return fmt.Errorf("ai: unknown provider %q", c.AI.Provider)
	}

	if c.Auth.JWTSecret == "" && c.Auth.PublicKeyPath == "" {
		return errors.New("auth: jwt_secret or public_key_path is required")
	}
	if c.Auth.Registry != "memory" && c.Auth.Registry != "redis" {
		return fmt.Errorf("auth: unknown registry %q", c.Auth.Registry)
	}
	if c.Auth.Registry == "redis" && len(c.Redis.Addrs) == 0 {
		return errors.New("redis: at least one address is required")
	}

	if c.Editor.Debounce <= 0 {
		return errors.New("editor: debounce must be positive")
	}
	if c.Export.Scale < 2 {
		return errors.New("export: scale must be at least 2")
	}
	return nil
}
