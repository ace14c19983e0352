package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// SnapshotConfig selects the snapshot storage backend.
type SnapshotConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	// Path is the SQLite database file (sqlite driver).
	Path string `yaml:"path"`
	// DatabaseURL is the Postgres connection string (postgres driver);
	// usually supplied via the DATABASE_URL environment variable instead.
	DatabaseURL string `yaml:"databaseURL"`
}

// NotifierConfig selects the change-notification sink.
type NotifierConfig struct {
	// RedisAddr enables the redis publisher when non-empty; the log sink is
	// used otherwise.
	RedisAddr string `yaml:"redisAddr" validate:"omitempty,hostname_port"`
	Channel   string `yaml:"channel"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Notifier NotifierConfig `yaml:"notifier"`
}

func defaults() AppConfig {
	return AppConfig{
		Server:   ServerConfig{Port: 8080},
		Snapshot: SnapshotConfig{Driver: "sqlite", Path: "data/app.db"},
		Notifier: NotifierConfig{Channel: "routes.events"},
	}
}

// Load reads and validates the YAML configuration at path. A missing file
// is not an error: defaults apply, with environment variables layered on
// top by the composition roots.
func Load(path string) (AppConfig, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return AppConfig{}, fmt.Errorf("load config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("load config: parse %q: %w", path, err)
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("load config: validate %q: %w", path, err)
	}
	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
