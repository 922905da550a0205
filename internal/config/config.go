package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	HistoryCapacity int     `envconfig:"HISTORY_CAPACITY" default:"100"`
	IndexCapacity   int     `envconfig:"INDEX_CAPACITY" default:"4"`
	IndexMaxDepth   int     `envconfig:"INDEX_MAX_DEPTH" default:"8"`
	WorldExtent     float64 `envconfig:"WORLD_EXTENT" default:"1000000"`

	AutosaveEnabled  bool          `envconfig:"AUTOSAVE_ENABLED" default:"true"`
	AutosaveInterval time.Duration `envconfig:"AUTOSAVE_INTERVAL" default:"30s"`
	SnapshotDir      string        `envconfig:"SNAPSHOT_DIR" default:"./data/snapshots"`
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	DocumentID       string        `envconfig:"DOCUMENT_ID" default:"default"`

	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
