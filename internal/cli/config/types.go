// Package config loads and validates sqlshape CLI configuration.
package config

import "time"

// Default configuration values.
const (
	DefaultMaxDepth  = 16
	DefaultStateFile = ".sqlshape/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultSort      = "count"
	DefaultMembers   = 3
	DefaultDebounce  = 300 * time.Millisecond
	DefaultPGLimit   = 1000
)

// Config holds all CLI configuration options.
type Config struct {
	MaxDepth     int            `koanf:"max_depth"`
	Workers      int            `koanf:"workers"`
	OutputFormat string         `koanf:"output"`
	StatePath    string         `koanf:"state_path"`
	Verbose      bool           `koanf:"verbose"`
	NoColor      bool           `koanf:"no_color"`
	Group        GroupConfig    `koanf:"group"`
	Watch        WatchConfig    `koanf:"watch"`
	Postgres     PostgresConfig `koanf:"postgres"`
}

// GroupConfig controls how grouping reports are built and shown.
type GroupConfig struct {
	MinCount int    `koanf:"min_count"`
	Sort     string `koanf:"sort"`
	Members  int    `koanf:"members"`
	Save     bool   `koanf:"save"`
	Watch    bool   `koanf:"watch"`
}

// WatchConfig controls file watching for group --watch.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// PostgresConfig selects a pg_stat_statements source.
type PostgresConfig struct {
	DSN   string `koanf:"dsn"`
	Limit int    `koanf:"limit"`
}

func defaults() map[string]any {
	return map[string]any{
		"max_depth":       DefaultMaxDepth,
		"workers":         0,
		"output":          DefaultOutput,
		"state_path":      DefaultStateFile,
		"verbose":         false,
		"no_color":        false,
		"group.min_count": 1,
		"group.sort":      DefaultSort,
		"group.members":   DefaultMembers,
		"watch.debounce":  DefaultDebounce.String(),
		"postgres.limit":  DefaultPGLimit,
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		MaxDepth:     DefaultMaxDepth,
		OutputFormat: DefaultOutput,
		StatePath:    DefaultStateFile,
		Group: GroupConfig{
			MinCount: 1,
			Sort:     DefaultSort,
			Members:  DefaultMembers,
		},
		Watch:    WatchConfig{Debounce: DefaultDebounce},
		Postgres: PostgresConfig{Limit: DefaultPGLimit},
	}
}
