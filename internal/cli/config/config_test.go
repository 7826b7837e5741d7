package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.Int("max-depth", DefaultMaxDepth, "")
	fs.Int("workers", 0, "")
	fs.StringP("output", "o", "", "")
	fs.String("state", "", "")
	fs.Bool("no-color", false, "")
	fs.Int("min-count", 1, "")
	fs.String("sort", "", "")
	fs.Bool("watch", false, "")
	fs.Duration("debounce", 0, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "sqlshape.yaml", `
max_depth: 8
workers: 2
output: json
group:
  min_count: 2
  sort: first
  members: 5
watch:
  debounce: 1s
postgres:
  dsn: postgres://localhost/app
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlshape.yaml", GetConfigFileUsed())
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, GroupConfig{MinCount: 2, Sort: "first", Members: 5}, cfg.Group)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "postgres://localhost/app", cfg.Postgres.DSN)
	assert.Equal(t, DefaultPGLimit, cfg.Postgres.Limit)
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeConfig(t, dir, "custom.yml", "max_depth: 8\nworkers: 2\noutput: yaml\n")

	t.Setenv("SQLSHAPE_WORKERS", "4")
	t.Setenv("SQLSHAPE_GROUP__MIN_COUNT", "3")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--max-depth", "12", "--state", "other.db", "--sort", "first", "--watch", "--debounce", "2s"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, 12, cfg.MaxDepth, "flag beats file")
	assert.Equal(t, 4, cfg.Workers, "env beats file")
	assert.Equal(t, "yaml", cfg.OutputFormat, "file beats default")
	assert.Equal(t, "other.db", cfg.StatePath)
	assert.Equal(t, 3, cfg.Group.MinCount)
	assert.Equal(t, "first", cfg.Group.Sort)
	assert.True(t, cfg.Group.Watch)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoadConfig_UnsetFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := testFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"bad yaml", "max_depth: [", "error reading config file"},
		{"zero depth", "max_depth: 0", "max_depth must be at least 1"},
		{"bad output", "output: html", "unknown output format"},
		{"bad sort", "group:\n  sort: size", "group.sort"},
		{"bad duration", "watch:\n  debounce: soon", "unable to decode config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := t.TempDir()
			path := writeConfig(t, dir, "sqlshape.yaml", tt.content)

			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, errSubstr: "workers"},
		{name: "negative members", mutate: func(c *Config) { c.Group.Members = -1 }, errSubstr: "group.members"},
		{name: "negative debounce", mutate: func(c *Config) { c.Watch.Debounce = -time.Second }, errSubstr: "watch.debounce"},
		{name: "zero pg limit", mutate: func(c *Config) { c.Postgres.Limit = 0 }, errSubstr: "postgres.limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := GetLogger(context.Background())
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestGetConfig(t *testing.T) {
	assert.Equal(t, Default(), GetConfig(context.Background()))

	cfg := Default()
	cfg.MaxDepth = 4
	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, GetConfig(ctx))
}
