package config

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/sqlshape/internal/group"
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (expected one of %v)", c.OutputFormat, OutputFormats)
	}
	if _, err := group.ParseSortMode(c.Group.Sort); err != nil {
		return fmt.Errorf("group.sort: %w", err)
	}
	if c.Group.MinCount < 0 || c.Group.Members < 0 {
		return fmt.Errorf("group.min_count and group.members must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if c.Postgres.Limit < 1 {
		return fmt.Errorf("postgres.limit must be at least 1, got %d", c.Postgres.Limit)
	}
	return nil
}
