package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sqlshape/internal/cli/config"
	"github.com/leapstack-labs/sqlshape/internal/cli/output"
	"github.com/leapstack-labs/sqlshape/internal/state"
	"github.com/leapstack-labs/sqlshape/pkg/shape"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the config and logger the
// root command stored in cmd's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode).WithNoColor(cfg.NoColor)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// ShapeOptions returns the fingerprinting options from the config.
func (c *CommandContext) ShapeOptions() shape.Options {
	return shape.Options{MaxDepth: c.Cfg.MaxDepth}
}

// OpenStore opens and migrates the state database.
// Returns the store and a cleanup function that must be called (typically via defer).
func (c *CommandContext) OpenStore(ctx context.Context) (*state.SQLiteStore, func(), error) {
	store, err := state.OpenStore(ctx, c.Cfg.StatePath, c.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state database: %w", err)
	}
	cleanup := func() {
		_ = store.Close()
	}
	return store, cleanup, nil
}
