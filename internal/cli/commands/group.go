package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqlshape/internal/cli/config"
	"github.com/leapstack-labs/sqlshape/internal/cli/output"
	"github.com/leapstack-labs/sqlshape/internal/group"
	"github.com/leapstack-labs/sqlshape/internal/source"
	"github.com/leapstack-labs/sqlshape/internal/state"
	"github.com/leapstack-labs/sqlshape/pkg/shape"
	"github.com/spf13/cobra"
)

// GroupResult is the group command's structured output.
type GroupResult struct {
	Source   string          `json:"source" yaml:"source"`
	RunID    string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Total    int             `json:"total" yaml:"total"`
	Families []FamilyResult  `json:"families" yaml:"families"`
	Failures []FailureResult `json:"failures" yaml:"failures"`
}

// FamilyResult is one family of a grouping report.
type FamilyResult struct {
	Digest    string            `json:"digest" yaml:"digest"`
	Count     int               `json:"count" yaml:"count"`
	Signature shape.Signature   `json:"signature" yaml:"signature"`
	Members   []group.Statement `json:"members" yaml:"members"`
}

// FailureResult is a statement that could not be fingerprinted.
type FailureResult struct {
	Line  int    `json:"line" yaml:"line"`
	SQL   string `json:"sql" yaml:"sql"`
	Error string `json:"error" yaml:"error"`
}

// NewGroupCommand creates the group command.
func NewGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group [files...]",
		Short: "Group statements into families by signature",
		Long: `Fingerprint every statement and group those with equal signatures into
families, largest first.

Statements are read one per line from the given files, standard input, or
the pg_stat_statements view of a PostgreSQL database (--dsn).

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # Group a query log
  sqlshape group queries.sql

  # Only families with at least 10 members, in first-seen order
  sqlshape group queries.sql --min-count 10 --sort first

  # Group the most called statements of a live database and save the run
  sqlshape group --dsn postgres://localhost/app --save

  # Regroup whenever the log changes
  sqlshape group queries.sql --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroup(cmd, args)
		},
	}

	cmd.Flags().String("dsn", "", "Read statements from pg_stat_statements at this PostgreSQL DSN")
	cmd.Flags().Int("limit", config.DefaultPGLimit, "Number of pg_stat_statements rows to read")
	cmd.Flags().Int("min-count", 1, "Only show families with at least this many members")
	cmd.Flags().String("sort", config.DefaultSort, "Family order: count or first")
	cmd.Flags().Int("members", config.DefaultMembers, "Member statements shown per family")
	cmd.Flags().Bool("save", false, "Save the run to the state database")
	cmd.Flags().Bool("watch", false, "Regroup when the input files change")
	cmd.Flags().Duration("debounce", config.DefaultDebounce, "Quiet period before regrouping in watch mode")

	_ = cmd.RegisterFlagCompletionFunc("sort", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"count", "first"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runGroup(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	if !cfg.Group.Watch {
		return groupOnce(cmd.Context(), cmdCtx, cmd.InOrStdin(), args)
	}

	if cfg.Postgres.DSN != "" {
		return errors.New("--watch cannot be combined with --dsn")
	}
	if len(args) == 0 {
		return errors.New("--watch requires at least one file")
	}
	cmdCtx.Logger.Info("watching for changes", slog.Any("files", args), slog.Duration("debounce", cfg.Watch.Debounce))
	return source.Watch(cmd.Context(), args, cfg.Watch.Debounce, cmdCtx.Logger, func(ctx context.Context) error {
		return groupOnce(ctx, cmdCtx, cmd.InOrStdin(), args)
	})
}

func groupOnce(ctx context.Context, cmdCtx *CommandContext, stdin io.Reader, args []string) error {
	cfg := cmdCtx.Cfg

	stmts, src, err := loadStatements(ctx, cmdCtx, stdin, args)
	if err != nil {
		return err
	}

	g := group.New(group.Config{Workers: cfg.Workers, MaxDepth: cfg.MaxDepth}, cmdCtx.Logger)
	report, err := g.Group(ctx, stmts)
	if err != nil {
		return err
	}

	mode, err := group.ParseSortMode(cfg.Group.Sort)
	if err != nil {
		return err
	}
	report.Sort(mode)

	var run *state.Run
	if cfg.Group.Save {
		store, cleanup, err := cmdCtx.OpenStore(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		run, err = store.SaveReport(ctx, src, report)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		cmdCtx.Logger.Info("run saved", slog.String("id", run.ID), slog.String("state", cfg.StatePath))
	}

	report.Filter(cfg.Group.MinCount)
	return renderReport(cmdCtx.Renderer, src, report, run, cfg.Group.Members)
}

// loadStatements reads statements from the configured source and returns
// them with a label for that source.
func loadStatements(ctx context.Context, cmdCtx *CommandContext, stdin io.Reader, args []string) ([]group.Statement, string, error) {
	cfg := cmdCtx.Cfg
	if cfg.Postgres.DSN == "" {
		stmts, err := source.ReadFiles(stdin, args...)
		if err != nil {
			return nil, "", err
		}
		label := "stdin"
		if len(args) > 0 {
			label = strings.Join(args, ",")
		}
		return stmts, label, nil
	}

	if len(args) > 0 {
		return nil, "", errors.New("files cannot be combined with --dsn")
	}
	pg, err := source.OpenPostgres(ctx, cfg.Postgres.DSN, cmdCtx.Logger)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = pg.Close() }()
	pg.Limit = cfg.Postgres.Limit

	stmts, err := pg.Statements(ctx)
	if err != nil {
		return nil, "", err
	}
	return stmts, "pg_stat_statements", nil
}

func groupResult(src string, report *group.Report, run *state.Run, members int) GroupResult {
	res := GroupResult{
		Source:   src,
		Total:    report.Total,
		Families: make([]FamilyResult, 0, len(report.Families)),
		Failures: make([]FailureResult, 0, len(report.Failures)),
	}
	if run != nil {
		res.RunID = run.ID
	}
	for _, fam := range report.Families {
		shown := fam.Members
		if len(shown) > members {
			shown = shown[:members]
		}
		res.Families = append(res.Families, FamilyResult{
			Digest:    fam.Digest,
			Count:     fam.Count(),
			Signature: fam.Signature,
			Members:   shown,
		})
	}
	for _, f := range report.Failures {
		res.Failures = append(res.Failures, FailureResult{
			Line:  f.Statement.Line,
			SQL:   f.Statement.SQL,
			Error: f.Err.Error(),
		})
	}
	return res
}

func renderReport(r *output.Renderer, src string, report *group.Report, run *state.Run, members int) error {
	if r.IsStructured() {
		return r.Data(groupResult(src, report, run, members))
	}

	r.Header(1, fmt.Sprintf("Families (%d families, %d statements from %s)", len(report.Families), report.Total, src))

	for i, fam := range report.Families {
		title := fmt.Sprintf("%d. %s (%d)", i+1, fam.Digest, fam.Count())
		if r.EffectiveMode() == output.ModeText {
			r.Println(r.Styles().Digest.Render(title))
		} else {
			r.Println(output.FormatHeader(2, title))
		}
		signatureFields(r, fam.Signature)
		memberLines(r, fam.Members, members)
		r.Println()
	}

	if len(report.Failures) > 0 {
		r.Header(2, fmt.Sprintf("Failures (%d)", len(report.Failures)))
		for _, f := range report.Failures {
			r.Field(fmt.Sprintf("Line %d", f.Statement.Line), f.Err.Error())
		}
		r.Println()
	}

	if run != nil {
		r.Field("Saved run", run.ID)
	}
	return nil
}
