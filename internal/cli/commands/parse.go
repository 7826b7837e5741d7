package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/sqlshape/pkg/shape"
	"github.com/spf13/cobra"
)

// ParseResult is the parse command's structured output.
type ParseResult struct {
	shape.ParsedInfo `yaml:",inline"`
	Digest           string `json:"digest" yaml:"digest"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <sql>",
		Short: "Show the extracted clauses of one statement",
		Long: `Parse a single SELECT statement and show its tables, canonical WHERE
condition, GROUP BY columns and ORDER BY items.

Multiple arguments are joined with spaces. Use "-" to read the statement
from standard input.`,
		Example: `  sqlshape parse "SELECT * FROM users WHERE id IN (1, 2, 3)"
  echo "SELECT a FROM t ORDER BY a DESC" | sqlshape parse - -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args)
		},
	}
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	sql := strings.Join(args, " ")
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sql = string(data)
	}

	info, err := cmdCtx.ShapeOptions().Parse(sql)
	if err != nil {
		return err
	}
	sig := info.Signature()

	if r.IsStructured() {
		return r.Data(ParseResult{ParsedInfo: *info, Digest: sig.Digest()})
	}

	r.Header(1, "Statement "+sig.Digest())
	signatureFields(r, sig)
	return nil
}
