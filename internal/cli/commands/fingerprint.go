package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sqlshape/internal/cli/output"
	"github.com/leapstack-labs/sqlshape/internal/source"
	"github.com/leapstack-labs/sqlshape/pkg/shape"
	"github.com/spf13/cobra"
)

// FingerprintRecord is the fingerprint of one input line.
type FingerprintRecord struct {
	Line      int              `json:"line" yaml:"line"`
	Digest    string           `json:"digest,omitempty" yaml:"digest,omitempty"`
	Signature *shape.Signature `json:"signature,omitempty" yaml:"signature,omitempty"`
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint [files...]",
		Short: "Print the structural signature of each statement",
		Long: `Read one SELECT statement per line and print its structural signature.

Statements that differ only in literal values, whitespace or the order of
their FROM and JOIN tables share a signature and a digest.

Reads standard input when no files are given; "-" also means standard input.
Blank lines and lines starting with -- or # are skipped.`,
		Example: `  # Fingerprint a query log
  sqlshape fingerprint queries.sql

  # Fingerprint from a pipe as JSON
  cat queries.sql | sqlshape fingerprint -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(cmd, args)
		},
	}
	return cmd
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	stmts, err := source.ReadFiles(cmd.InOrStdin(), args...)
	if err != nil {
		return err
	}

	opts := cmdCtx.ShapeOptions()
	records := make([]FingerprintRecord, 0, len(stmts))
	failed := 0
	for _, stmt := range stmts {
		rec := FingerprintRecord{Line: stmt.Line}
		sig, err := opts.Fingerprint(stmt.SQL)
		if err != nil {
			cmdCtx.Logger.Debug("fingerprint failed", slog.Int("line", stmt.Line), slog.String("error", err.Error()))
			rec.Error = err.Error()
			failed++
		} else {
			rec.Digest = sig.Digest()
			rec.Signature = &sig
		}
		records = append(records, rec)
	}

	if r.IsStructured() {
		if err := r.Data(records); err != nil {
			return err
		}
	} else {
		fingerprintTable(r, records)
	}

	if failed > 0 {
		r.Warning(fmt.Sprintf("%d of %d statements could not be fingerprinted", failed, len(records)))
	}
	return nil
}

func fingerprintTable(r *output.Renderer, records []FingerprintRecord) {
	header := append([]string{"Line", "Digest"}, signatureHeader...)
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := []string{itoa(rec.Line)}
		if rec.Signature == nil {
			row = append(row, "error", rec.Error, "", "", "", "")
		} else {
			row = append(row, rec.Digest)
			row = append(row, signatureCells(*rec.Signature)...)
		}
		rows = append(rows, row)
	}
	r.Table(header, rows)
}
