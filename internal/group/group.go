// Package group buckets SQL statements into families that share one
// structural signature.
package group

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlshape/pkg/shape"
	"golang.org/x/sync/errgroup"
)

// Statement is one input statement and the line it was read from.
type Statement struct {
	Line int    `json:"line" yaml:"line"`
	SQL  string `json:"sql" yaml:"sql"`
}

// Family is a set of statements with equal signatures.
type Family struct {
	Signature shape.Signature `json:"signature" yaml:"signature"`
	Digest    string          `json:"digest" yaml:"digest"`
	Members   []Statement     `json:"members" yaml:"members"`

	// FirstSeen is the input index of the family's first member.
	FirstSeen int `json:"-" yaml:"-"`
}

// Count returns the number of members.
func (f *Family) Count() int {
	return len(f.Members)
}

// Failure is a statement that could not be fingerprinted.
type Failure struct {
	Statement Statement
	Err       error
}

// Report is the result of grouping a batch of statements.
type Report struct {
	Total    int
	Families []*Family
	Failures []Failure
}

// SortMode orders the families of a report.
type SortMode int

const (
	// SortCount puts the largest families first.
	SortCount SortMode = iota
	// SortFirstSeen keeps families in the order their first member appeared.
	SortFirstSeen
)

// ParseSortMode parses "count" or "first".
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(s) {
	case "", "count":
		return SortCount, nil
	case "first":
		return SortFirstSeen, nil
	}
	return 0, fmt.Errorf("unknown sort mode %q (expected count or first)", s)
}

func (m SortMode) String() string {
	if m == SortFirstSeen {
		return "first"
	}
	return "count"
}

// Sort orders the families in place. Count ties are broken by digest.
func (r *Report) Sort(mode SortMode) {
	switch mode {
	case SortFirstSeen:
		slices.SortStableFunc(r.Families, func(a, b *Family) int {
			return cmp.Compare(a.FirstSeen, b.FirstSeen)
		})
	default:
		slices.SortStableFunc(r.Families, func(a, b *Family) int {
			if c := cmp.Compare(b.Count(), a.Count()); c != 0 {
				return c
			}
			return strings.Compare(a.Digest, b.Digest)
		})
	}
}

// Filter drops families with fewer than minCount members.
func (r *Report) Filter(minCount int) {
	if minCount <= 1 {
		return
	}
	r.Families = slices.DeleteFunc(r.Families, func(f *Family) bool {
		return f.Count() < minCount
	})
}

// Config holds grouper configuration.
type Config struct {
	// Workers bounds how many statements are fingerprinted at once.
	// Zero uses GOMAXPROCS.
	Workers int
	// MaxDepth bounds subquery nesting. Zero uses shape.DefaultMaxDepth.
	MaxDepth int
}

// Grouper fingerprints statements concurrently and buckets them by
// signature.
type Grouper struct {
	opts    shape.Options
	workers int
	logger  *slog.Logger
}

// New creates a Grouper. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) *Grouper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Grouper{
		opts:    shape.Options{MaxDepth: cfg.MaxDepth},
		workers: workers,
		logger:  logger,
	}
}

type outcome struct {
	sig shape.Signature
	err error
}

// Group fingerprints stmts and returns the families in first-seen order.
// Statements that fail to fingerprint are collected in Report.Failures.
func (g *Grouper) Group(ctx context.Context, stmts []Statement) (*Report, error) {
	g.logger.Debug("grouping statements", slog.Int("statements", len(stmts)), slog.Int("workers", g.workers))

	outcomes := make([]outcome, len(stmts))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range stmts {
		if egctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			sig, err := g.opts.Fingerprint(stmts[i].SQL)
			outcomes[i] = outcome{sig: sig, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Total: len(stmts)}
	byKey := make(map[string]*Family)
	for i, o := range outcomes {
		stmt := stmts[i]
		if o.err != nil {
			g.logger.Debug("statement not fingerprinted", slog.Int("line", stmt.Line), slog.String("error", o.err.Error()))
			report.Failures = append(report.Failures, Failure{Statement: stmt, Err: o.err})
			continue
		}
		key := o.sig.Key()
		fam, ok := byKey[key]
		if !ok {
			fam = &Family{Signature: o.sig, Digest: o.sig.Digest(), FirstSeen: i}
			byKey[key] = fam
			report.Families = append(report.Families, fam)
		}
		fam.Members = append(fam.Members, stmt)
	}

	g.logger.Debug("grouping complete",
		slog.Int("families", len(report.Families)),
		slog.Int("failures", len(report.Failures)))
	return report, nil
}
