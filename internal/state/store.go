// Package state persists grouping runs and statement families in SQLite.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/sqlshape/internal/group"
	"github.com/leapstack-labs/sqlshape/pkg/shape"
)

var (
	// ErrNotFound is returned when a requested family does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when a family key matches several families.
	ErrAmbiguous = errors.New("ambiguous family key")
)

// Run is one persisted grouping run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	Statements int       `json:"statements" yaml:"statements"`
	Families   int       `json:"families" yaml:"families"`
	Failures   int       `json:"failures" yaml:"failures"`
}

// FamilyRow is a family accumulated across every saved run.
type FamilyRow struct {
	Hash      string          `json:"hash" yaml:"hash"`
	Digest    string          `json:"digest" yaml:"digest"`
	Signature shape.Signature `json:"signature" yaml:"signature"`
	FirstSeen time.Time       `json:"first_seen" yaml:"first_seen"`
	LastSeen  time.Time       `json:"last_seen" yaml:"last_seen"`
	Total     int             `json:"total" yaml:"total"`
}

// Member is one saved statement of a family.
type Member struct {
	RunID string `json:"run_id" yaml:"run_id"`
	Line  int    `json:"line" yaml:"line"`
	SQL   string `json:"sql" yaml:"sql"`
}

// Store is the persistence interface used by the CLI.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	SaveReport(ctx context.Context, source string, report *group.Report) (*Run, error)
	ListRuns(ctx context.Context) ([]*Run, error)

	ListFamilies(ctx context.Context, limit int) ([]*FamilyRow, error)
	GetFamily(ctx context.Context, key string) (*FamilyRow, error)
	Members(ctx context.Context, hash string, limit int) ([]*Member, error)
}

var _ Store = (*SQLiteStore)(nil)
