package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqlshape/internal/group"
)

const upsertFamilySQL = `
INSERT INTO families (hash, digest, from_tables, join_tables, where_condition, group_by, order_by, first_seen, last_seen, total)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
    last_seen = excluded.last_seen,
    total = families.total + excluded.total`

// SaveReport records a grouping run, its families and their members in one
// transaction. Families are keyed by their full signature hash; families
// seen in earlier runs have their totals increased.
func (s *SQLiteStore) SaveReport(ctx context.Context, source string, report *group.Report) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:         generateID(),
		Source:     source,
		StartedAt:  time.Now().UTC(),
		Statements: report.Total,
		Families:   len(report.Families),
		Failures:   len(report.Failures),
	}
	s.logger.Debug("saving run", slog.String("id", run.ID), slog.String("source", source), slog.Int("families", run.Families))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, started_at, statements, families, failures) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, formatTime(run.StartedAt), run.Statements, run.Families, run.Failures,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	now := formatTime(run.StartedAt)
	for _, fam := range report.Families {
		lists, err := encodeLists(fam.Signature.FromTables, fam.Signature.JoinTables, fam.Signature.GroupBy, fam.Signature.OrderBy)
		if err != nil {
			return nil, err
		}
		hash := fam.Signature.Hash()
		_, err = tx.ExecContext(ctx, upsertFamilySQL,
			hash, fam.Digest, lists[0], lists[1], fam.Signature.WhereCondition, lists[2], lists[3],
			now, now, fam.Count(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to save family %s: %w", fam.Digest, err)
		}
		for _, m := range fam.Members {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO members (run_id, hash, line, statement) VALUES (?, ?, ?, ?)`,
				run.ID, hash, m.Line, m.SQL,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to save member of %s: %w", fam.Digest, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// ListRuns returns every saved run, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, started_at, statements, families, failures FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var startedAt string
		if err := rows.Scan(&run.ID, &run.Source, &startedAt, &run.Statements, &run.Families, &run.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// encodeLists stores each list as a JSON array.
func encodeLists(lists ...[]string) ([]string, error) {
	cols := make([]string, len(lists))
	for i, l := range lists {
		b, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("failed to encode signature: %w", err)
		}
		cols[i] = string(b)
	}
	return cols, nil
}

func decodeList(col string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(col), &items); err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	return items, nil
}
