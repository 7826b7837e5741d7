package state

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/sqlshape/pkg/shape"
)

const familyColumns = `hash, digest, from_tables, join_tables, where_condition, group_by, order_by, first_seen, last_seen, total`

// ListFamilies returns saved families, largest total first. A limit of zero
// or less returns all of them.
func (s *SQLiteStore) ListFamilies(ctx context.Context, limit int) ([]*FamilyRow, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+familyColumns+` FROM families ORDER BY total DESC, hash LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fams []*FamilyRow
	for rows.Next() {
		fam, err := scanFamily(rows)
		if err != nil {
			return nil, err
		}
		fams = append(fams, fam)
	}
	return fams, rows.Err()
}

// GetFamily returns the family whose hash starts with key. key is usually a
// digest or a unique prefix of one; a longer prefix of the hash separates
// families whose digests collide.
func (s *SQLiteStore) GetFamily(ctx context.Context, key string) (*FamilyRow, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+familyColumns+` FROM families WHERE substr(hash, 1, length(?)) = ? ORDER BY hash LIMIT 2`,
		key, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fams []*FamilyRow
	for rows.Next() {
		fam, err := scanFamily(rows)
		if err != nil {
			return nil, err
		}
		fams = append(fams, fam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	switch {
	case len(fams) == 0 || key == "":
		return nil, fmt.Errorf("family %q: %w", key, ErrNotFound)
	case len(fams) > 1:
		return nil, fmt.Errorf("%w: %q matches more than one family", ErrAmbiguous, key)
	}
	return fams[0], nil
}

// Members returns saved members of the family with the given hash, most
// recent run first.
func (s *SQLiteStore) Members(ctx context.Context, hash string, limit int) ([]*Member, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.run_id, m.line, m.statement
		FROM members m
		JOIN runs r ON r.id = m.run_id
		WHERE m.hash = ?
		ORDER BY r.started_at DESC, m.rowid
		LIMIT ?`, hash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.RunID, &m.Line, &m.SQL); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFamily(row scanner) (*FamilyRow, error) {
	var (
		fam                                 FamilyRow
		from, join, where, groupBy, orderBy string
		firstSeen, lastSeen                 string
	)
	err := row.Scan(&fam.Hash, &fam.Digest, &from, &join, &where, &groupBy, &orderBy, &firstSeen, &lastSeen, &fam.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to scan family: %w", err)
	}

	lists := make([][]string, 0, 4)
	for _, col := range []string{from, join, groupBy, orderBy} {
		items, err := decodeList(col)
		if err != nil {
			return nil, err
		}
		lists = append(lists, items)
	}
	fam.Signature = shape.Build(lists[0], lists[1], where, lists[2], lists[3])

	if fam.FirstSeen, err = parseTime(firstSeen); err != nil {
		return nil, err
	}
	if fam.LastSeen, err = parseTime(lastSeen); err != nil {
		return nil, err
	}
	return &fam, nil
}
