package shape

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/sqlshape/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want Signature
	}{
		{
			name: "single table",
			sql:  "SELECT * FROM table1 WHERE id = 1",
			want: Build([]string{"table1"}, nil, "id = 9", nil, nil),
		},
		{
			name: "join",
			sql:  "SELECT * FROM table1 JOIN table2 ON table1.id = table2.id WHERE table1.name = 'John' AND table2.age > 30",
			want: Build([]string{"table1"}, []string{"table2"}, "table1.name = 'X' AND table2.age > 9", nil, nil),
		},
		{
			name: "in lists",
			sql:  "SELECT * FROM table4 WHERE category IN ('A','B','C') AND status IN (0,1,2)",
			want: Build([]string{"table4"}, nil, "category IN ('X') AND status IN (9)", nil, nil),
		},
		{
			name: "subquery in where",
			sql:  "SELECT * FROM table6 WHERE id IN (SELECT id FROM table7 WHERE value > 100)",
			want: Build([]string{"table6"}, nil, "id IN (sub:table7|value > 9)", nil, nil),
		},
		{
			name: "subquery in from",
			sql:  "SELECT * FROM (SELECT id, name FROM table8 WHERE status = 'active') subquery WHERE subquery.id > 10",
			want: Build([]string{"sub:table8"}, nil, "subquery.id > 9", nil, nil),
		},
		{
			name: "group and order",
			sql:  "SELECT * FROM table4 WHERE date BETWEEN '2023-01-01' AND '2023-12-31' AND category IN ('A','B','C') GROUP BY category, date ORDER BY date DESC",
			want: Build([]string{"table4"}, nil, "date BETWEEN 'X' AND 'X' AND category IN ('X')",
				[]string{"category", "date"}, []string{"date", "DESC"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fingerprint(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want *ParsedInfo
	}{
		{
			name: "no clauses",
			sql:  "SELECT 1",
			want: &ParsedInfo{FromTables: []string{}, JoinTables: []string{}, GroupBy: []string{}, OrderBy: []string{}},
		},
		{
			name: "lower case keywords",
			sql:  "select * from T where A = 1 order by A desc",
			want: &ParsedInfo{
				FromTables:     []string{"T"},
				JoinTables:     []string{},
				WhereCondition: "A = 9",
				GroupBy:        []string{},
				OrderBy:        []string{"A", "DESC"},
			},
		},
		{
			name: "comma list keeps source order",
			sql:  "SELECT * FROM users u, orders AS o WHERE u.id = o.user_id",
			want: &ParsedInfo{
				FromTables:     []string{"users", "orders"},
				JoinTables:     []string{},
				WhereCondition: "u.id = o.user_id",
				GroupBy:        []string{},
				OrderBy:        []string{},
			},
		},
		{
			name: "joins with modifiers",
			sql:  "SELECT * FROM a LEFT OUTER JOIN b USING (id) INNER JOIN (SELECT k FROM c) cc ON cc.k = a.k CROSS JOIN d",
			want: &ParsedInfo{
				FromTables: []string{"a"},
				JoinTables: []string{"b", "sub:c", "d"},
				GroupBy:    []string{},
				OrderBy:    []string{},
			},
		},
		{
			name: "order by directions and nulls",
			sql:  "SELECT * FROM t ORDER BY a ASC, b DESC NULLS LAST, c",
			want: &ParsedInfo{
				FromTables: []string{"t"},
				JoinTables: []string{},
				GroupBy:    []string{},
				OrderBy:    []string{"a", "ASC", "b", "DESC", "NULLS LAST", "c"},
			},
		},
		{
			name: "group by expression",
			sql:  "SELECT count(*) FROM t GROUP BY date_trunc('day', ts), b HAVING count(*) > 1",
			want: &ParsedInfo{
				FromTables: []string{"t"},
				JoinTables: []string{},
				GroupBy:    []string{"date_trunc('day', ts)", "b"},
				OrderBy:    []string{},
			},
		},
		{
			name: "cte passes through",
			sql:  "WITH x AS (SELECT 1) SELECT * FROM x WHERE a = 1",
			want: &ParsedInfo{
				FromTables:     []string{"x"},
				JoinTables:     []string{},
				WhereCondition: "a = 9",
				GroupBy:        []string{},
				OrderBy:        []string{},
			},
		},
		{
			name: "window function passes through",
			sql:  "SELECT row_number() OVER (PARTITION BY a ORDER BY b) FROM t",
			want: &ParsedInfo{FromTables: []string{"t"}, JoinTables: []string{}, GroupBy: []string{}, OrderBy: []string{}},
		},
		{
			name: "trailing statement ignored",
			sql:  "SELECT * FROM t WHERE a = 1; DROP TABLE t",
			want: &ParsedInfo{
				FromTables:     []string{"t"},
				JoinTables:     []string{},
				WhereCondition: "a = 9",
				GroupBy:        []string{},
				OrderBy:        []string{},
			},
		},
		{
			name: "parenthesized statement",
			sql:  "((SELECT * FROM t WHERE a = 'x'))",
			want: &ParsedInfo{
				FromTables:     []string{"t"},
				JoinTables:     []string{},
				WhereCondition: "a = 'X'",
				GroupBy:        []string{},
				OrderBy:        []string{},
			},
		},
		{
			name: "comma entry after join condition",
			sql:  "SELECT * FROM a JOIN b ON a.id = b.id, c WHERE x = 1",
			want: &ParsedInfo{
				FromTables:     []string{"a", "c"},
				JoinTables:     []string{"b"},
				WhereCondition: "x = 9",
				GroupBy:        []string{},
				OrderBy:        []string{},
			},
		},
		{
			name: "comma entries after cross join",
			sql:  "SELECT * FROM a CROSS JOIN b, c AS cc, (SELECT 1 FROM d) dd",
			want: &ParsedInfo{
				FromTables: []string{"a", "c", "sub:d"},
				JoinTables: []string{"b"},
				GroupBy:    []string{},
				OrderBy:    []string{},
			},
		},
		{
			name: "string ending in backslash",
			sql:  `SELECT * FROM t WHERE path = 'C:\' AND id = 1`,
			want: &ParsedInfo{
				FromTables:     []string{"t"},
				JoinTables:     []string{},
				WhereCondition: "path = 'X' AND id = 9",
				GroupBy:        []string{},
				OrderBy:        []string{},
			},
		},
		{
			name: "dotted number",
			sql:  "SELECT * FROM hosts WHERE ip = 10.0.0.1 ORDER BY ip",
			want: &ParsedInfo{
				FromTables:     []string{"hosts"},
				JoinTables:     []string{},
				WhereCondition: "ip = 9",
				GroupBy:        []string{},
				OrderBy:        []string{"ip"},
			},
		},
		{
			name: "subquery with nested parentheses",
			sql:  "SELECT * FROM s WHERE id IN (SELECT id FROM t WHERE (a = 1 OR b = 2) AND c IN (3,4))",
			want: &ParsedInfo{
				FromTables:     []string{"s"},
				JoinTables:     []string{},
				WhereCondition: "id IN (sub:t|(a = 9 OR b = 9) AND c IN (9))",
				GroupBy:        []string{},
				OrderBy:        []string{},
			},
		},
		{
			name: "is distinct from",
			sql:  "SELECT * FROM t WHERE a IS DISTINCT FROM 5",
			want: &ParsedInfo{
				FromTables:     []string{"t"},
				JoinTables:     []string{},
				WhereCondition: "a IS DISTINCT FROM 9",
				GroupBy:        []string{},
				OrderBy:        []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFingerprint_LiteralInvariance(t *testing.T) {
	a, err := Fingerprint("SELECT * FROM t WHERE a = 1 AND b = 'x' AND c = true AND d IN (1, 2)")
	require.NoError(t, err)
	b, err := Fingerprint("SELECT * FROM t WHERE a = 42.5 AND b = 'something else' AND c = false AND d IN (7)")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.Digest(), b.Digest())
}

func TestFingerprint_FromOrderInvariance(t *testing.T) {
	a, err := Fingerprint("SELECT * FROM b, a, c JOIN y ON 1 = 1 JOIN x ON 1 = 1")
	require.NoError(t, err)
	b, err := Fingerprint("SELECT * FROM c, b, a JOIN x ON 1 = 1 JOIN y ON 1 = 1")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, a.FromTables)
	assert.Equal(t, []string{"x", "y"}, a.JoinTables)
	assert.True(t, a.Equal(b))
}

func TestFingerprint_Boundaries(t *testing.T) {
	sig, err := Fingerprint("SELECT a FROM t")
	require.NoError(t, err)
	assert.Empty(t, sig.WhereCondition)
	assert.NotNil(t, sig.GroupBy)
	assert.Empty(t, sig.GroupBy)
	assert.NotNil(t, sig.OrderBy)
	assert.Empty(t, sig.OrderBy)
}

func TestFingerprint_RecursionLimit(t *testing.T) {
	_, err := Fingerprint("SELECT * FROM t WHERE " + nestedCondition(DefaultMaxDepth))
	require.NoError(t, err)

	_, err = Fingerprint("SELECT * FROM t WHERE " + nestedCondition(DefaultMaxDepth+1))
	require.ErrorIs(t, err, ErrRecursionLimit)
	assert.NotErrorIs(t, err, ErrMalformedInput)

	_, err = Options{MaxDepth: 1}.Fingerprint("SELECT * FROM t WHERE " + nestedCondition(2))
	assert.ErrorIs(t, err, ErrRecursionLimit)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		pos  token.Position
		msg  string
	}{
		{"empty", "", token.Position{Line: 1, Column: 1}, "empty statement"},
		{"blank", "  \n -- only a comment", token.Position{Line: 1, Column: 1}, "empty statement"},
		{"not a select", "UPDATE t SET a = 1", token.Position{Line: 1, Column: 1, Offset: 0}, `expected SELECT, found "UPDATE"`},
		{"unclosed paren", "SELECT * FROM t WHERE (a = 1", token.Position{Line: 1, Column: 23, Offset: 22}, "unclosed '('"},
		{"stray paren", "SELECT * FROM t WHERE a = 1)", token.Position{Line: 1, Column: 28, Offset: 27}, "unbalanced ')'"},
		{"unterminated string", "SELECT * FROM t\nWHERE a = 'oops", token.Position{Line: 2, Column: 11, Offset: 26}, "unterminated string literal"},
		{"unterminated after backslash", `SELECT * FROM t WHERE a = 'x\`, token.Position{Line: 1, Column: 27, Offset: 26}, "unterminated string literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.sql)
			require.ErrorIs(t, err, ErrMalformedInput)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.pos, perr.Pos)
			assert.Equal(t, tt.msg, perr.Message)
		})
	}
}

func TestParseError_Error(t *testing.T) {
	err := newParseError(token.Position{Line: 3, Column: 7}, "unclosed '('")
	assert.Equal(t, "parse error at line 3, column 7: unclosed '('", err.Error())

	noPos := &ParseError{Message: "empty statement"}
	assert.Equal(t, "parse error: empty statement", noPos.Error())
}
