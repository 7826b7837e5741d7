package source

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlshape/internal/group"
	"github.com/leapstack-labs/sqlshape/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	input := strings.Join([]string{
		"SELECT * FROM a WHERE id = 1;",
		"",
		"-- a comment",
		"# another comment",
		"   SELECT * FROM b   ",
		";",
		"SELECT * FROM c;;",
	}, "\n")

	stmts, err := ReadLines(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []group.Statement{
		{Line: 1, SQL: "SELECT * FROM a WHERE id = 1"},
		{Line: 5, SQL: "SELECT * FROM b"},
		{Line: 7, SQL: "SELECT * FROM c"},
	}, stmts)
}

func TestReadLines_NFC(t *testing.T) {
	stmts, err := ReadLines(strings.NewReader("SELECT * FROM cafe\u0301"))
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "SELECT * FROM caf\u00e9", stmts[0].SQL)
}

func TestReadLines_TooLong(t *testing.T) {
	long := "SELECT '" + strings.Repeat("x", maxLineSize) + "'"
	_, err := ReadLines(strings.NewReader("SELECT 1\n" + long))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	first := testutil.WriteStatements(t, dir, "first.sql", "SELECT 1", "SELECT 2")
	second := testutil.WriteStatements(t, dir, "second.sql", "-- header", "SELECT 3")

	stmts, err := ReadFiles(strings.NewReader("SELECT 4"), first, Stdin, second)
	require.NoError(t, err)
	assert.Equal(t, []group.Statement{
		{Line: 1, SQL: "SELECT 1"},
		{Line: 2, SQL: "SELECT 2"},
		{Line: 1, SQL: "SELECT 4"},
		{Line: 2, SQL: "SELECT 3"},
	}, stmts)
}

func TestReadFiles_DefaultsToStdin(t *testing.T) {
	stmts, err := ReadFiles(strings.NewReader("SELECT 1\nSELECT 2\n"))
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
}

func TestReadFiles_Missing(t *testing.T) {
	_, err := ReadFiles(nil, "/does/not/exist.sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}
