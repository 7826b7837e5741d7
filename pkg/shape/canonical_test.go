package shape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"numbers and strings", "x = 1 AND y = 'a'", "x = 9 AND y = 'X'"},
		{"double quoted string", `name = "bob"`, `name = "X"`},
		{"booleans and null", "flag = TRUE or v is null", "flag = B OR v IS NULL"},
		{"negative number", "x = -1.25", "x = -9"},
		{"whitespace collapsed", "  a\t=\n 1  ", "a = 9"},
		{"comments dropped", "a = 1 /* note */ AND b = 2 -- tail", "a = 9 AND b = 9"},
		{"numeric in list", "id  IN(1, 2, 3)", "id IN (9)"},
		{"string in list", "c IN ('A','B','C')", "c IN ('X')"},
		{"mixed list", "c IN (1, 'b')", "c IN ('X')"},
		{"not in", "c NOT IN (1, 2)", "c NOT IN (9)"},
		{"subquery in list", "id IN (SELECT id FROM t WHERE a = 1)", "id IN (sub:t|a = 9)"},
		{"subquery without where", "id IN (SELECT id FROM t)", "id IN (sub:t|)"},
		{"subquery with joins", "EXISTS (SELECT 1 FROM t JOIN u ON t.id = u.id WHERE t.x = 5)", "EXISTS (sub:t,u|t.x = 9)"},
		{"subquery tables sorted", "x IN (SELECT a FROM z, b)", "x IN (sub:b,z|)"},
		{"nested parentheses", "(a = 1 OR (b = 'x'))", "(a = 9 OR (b = 'X'))"},
		{"dotted number", "ip = 192.168.1.1", "ip = 9"},
		{"glued numbers", "v = 1e5.3", "v = 9"},
		{"trailing backslash in string", `p = 'C:\' AND id = 1`, "p = 'X' AND id = 9"},
		{"subquery with nested parentheses", "id IN (SELECT id FROM t WHERE (a = 1 OR b = 2) AND c IN (3,4))", "id IN (sub:t|(a = 9 OR b = 9) AND c IN (9))"},
		{"inner padding removed", "( a = 1 )", "(a = 9)"},
		{"function call", "lower(name) = 'a'", "lower(name) = 'X'"},
		{"between", "d BETWEEN '2023-01-01' AND '2023-12-31'", "d BETWEEN 'X' AND 'X'"},
		{"parameters untouched", "a = $1 AND b = :b", "a = $1 AND b = :b"},
		{"unbalanced tolerated", "(a = 1", "(a = 9"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"x = 1 AND y = 'a'",
		"id IN (1, 2, 3) AND c IN ('a')",
		"id IN (SELECT id FROM t WHERE a = 1)",
		"id IN (SELECT id FROM t WHERE b IN (SELECT b FROM u JOIN v ON u.k = v.k WHERE c > 1))",
		"EXISTS (SELECT 1 FROM t)",
		"( a = 1 OR ( b = 2 ) )",
		"f( a, 'x' ) > 3 AND NOT flag",
		"a = 'unterminated",
		"(a = 1",
		"x IN (sub:t|a = 9)",
		"x = (SELECT max(v) FROM w)",
		"ip = 192.168.1.1",
		"v = 1.5.3",
		"v = 1e5.3",
		"p = 'C:\\' AND id = 1",
		"id IN (SELECT id FROM t WHERE (a = 1 OR b = 2) AND c IN (3,4))",
	}
	for _, input := range inputs {
		once, err := Canonicalize(input)
		require.NoError(t, err)
		twice, err := Canonicalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input: %s", input)
	}
}

func TestCanonicalize_NestingLimit(t *testing.T) {
	deep := func(n int) string {
		return strings.Repeat("(", n) + "1" + strings.Repeat(")", n)
	}

	got, err := Canonicalize(deep(maxNesting))
	require.NoError(t, err)
	assert.Equal(t, deep(maxNesting)[:maxNesting]+"9", got[:maxNesting+1])

	_, err = Canonicalize(deep(maxNesting + 1))
	assert.ErrorIs(t, err, ErrRecursionLimit)
}

func TestCanonicalize_SubqueryDepth(t *testing.T) {
	cond := nestedCondition(3)

	_, err := Options{MaxDepth: 3}.Canonicalize(cond)
	require.NoError(t, err)

	_, err = Options{MaxDepth: 2}.Canonicalize(cond)
	assert.ErrorIs(t, err, ErrRecursionLimit)
}

// nestedCondition returns a condition with n subqueries nested inside one
// another.
func nestedCondition(n int) string {
	cond := "y = 1"
	for range n {
		cond = "x IN (SELECT a FROM t WHERE " + cond + ")"
	}
	return cond
}
