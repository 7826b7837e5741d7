package shape

import (
	"strings"

	"github.com/leapstack-labs/sqlshape/pkg/token"
)

// subPrefix marks labels and condition fragments derived from a subquery.
const subPrefix = "sub:"

// TableReference is a resolved FROM or JOIN entry.
type TableReference struct {
	Label             string `json:"label" yaml:"label"`
	IsSubqueryDerived bool   `json:"is_subquery_derived" yaml:"is_subquery_derived"`
}

// Resolve maps one table reference span (a single FROM list entry or the
// table part of a JOIN) to its canonical label. Aliases are dropped; an
// aliased subquery resolves to "sub:" plus the first table of its own FROM,
// or "sub:" plus the alias when that table cannot be named.
func Resolve(span []Node) (TableReference, bool) {
	nodes := skipReferencePrefix(trimTrivia(span))
	// (a JOIN b) and ((t)) resolve to the first table inside.
	for len(nodes) > 0 && nodes[0].Group != nil && !nodes[0].Group.IsSubquery() {
		nodes = skipReferencePrefix(trimTrivia(nodes[0].Group.Nodes))
	}
	if len(nodes) == 0 {
		return TableReference{}, false
	}

	first := nodes[0]
	if first.Group == nil {
		return TableReference{Label: unquoteName(first.Token)}, true
	}

	if inner, ok := firstTable(first.Group); ok {
		return TableReference{Label: subPrefix + inner, IsSubqueryDerived: true}, true
	}
	return TableReference{Label: subPrefix + aliasOf(nodes[1:]), IsSubqueryDerived: true}, true
}

// firstTable returns the plain table name of the first entry after the
// subquery's own top-level FROM.
func firstTable(g *ParenGroup) (string, bool) {
	for _, region := range segment(g.Nodes) {
		if region.Kind != ClauseFrom {
			continue
		}
		entries := splitTopLevel(region.Nodes)
		if len(entries) == 0 {
			return "", false
		}
		entry := skipReferencePrefix(entries[0])
		if len(entry) == 0 || entry[0].Group != nil {
			return "", false
		}
		return unquoteName(entry[0].Token), true
	}
	return "", false
}

// aliasOf extracts the alias following a table expression: [AS] name.
func aliasOf(rest []Node) string {
	i := nextSignificant(rest, 0)
	if i < len(rest) && rest[i].IsKeyword("AS") {
		i = nextSignificant(rest, i+1)
	}
	if i >= len(rest) || rest[i].Group != nil {
		return ""
	}
	tok := rest[i].Token
	if tok.Kind != token.Identifier && tok.Kind != token.StringLiteral {
		return ""
	}
	return unquoteName(tok)
}

// skipReferencePrefix drops LATERAL and ONLY in front of a table reference.
func skipReferencePrefix(nodes []Node) []Node {
	for len(nodes) > 0 && nodes[0].Group == nil &&
		(nodes[0].Token.IsKeyword("LATERAL") || strings.EqualFold(nodes[0].Token.Text, "ONLY")) {
		nodes = trimTrivia(nodes[1:])
	}
	return nodes
}

// unquoteName strips one level of double-quote or backtick quoting from a
// fully quoted name. Qualified names keep their inner quoting.
func unquoteName(tok token.Token) string {
	text := tok.Text
	if len(text) < 2 {
		return text
	}
	q := text[0]
	if (q != '"' && q != '`') || text[len(text)-1] != q {
		return text
	}
	inner := text[1 : len(text)-1]
	if strings.ContainsRune(inner, rune(q)) && !strings.Contains(inner, string([]byte{q, q})) {
		// "a"."b" is a qualified name, not one quoted run.
		return text
	}
	return strings.ReplaceAll(inner, string([]byte{q, q}), string(q))
}
