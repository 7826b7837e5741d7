package token

import "strings"

// keywords is the set of reserved words recognized by the lexer, upper case.
// TRUE, FALSE and NULL are classified as literals instead, see Lookup.
var keywords = map[string]struct{}{
	"ALL":           {},
	"AND":           {},
	"ANY":           {},
	"AS":            {},
	"ASC":           {},
	"BETWEEN":       {},
	"BY":            {},
	"CASE":          {},
	"CROSS":         {},
	"DESC":          {},
	"DISTINCT":      {},
	"ELSE":          {},
	"END":           {},
	"EXCEPT":        {},
	"EXISTS":        {},
	"FETCH":         {},
	"FIRST":         {},
	"FOR":           {},
	"FROM":          {},
	"FULL":          {},
	"GROUP":         {},
	"HAVING":        {},
	"ILIKE":         {},
	"IN":            {},
	"INNER":         {},
	"INTERSECT":     {},
	"IS":            {},
	"JOIN":          {},
	"LAST":          {},
	"LATERAL":       {},
	"LEFT":          {},
	"LIKE":          {},
	"LIMIT":         {},
	"NATURAL":       {},
	"NOT":           {},
	"NULLS":         {},
	"OFFSET":        {},
	"ON":            {},
	"OR":            {},
	"ORDER":         {},
	"OUTER":         {},
	"OVER":          {},
	"PARTITION":     {},
	"QUALIFY":       {},
	"RECURSIVE":     {},
	"RIGHT":         {},
	"SELECT":        {},
	"SOME":          {},
	"STRAIGHT":      {},
	"STRAIGHT_JOIN": {},
	"THEN":          {},
	"UNION":         {},
	"USING":         {},
	"WHEN":          {},
	"WHERE":         {},
	"WINDOW":        {},
	"WITH":          {},
}

// Lookup classifies a bare word. Matching is case-insensitive.
func Lookup(word string) Kind {
	upper := strings.ToUpper(word)
	switch upper {
	case "TRUE", "FALSE":
		return BooleanLiteral
	case "NULL":
		return NullLiteral
	}
	if _, ok := keywords[upper]; ok {
		return Keyword
	}
	return Identifier
}
