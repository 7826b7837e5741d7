// Package shape fingerprints SQL SELECT statements by their structure.
//
// A statement is lexed into typed tokens, nested into parenthesis groups and
// walked clause by clause. FROM and JOIN tables are resolved to canonical
// labels, the WHERE condition has its literals replaced by placeholders, and
// GROUP BY and ORDER BY columns are collected in order. The result is a
// Signature: statements that differ only in literal values, aliases,
// whitespace or keyword case share one.
//
//	sig, err := shape.Fingerprint("SELECT * FROM t WHERE id = 42")
//	// sig.FromTables == ["t"], sig.WhereCondition == "id = 9"
//
// Every function in this package is pure and safe for concurrent use.
package shape
