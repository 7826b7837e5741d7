package shape

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlshape/pkg/token"
)

// maxNesting bounds plain parenthesis nesting inside a condition.
const maxNesting = 1000

// Placeholders substituted for literal values.
const (
	numberPlaceholder  = "9"
	stringPlaceholder  = "X"
	booleanPlaceholder = "B"
)

// Canonicalize abstracts the literals of a condition and collapses its
// IN-lists and subqueries into their compact canonical forms. Applying it
// to its own output returns that output unchanged.
//
// Unbalanced parentheses are tolerated here; Parse is the strict entry point.
func Canonicalize(text string) (string, error) {
	return Options{}.Canonicalize(text)
}

// Canonicalize is the package-level Canonicalize with o's limits.
func (o Options) Canonicalize(text string) (string, error) {
	nodes, err := buildTree(Tokenize(text), false)
	if err != nil {
		return "", err
	}
	c := canonicalizer{opts: o.normalized()}
	return c.condition(nodes, 0)
}

// canonicalizer renders condition nodes at a given subquery depth.
type canonicalizer struct {
	opts  Options
	depth int
}

// condition renders nodes with literals abstracted. nesting counts the
// plain parenthesis levels above nodes.
func (c canonicalizer) condition(nodes []Node, nesting int) (string, error) {
	var w spacedWriter
	numeric := false // last write was a number placeholder
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if n.IsTrivia() {
			w.space()
			numeric = false
			continue
		}
		if n.Group == nil && n.Token.Kind == token.NumericLiteral {
			// Glued numeric runs such as 1e5.3 collapse to one placeholder.
			if !numeric {
				w.write(numberPlaceholder)
			}
			numeric = true
			continue
		}
		numeric = false
		if n.Group != nil {
			s, err := c.group(n.Group, nesting+1)
			if err != nil {
				return "", err
			}
			w.write(s)
			continue
		}
		if n.IsKeyword("IN") {
			if j := nextSignificant(nodes, i+1); j < len(nodes) && nodes[j].Group != nil {
				s, err := c.inList(nodes[j].Group, nesting+1)
				if err != nil {
					return "", err
				}
				w.write("IN " + s)
				i = j
				continue
			}
		}
		w.write(abstractToken(n.Token))
	}
	return w.String(), nil
}

// group renders a parenthesized group inside a condition.
func (c canonicalizer) group(g *ParenGroup, nesting int) (string, error) {
	if nesting > maxNesting {
		return "", fmt.Errorf("%w: parentheses nested deeper than %d", ErrRecursionLimit, maxNesting)
	}
	if g.IsSubquery() {
		return c.subquery(g)
	}
	inner, err := c.condition(g.Nodes, nesting)
	if err != nil {
		return "", err
	}
	return wrap(g, inner), nil
}

// inList renders the group that follows IN. A subquery list, or a list
// already in canonical subquery form, keeps its structure; any other list
// collapses to a single representative element.
func (c canonicalizer) inList(g *ParenGroup, nesting int) (string, error) {
	switch {
	case g.IsSubquery(), isCanonicalSubquery(g), containsToken(g.Nodes, isSelect):
		return c.group(g, nesting)
	case containsToken(g.Nodes, isQuoted):
		return "('" + stringPlaceholder + "')", nil
	}
	return "(" + numberPlaceholder + ")", nil
}

// subquery re-enters the pipeline on the group's inner statement and
// renders (sub:<tables>|<condition>).
func (c canonicalizer) subquery(g *ParenGroup) (string, error) {
	depth := c.depth + 1
	if depth > c.opts.MaxDepth {
		return "", fmt.Errorf("%w: subqueries nested deeper than %d", ErrRecursionLimit, c.opts.MaxDepth)
	}
	info, err := c.opts.parseNodes(g.Nodes, depth)
	if err != nil {
		return "", err
	}
	tables := make([]string, 0, len(info.FromTables)+len(info.JoinTables))
	tables = append(tables, info.FromTables...)
	tables = append(tables, info.JoinTables...)
	slices.Sort(tables)
	return "(" + subPrefix + strings.Join(tables, ",") + "|" + info.WhereCondition + ")", nil
}

// abstractToken returns the canonical text of a leaf token.
func abstractToken(tok token.Token) string {
	switch tok.Kind {
	case token.NumericLiteral:
		return numberPlaceholder
	case token.StringLiteral:
		q := tok.Text[:1]
		return q + stringPlaceholder + q
	case token.BooleanLiteral:
		return booleanPlaceholder
	case token.NullLiteral, token.Keyword:
		return tok.Upper()
	}
	return tok.Text
}

// isCanonicalSubquery recognizes a group already rendered as
// (sub:<tables>|<condition>).
func isCanonicalSubquery(g *ParenGroup) bool {
	i := nextSignificant(g.Nodes, 0)
	if i+1 >= len(g.Nodes) {
		return false
	}
	head, next := g.Nodes[i], g.Nodes[i+1]
	return head.Group == nil && head.Token.Text+":" == subPrefix &&
		next.Group == nil && strings.HasPrefix(next.Token.Text, ":")
}

func isSelect(tok token.Token) bool {
	return tok.IsKeyword("SELECT")
}

func isQuoted(tok token.Token) bool {
	return tok.Kind == token.StringLiteral
}

// wrap puts rendered inner text back between the group's parentheses.
func wrap(g *ParenGroup, inner string) string {
	if g.Closed() {
		return "(" + inner + ")"
	}
	return "(" + inner
}

// plainText renders nodes without literal abstraction: whitespace collapsed,
// keywords upper-cased, everything else verbatim.
func plainText(nodes []Node) string {
	var w spacedWriter
	for _, tok := range flatten(nodes) {
		switch {
		case tok.IsTrivia():
			w.space()
		case tok.Kind == token.Keyword, tok.Kind == token.NullLiteral:
			w.write(tok.Upper())
		default:
			w.write(tok.Text)
		}
	}
	return w.String()
}

// spacedWriter joins rendered fragments, turning any run of trivia between
// two fragments into a single space. Space is never emitted at either end,
// right after '(' or right before ')'.
type spacedWriter struct {
	b       strings.Builder
	pending bool
}

func (w *spacedWriter) space() {
	w.pending = w.b.Len() > 0
}

func (w *spacedWriter) write(s string) {
	if s == "" {
		return
	}
	if w.pending && s[0] != ')' && !strings.HasSuffix(w.b.String(), "(") {
		w.b.WriteByte(' ')
	}
	w.pending = false
	w.b.WriteString(s)
}

func (w *spacedWriter) String() string {
	return w.b.String()
}
