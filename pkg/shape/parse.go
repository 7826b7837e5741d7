package shape

import "github.com/leapstack-labs/sqlshape/pkg/token"

// DefaultMaxDepth is the default bound on subquery nesting.
const DefaultMaxDepth = 16

// Options tunes the pipeline. The zero value uses the defaults.
type Options struct {
	// MaxDepth bounds how many subqueries may nest inside one another.
	MaxDepth int
}

func (o Options) normalized() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// ParsedInfo is the per-clause extraction of one statement.
type ParsedInfo struct {
	FromTables     []string `json:"from_tables" yaml:"from_tables"`
	JoinTables     []string `json:"join_tables" yaml:"join_tables"`
	WhereCondition string   `json:"where_condition" yaml:"where_condition"`
	GroupBy        []string `json:"group_by" yaml:"group_by"`
	OrderBy        []string `json:"order_by" yaml:"order_by"`
}

// Signature builds the statement's fingerprint from the parsed clauses.
func (p *ParsedInfo) Signature() Signature {
	return Build(p.FromTables, p.JoinTables, p.WhereCondition, p.GroupBy, p.OrderBy)
}

// Parse extracts tables, the canonical WHERE condition, and the GROUP BY and
// ORDER BY columns of a SELECT statement.
func Parse(sql string) (*ParsedInfo, error) {
	return Options{}.Parse(sql)
}

// Fingerprint returns the structural signature of a SELECT statement.
func Fingerprint(sql string) (Signature, error) {
	return Options{}.Fingerprint(sql)
}

// Parse is the package-level Parse with o's limits.
func (o Options) Parse(sql string) (*ParsedInfo, error) {
	tokens := Tokenize(sql)
	if err := checkStatement(tokens); err != nil {
		return nil, err
	}
	nodes, err := Group(tokens)
	if err != nil {
		return nil, err
	}
	return o.normalized().parseNodes(unwrapStatement(nodes), 0)
}

// unwrapStatement descends into a statement written entirely inside
// parentheses, as in (SELECT ...).
func unwrapStatement(nodes []Node) []Node {
	for {
		body := trimTrivia(nodes)
		if len(body) != 1 || body[0].Group == nil {
			return nodes
		}
		nodes = body[0].Group.Nodes
	}
}

// Fingerprint is the package-level Fingerprint with o's limits.
func (o Options) Fingerprint(sql string) (Signature, error) {
	info, err := o.Parse(sql)
	if err != nil {
		return Signature{}, err
	}
	return info.Signature(), nil
}

// parseNodes runs the clause walker and extractors over a grouped statement.
// depth is the subquery nesting level of nodes.
func (o Options) parseNodes(nodes []Node, depth int) (*ParsedInfo, error) {
	info := &ParsedInfo{
		FromTables: []string{},
		JoinTables: []string{},
		GroupBy:    []string{},
		OrderBy:    []string{},
	}
	c := canonicalizer{opts: o, depth: depth}
	whereSeen := false
	for _, r := range segment(nodes) {
		switch r.Kind {
		case ClauseFrom:
			info.FromTables = append(info.FromTables, fromTables(r)...)
		case ClauseJoin:
			label, ok, from := joinTable(r)
			if ok {
				info.JoinTables = append(info.JoinTables, label)
			}
			info.FromTables = append(info.FromTables, from...)
		case ClauseWhere:
			if whereSeen {
				continue
			}
			whereSeen = true
			cond, err := c.condition(r.Nodes, 0)
			if err != nil {
				return nil, err
			}
			info.WhereCondition = cond
		case ClauseGroupBy:
			info.GroupBy = append(info.GroupBy, groupByColumns(r)...)
		case ClauseOrderBy:
			info.OrderBy = append(info.OrderBy, orderByColumns(r)...)
		}
	}
	return info, nil
}

// checkStatement rejects text that cannot be a SELECT statement: empty
// input, a leading word other than SELECT or WITH, and unterminated strings.
// Parenthesis balance is checked when the tree is built.
func checkStatement(tokens []token.Token) error {
	first := -1
	for i, tok := range tokens {
		if tok.IsTrivia() {
			continue
		}
		if first < 0 {
			first = i
		}
		if tok.Kind == token.StringLiteral && !quoteTerminated(tok.Text) {
			return newParseError(tok.Pos, "unterminated string literal")
		}
	}
	if first < 0 {
		return newParseError(token.Position{Line: 1, Column: 1}, "empty statement")
	}
	tok := tokens[first]
	if tok.IsKeyword("SELECT", "WITH") || tok.IsPunct("(") {
		return nil
	}
	return newParseError(tok.Pos, "expected SELECT, found %q", tok.Text)
}

// quoteTerminated reports whether a quoted token ends with its closing quote
// under either of the lexer's escape rules.
func quoteTerminated(text string) bool {
	return quoteClosed(text, true) || quoteClosed(text, false)
}

func quoteClosed(text string, backslash bool) bool {
	q := text[0]
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			if backslash {
				i++
			}
		case q:
			if i+1 < len(text) && text[i+1] == q {
				i++
				continue
			}
			return i == len(text)-1
		}
	}
	return false
}
