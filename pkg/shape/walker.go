package shape

import (
	"fmt"

	"github.com/leapstack-labs/sqlshape/pkg/token"
)

// ClauseKind identifies the top-level clause a region belongs to.
type ClauseKind int

const (
	ClauseFrom ClauseKind = iota
	ClauseJoin
	ClauseWhere
	ClauseGroupBy
	ClauseOrderBy
)

func (k ClauseKind) String() string {
	switch k {
	case ClauseFrom:
		return "FROM"
	case ClauseJoin:
		return "JOIN"
	case ClauseWhere:
		return "WHERE"
	case ClauseGroupBy:
		return "GROUP BY"
	case ClauseOrderBy:
		return "ORDER BY"
	}
	return fmt.Sprintf("ClauseKind(%d)", int(k))
}

// ClauseRegion is the node span between a clause's introducing keyword and
// the next top-level clause keyword.
type ClauseRegion struct {
	Kind  ClauseKind
	Start token.Position // position of the introducing keyword
	Nodes []Node
}

type walkerState int

const (
	stateNeutral walkerState = iota
	stateFrom
	stateJoin
	stateWhere
	stateGroupBy
	stateOrderBy
	stateTerminal
)

// closingKeywords end the open region without starting a tracked one.
var closingKeywords = []string{"HAVING", "LIMIT", "OFFSET", "FETCH", "FOR", "WINDOW", "QUALIFY"}

// terminalKeywords end segmentation: whatever follows belongs to another
// SELECT and is not part of this statement's shape.
var terminalKeywords = []string{"UNION", "INTERSECT", "EXCEPT"}

// joinStages is the modifier grammar accepted before JOIN, one optional word
// per stage: [NATURAL] [LEFT|RIGHT|FULL] [INNER|OUTER|STRAIGHT] JOIN.
var joinStages = [][]string{
	{"NATURAL"},
	{"LEFT", "RIGHT", "FULL"},
	{"INNER", "OUTER", "STRAIGHT"},
}

// Segment locates the top-level clause regions of a token sequence.
func Segment(tokens []token.Token) ([]ClauseRegion, error) {
	nodes, err := Group(tokens)
	if err != nil {
		return nil, err
	}
	return segment(nodes), nil
}

// segment runs the clause walker over an already grouped node sequence.
func segment(nodes []Node) []ClauseRegion {
	w := &walker{nodes: nodes}
	w.run()
	return w.regions
}

type walker struct {
	nodes   []Node
	state   walkerState
	prev    Node // last significant node seen
	regions []ClauseRegion
}

func (w *walker) run() {
	for i := 0; i < len(w.nodes) && w.state != stateTerminal; {
		n := w.nodes[i]
		if n.Group == nil && !n.IsTrivia() {
			if next, ok := w.transition(i); ok {
				w.prev = w.nodes[next-1]
				i = next
				continue
			}
		}
		w.collect(n)
		if !n.IsTrivia() {
			w.prev = n
		}
		i++
	}
}

// transition checks whether the keyword at i starts or ends a clause. It
// returns the index just past the consumed keywords.
func (w *walker) transition(i int) (int, bool) {
	tok := w.nodes[i].Token
	switch {
	case tok.IsPunct(";"), tok.IsKeyword(terminalKeywords...):
		w.state = stateTerminal
		return i + 1, true
	case tok.IsKeyword("FROM"):
		// IS [NOT] DISTINCT FROM is a comparison, not a clause.
		if w.prev.IsKeyword("DISTINCT") {
			return 0, false
		}
		w.open(stateFrom, ClauseFrom, tok)
		return i + 1, true
	case tok.IsKeyword("WHERE"):
		w.open(stateWhere, ClauseWhere, tok)
		return i + 1, true
	case tok.IsKeyword("GROUP"):
		if j, ok := w.expect(i+1, "BY"); ok {
			w.open(stateGroupBy, ClauseGroupBy, tok)
			return j + 1, true
		}
		return 0, false
	case tok.IsKeyword("ORDER"):
		if j, ok := w.expect(i+1, "BY"); ok {
			w.open(stateOrderBy, ClauseOrderBy, tok)
			return j + 1, true
		}
		return 0, false
	case tok.IsKeyword(closingKeywords...):
		w.state = stateNeutral
		return i + 1, true
	}
	if j, ok := w.matchJoin(i); ok {
		w.open(stateJoin, ClauseJoin, tok)
		return j + 1, true
	}
	return 0, false
}

// matchJoin matches a join keyword sequence starting at i and returns the
// index of its JOIN keyword.
func (w *walker) matchJoin(i int) (int, bool) {
	n := w.nodes[i]
	switch {
	case n.IsKeyword("JOIN", "STRAIGHT_JOIN"):
		return i, true
	case n.IsKeyword("CROSS"):
		return w.expect(i+1, "JOIN")
	}
	j := i
	matched := false
	for _, stage := range joinStages {
		if j < len(w.nodes) && w.nodes[j].IsKeyword(stage...) {
			matched = true
			j = nextSignificant(w.nodes, j+1)
		}
	}
	if matched && j < len(w.nodes) && w.nodes[j].IsKeyword("JOIN") {
		return j, true
	}
	return 0, false
}

// expect returns the index of keyword kw if it is the next significant node
// at or after i.
func (w *walker) expect(i int, kw string) (int, bool) {
	j := nextSignificant(w.nodes, i)
	if j < len(w.nodes) && w.nodes[j].IsKeyword(kw) {
		return j, true
	}
	return 0, false
}

func (w *walker) open(state walkerState, kind ClauseKind, tok token.Token) {
	w.state = state
	w.regions = append(w.regions, ClauseRegion{Kind: kind, Start: tok.Pos})
}

func (w *walker) collect(n Node) {
	switch w.state {
	case stateFrom, stateJoin, stateWhere, stateGroupBy, stateOrderBy:
		r := &w.regions[len(w.regions)-1]
		r.Nodes = append(r.Nodes, n)
	}
}
