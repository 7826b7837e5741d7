package shape

import "github.com/leapstack-labs/sqlshape/pkg/token"

// Node is one element of a token tree: either a leaf token or a
// parenthesized group.
type Node struct {
	Token token.Token
	Group *ParenGroup
}

// IsGroup reports whether n is a parenthesized group.
func (n Node) IsGroup() bool {
	return n.Group != nil
}

// IsTrivia reports whether n is a whitespace or comment leaf.
func (n Node) IsTrivia() bool {
	return n.Group == nil && n.Token.IsTrivia()
}

// IsKeyword reports whether n is a keyword leaf matching any of kws.
func (n Node) IsKeyword(kws ...string) bool {
	return n.Group == nil && n.Token.IsKeyword(kws...)
}

// Pos returns the position of the node's first character.
func (n Node) Pos() token.Position {
	if n.Group != nil {
		return n.Group.Open.Pos
	}
	return n.Token.Pos
}

// ParenGroup is a maximal balanced parenthesis span. Nodes holds the
// contents between the parentheses, which may contain further groups.
type ParenGroup struct {
	Open  token.Token
	Close token.Token // zero when the group was never closed
	Nodes []Node
}

// Closed reports whether the group had a matching ')'.
func (g *ParenGroup) Closed() bool {
	return g.Close.Text != ""
}

// IsSubquery reports whether the group's first significant token is SELECT.
func (g *ParenGroup) IsSubquery() bool {
	i := nextSignificant(g.Nodes, 0)
	return i < len(g.Nodes) && g.Nodes[i].IsKeyword("SELECT")
}

// Group builds the parenthesis tree for tokens. An unmatched ')' or an
// unclosed '(' is reported as a *ParseError.
func Group(tokens []token.Token) ([]Node, error) {
	return buildTree(tokens, true)
}

// buildTree nests tokens into groups with an explicit stack. When strict is
// false, a stray ')' stays a plain leaf and unclosed groups end at EOF.
func buildTree(tokens []token.Token, strict bool) ([]Node, error) {
	root := &ParenGroup{}
	stack := []*ParenGroup{root}
	for _, tok := range tokens {
		top := stack[len(stack)-1]
		switch {
		case tok.IsPunct("("):
			g := &ParenGroup{Open: tok}
			top.Nodes = append(top.Nodes, Node{Group: g})
			stack = append(stack, g)
		case tok.IsPunct(")") && len(stack) > 1:
			top.Close = tok
			stack = stack[:len(stack)-1]
		case tok.IsPunct(")") && strict:
			return nil, newParseError(tok.Pos, "unbalanced ')'")
		default:
			top.Nodes = append(top.Nodes, Node{Token: tok})
		}
	}
	if len(stack) > 1 && strict {
		return nil, newParseError(stack[len(stack)-1].Open.Pos, "unclosed '('")
	}
	return root.Nodes, nil
}

// flatten turns a node tree back into its token sequence without recursion.
func flatten(nodes []Node) []token.Token {
	type frame struct {
		nodes []Node
		i     int
		close token.Token
	}
	var out []token.Token
	stack := []frame{{nodes: nodes}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i >= len(top.nodes) {
			if top.close.Text != "" {
				out = append(out, top.close)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.nodes[top.i]
		top.i++
		if n.Group == nil {
			out = append(out, n.Token)
			continue
		}
		out = append(out, n.Group.Open)
		stack = append(stack, frame{nodes: n.Group.Nodes, close: n.Group.Close})
	}
	return out
}

// nextSignificant returns the index of the first non-trivia node at or after
// i, or len(nodes).
func nextSignificant(nodes []Node, i int) int {
	for i < len(nodes) && nodes[i].IsTrivia() {
		i++
	}
	return i
}

// trimTrivia drops leading and trailing trivia.
func trimTrivia(nodes []Node) []Node {
	start := nextSignificant(nodes, 0)
	end := len(nodes)
	for end > start && nodes[end-1].IsTrivia() {
		end--
	}
	return nodes[start:end]
}

// splitTopLevel splits nodes on top-level commas. Empty parts are dropped.
func splitTopLevel(nodes []Node) [][]Node {
	var parts [][]Node
	start := 0
	for i := 0; i <= len(nodes); i++ {
		if i < len(nodes) && !(nodes[i].Group == nil && nodes[i].Token.IsPunct(",")) {
			continue
		}
		if part := trimTrivia(nodes[start:i]); len(part) > 0 {
			parts = append(parts, part)
		}
		start = i + 1
	}
	return parts
}

// containsToken reports whether any token in the tree satisfies match.
func containsToken(nodes []Node, match func(token.Token) bool) bool {
	for _, tok := range flatten(nodes) {
		if match(tok) {
			return true
		}
	}
	return false
}
