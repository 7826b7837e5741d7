// Package token defines the lexical tokens produced by the shape lexer.
//
// Token kinds are owned here rather than borrowed from a third-party
// tokenizer, so clause extraction only depends on this small enum and the
// keyword table below.
package token

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind int

const (
	Whitespace Kind = iota
	Comment
	Keyword
	Identifier
	StringLiteral
	NumericLiteral
	BooleanLiteral
	NullLiteral
	Punctuation
	Operator
)

var kindNames = [...]string{
	Whitespace:     "Whitespace",
	Comment:        "Comment",
	Keyword:        "Keyword",
	Identifier:     "Identifier",
	StringLiteral:  "StringLiteral",
	NumericLiteral: "NumericLiteral",
	BooleanLiteral: "BooleanLiteral",
	NullLiteral:    "NullLiteral",
	Punctuation:    "Punctuation",
	Operator:       "Operator",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsLiteral reports whether the kind carries a literal value.
func (k Kind) IsLiteral() bool {
	return k == StringLiteral || k == NumericLiteral || k == BooleanLiteral || k == NullLiteral
}

// Token is a lexical token with its original text and start position.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

// String implements fmt.Stringer.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Pos.Offset)
}

// Upper returns the token text in upper case.
func (t Token) Upper() string {
	return strings.ToUpper(t.Text)
}

// IsKeyword reports whether t is a keyword matching any of kws.
// kws must be upper case. With no arguments it reports whether t is a
// keyword at all.
func (t Token) IsKeyword(kws ...string) bool {
	if t.Kind != Keyword {
		return false
	}
	if len(kws) == 0 {
		return true
	}
	for _, kw := range kws {
		if strings.EqualFold(t.Text, kw) {
			return true
		}
	}
	return false
}

// IsDirection reports whether t is an ASC or DESC sort direction.
func (t Token) IsDirection() bool {
	return t.IsKeyword("ASC", "DESC")
}

// IsTrivia reports whether t is whitespace or a comment.
func (t Token) IsTrivia() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

// IsPunct reports whether t is the punctuation character p.
func (t Token) IsPunct(p string) bool {
	return t.Kind == Punctuation && t.Text == p
}
