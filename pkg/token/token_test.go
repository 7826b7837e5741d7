package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		word string
		want Kind
	}{
		{"select", Keyword},
		{"SeLeCt", Keyword},
		{"straight_join", Keyword},
		{"true", BooleanLiteral},
		{"FALSE", BooleanLiteral},
		{"null", NullLiteral},
		{"users", Identifier},
		{"date", Identifier},
		{"", Identifier},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tt.word))
		})
	}
}

func TestToken_Predicates(t *testing.T) {
	desc := Token{Kind: Keyword, Text: "desc"}
	assert.True(t, desc.IsDirection())
	assert.True(t, desc.IsKeyword())
	assert.True(t, desc.IsKeyword("ASC", "DESC"))
	assert.False(t, desc.IsKeyword("FROM"))
	assert.Equal(t, "DESC", desc.Upper())

	ident := Token{Kind: Identifier, Text: "desc_col"}
	assert.False(t, ident.IsKeyword())
	assert.False(t, ident.IsDirection())

	assert.True(t, Token{Kind: Whitespace, Text: " "}.IsTrivia())
	assert.True(t, Token{Kind: Comment, Text: "-- x"}.IsTrivia())
	assert.True(t, Token{Kind: Punctuation, Text: ","}.IsPunct(","))
	assert.False(t, Token{Kind: Operator, Text: ","}.IsPunct(","))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "NumericLiteral", NumericLiteral.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
	assert.True(t, StringLiteral.IsLiteral())
	assert.False(t, Identifier.IsLiteral())
}

func TestPosition(t *testing.T) {
	pos := Position{Line: 2, Column: 5, Offset: 12}
	assert.True(t, pos.IsValid())
	assert.Equal(t, "line 2, column 5", pos.String())
	assert.False(t, Position{}.IsValid())
}
