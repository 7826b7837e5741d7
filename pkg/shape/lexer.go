package shape

import (
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/sqlshape/pkg/token"
)

// Lexer splits SQL text into typed tokens. It never fails: bytes it does not
// recognize come out as single-character Operator tokens, and whitespace and
// comments are kept as tokens of their own.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Tokenize returns every token of text, trivia included, in source order.
func Tokenize(text string) []token.Token {
	l := NewLexer(text)
	var tokens []token.Token
	for {
		tok, ok := l.NextToken()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token, or false once the input is exhausted.
func (l *Lexer) NextToken() (token.Token, bool) {
	if l.atEOF() {
		return token.Token{}, false
	}
	pos := l.currentPos()
	start := l.pos
	kind := l.scan()
	return token.Token{Kind: kind, Text: l.input[start:l.pos], Pos: pos}, true
}

// scan consumes one token and reports its kind.
func (l *Lexer) scan() token.Kind {
	switch {
	case isSpace(l.ch):
		for !l.atEOF() && isSpace(l.ch) {
			l.readChar()
		}
		return token.Whitespace

	case l.ch == '-' && l.peekChar() == '-':
		l.skipLineComment()
		return token.Comment

	case l.ch == '/' && l.peekChar() == '*':
		l.skipBlockComment()
		return token.Comment

	case l.ch == '\'':
		l.readQuoted('\'')
		return token.StringLiteral

	case l.ch == '"':
		l.readQuoted('"')
		if l.dottedNext() {
			l.readDotted()
			return token.Identifier
		}
		return token.StringLiteral

	case l.ch == '`':
		l.readQuoted('`')
		l.readDotted()
		return token.Identifier

	case isDigit(l.ch), l.ch == '.' && isDigit(l.peekChar()):
		return l.readNumber()

	case l.ch == '$' && isDigit(l.peekChar()):
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		return token.Identifier

	case (l.ch == ':' || l.ch == '@') && l.isIdentStartAt(l.readPos):
		l.readChar()
		l.readWord()
		l.readDotted()
		return token.Identifier

	case l.isIdentStartAt(l.pos):
		start := l.pos
		l.readWord()
		if l.dottedNext() {
			l.readDotted()
			return token.Identifier
		}
		return token.Lookup(l.input[start:l.pos])

	case l.ch == '(' || l.ch == ')' || l.ch == ',' || l.ch == ';':
		l.readChar()
		return token.Punctuation
	}

	l.readOperator()
	return token.Operator
}

// multiCharOperators are matched longest first.
var multiCharOperators = []string{"->>", "->", "<=", ">=", "<>", "!=", "||", "::"}

// readOperator consumes an operator, or a single unrecognized character.
func (l *Lexer) readOperator() {
	rest := l.input[l.pos:]
	for _, op := range multiCharOperators {
		if len(rest) >= len(op) && rest[:len(op)] == op {
			l.advance(len(op))
			return
		}
	}
	if l.ch < utf8.RuneSelf {
		l.readChar()
		return
	}
	// Invalid UTF-8 decodes with size 1, so bad bytes come out one at a time.
	_, size := utf8.DecodeRuneInString(rest)
	l.advance(size)
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && !l.atEOF(); i++ {
		l.readChar()
	}
}

// skipLineComment consumes a -- comment up to, not including, the newline.
func (l *Lexer) skipLineComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
}

// skipBlockComment consumes a /* */ comment. Unterminated comments run to EOF.
func (l *Lexer) skipBlockComment() {
	l.readChar() // skip '/'
	l.readChar() // skip '*'
	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// readQuoted consumes a quoted run including both quotes. A doubled quote or
// a backslash escapes the next character. When backslash escapes leave the
// run unterminated, it is rescanned with doubled quotes as the only escape,
// so 'C:\' closes where a standard SQL reader would close it. Runs that are
// unterminated either way end at EOF.
func (l *Lexer) readQuoted(quote byte) {
	saved := *l
	if l.scanQuoted(quote, true) {
		return
	}
	*l = saved
	l.scanQuoted(quote, false)
}

// scanQuoted consumes a quoted run and reports whether it found the closing
// quote.
func (l *Lexer) scanQuoted(quote byte, backslash bool) bool {
	l.readChar() // skip opening quote
	for !l.atEOF() {
		switch l.ch {
		case '\\':
			if !backslash {
				break
			}
			l.readChar()
			if !l.atEOF() {
				l.readChar()
			}
			continue
		case quote:
			if l.peekChar() == quote {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return true
		}
		l.readChar()
	}
	return false
}

// readWord consumes identifier characters.
func (l *Lexer) readWord() {
	for !l.atEOF() {
		if l.ch < utf8.RuneSelf {
			if !isLetter(l.ch) && !isDigit(l.ch) && l.ch != '_' && l.ch != '$' {
				return
			}
			l.readChar()
			continue
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		l.advance(size)
	}
}

// dottedNext reports whether the current '.' continues a qualified name.
func (l *Lexer) dottedNext() bool {
	if l.ch != '.' {
		return false
	}
	next := l.peekChar()
	return next == '*' || next == '"' || next == '`' || l.isIdentStartAt(l.readPos)
}

// readDotted consumes ".part" continuations of a qualified name.
func (l *Lexer) readDotted() {
	for l.dottedNext() {
		l.readChar() // skip '.'
		switch {
		case l.ch == '*':
			l.readChar()
			return
		case l.ch == '"' || l.ch == '`':
			l.readQuoted(l.ch)
		default:
			l.readWord()
		}
	}
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
// Digits glued to letters, as in 2nd or 3days, form an identifier instead.
func (l *Lexer) readNumber() token.Kind {
	for isDigit(l.ch) {
		l.readChar()
	}

	// Dotted runs such as 192.168.1.1 stay one literal.
	for l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		sign := next == '+' || next == '-'
		if isDigit(next) || (sign && l.readPos+1 < len(l.input) && isDigit(l.input[l.readPos+1])) {
			l.readChar() // skip 'e' or 'E'
			if sign {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	if !l.atEOF() && (isLetter(l.ch) || l.ch == '_') {
		l.readWord()
		return token.Identifier
	}
	return token.NumericLiteral
}

// isIdentStartAt reports whether an identifier can start at byte offset i.
func (l *Lexer) isIdentStartAt(i int) bool {
	if i >= len(l.input) {
		return false
	}
	c := l.input[i]
	if c < utf8.RuneSelf {
		return isLetter(c) || c == '_'
	}
	r, _ := utf8.DecodeRuneInString(l.input[i:])
	return unicode.IsLetter(r)
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}
