package core

import (
	"fmt"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword     // true, false, null, trailer, startxref, ...
	TokenInteger     // 123
	TokenReal        // 3.14
	TokenString      // (hello)
	TokenHexString   // <48656C6C6F>
	TokenName        // /Type
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
	TokenIndirectRef // R (after two numbers)
)

// Token is one lexical token.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int // Byte position in the input
}

// Lexer tokenizes PDF syntax from an in-memory byte buffer.
type Lexer struct {
	input []byte
	pos   int
}

// NewLexer creates a lexer over the given buffer.
func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input. At end of input it
// returns a TokenEOF token rather than an error.
func (l *Lexer) NextToken() (*Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return &Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	b := l.input[l.pos]

	if b == '%' {
		return l.readComment(), nil
	}

	switch b {
	case '[':
		l.pos++
		return &Token{Type: TokenArrayStart, Value: []byte{'['}, Pos: l.pos - 1}, nil
	case ']':
		l.pos++
		return &Token{Type: TokenArrayEnd, Value: []byte{']'}, Pos: l.pos - 1}, nil
	case '(':
		return l.readString()
	case '<':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '<' {
			l.pos += 2
			return &Token{Type: TokenDictStart, Value: []byte("<<"), Pos: l.pos - 2}, nil
		}
		return l.readHexString()
	case '>':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '>' {
			l.pos += 2
			return &Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: l.pos - 2}, nil
		}
		return nil, fmt.Errorf("unexpected '>' at position %d", l.pos)
	case '/':
		return l.readName()
	}

	if isDigit(b) || b == '-' || b == '+' || b == '.' {
		return l.readNumber(), nil
	}
	if isAlpha(b) {
		return l.readKeyword(), nil
	}

	return nil, fmt.Errorf("unexpected character %q at position %d", b, l.pos)
}

// skipWhitespace skips any run of PDF whitespace.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && isWhitespace(l.input[l.pos]) {
		l.pos++
	}
}

// readComment reads a comment from '%' to end of line. The EOL marker is
// consumed but not part of the token value.
func (l *Lexer) readComment() *Token {
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '\r' && l.input[l.pos] != '\n' {
		l.pos++
	}
	value := l.input[start:l.pos]
	if l.pos < len(l.input) && l.input[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '\n' {
		l.pos++
	}
	return &Token{Type: TokenComment, Value: value, Pos: start}
}

// readString reads a literal string "(...)", handling nested parentheses
// and backslash escapes.
func (l *Lexer) readString() (*Token, error) {
	start := l.pos
	l.pos++ // opening '('

	var out []byte
	depth := 1
	for depth > 0 {
		if l.pos >= len(l.input) {
			return nil, fmt.Errorf("unterminated string starting at position %d", start)
		}
		b := l.input[l.pos]
		l.pos++

		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth > 0 {
				out = append(out, b)
			}
		case '\\':
			if l.pos >= len(l.input) {
				return nil, fmt.Errorf("unterminated escape in string at position %d", l.pos)
			}
			esc := l.input[l.pos]
			l.pos++
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, esc)
			case '\r':
				// Line continuation; swallow an LF that follows the CR.
				if l.pos < len(l.input) && l.input[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
				// Line continuation.
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := esc - '0'
				for i := 0; i < 2 && l.pos < len(l.input) && isOctalDigit(l.input[l.pos]); i++ {
					val = val*8 + (l.input[l.pos] - '0')
					l.pos++
				}
				out = append(out, val)
			default:
				// Unknown escape: keep the character.
				out = append(out, esc)
			}
		default:
			out = append(out, b)
		}
	}

	return &Token{Type: TokenString, Value: out, Pos: start}, nil
}

// readHexString reads a hexadecimal string "<48656C6C6F>". Whitespace
// inside the string is ignored; the token value is the raw hex digits.
func (l *Lexer) readHexString() (*Token, error) {
	start := l.pos
	l.pos++ // opening '<'

	var out []byte
	for {
		if l.pos >= len(l.input) {
			return nil, fmt.Errorf("unterminated hex string starting at position %d", start)
		}
		b := l.input[l.pos]
		l.pos++
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		if !isHexDigit(b) {
			return nil, fmt.Errorf("invalid hex digit %q at position %d", b, l.pos-1)
		}
		out = append(out, b)
	}

	return &Token{Type: TokenHexString, Value: out, Pos: start}, nil
}

// readName reads a name object "/Type", decoding #xx escapes.
func (l *Lexer) readName() (*Token, error) {
	start := l.pos
	l.pos++ // '/'

	var out []byte
	for l.pos < len(l.input) {
		b := l.input[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
		if b == '#' {
			if l.pos+1 >= len(l.input) || !isHexDigit(l.input[l.pos]) || !isHexDigit(l.input[l.pos+1]) {
				return nil, fmt.Errorf("invalid hex escape in name at position %d", l.pos)
			}
			out = append(out, hexValue(l.input[l.pos])*16+hexValue(l.input[l.pos+1]))
			l.pos += 2
		} else {
			out = append(out, b)
		}
	}

	return &Token{Type: TokenName, Value: out, Pos: start}, nil
}

// readNumber reads an integer or real number.
func (l *Lexer) readNumber() *Token {
	start := l.pos
	hasDecimal := false

	for l.pos < len(l.input) {
		b := l.input[l.pos]
		if b == '.' {
			if hasDecimal {
				break
			}
			hasDecimal = true
			l.pos++
		} else if isDigit(b) || (l.pos == start && (b == '-' || b == '+')) {
			l.pos++
		} else {
			break
		}
	}

	tokenType := TokenInteger
	if hasDecimal {
		tokenType = TokenReal
	}
	return &Token{Type: tokenType, Value: l.input[start:l.pos], Pos: start}
}

// readKeyword reads an alphanumeric keyword. A bare "R" is the indirect
// reference marker.
func (l *Lexer) readKeyword() *Token {
	start := l.pos
	for l.pos < len(l.input) && (isAlpha(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.pos++
	}
	value := l.input[start:l.pos]

	if len(value) == 1 && value[0] == 'R' {
		return &Token{Type: TokenIndirectRef, Value: value, Pos: start}
	}
	return &Token{Type: TokenKeyword, Value: value, Pos: start}
}

// Character classes.

// isWhitespace reports PDF whitespace: space, tab, LF, CR, FF, null.
func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
