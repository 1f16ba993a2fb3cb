package core

import (
	"fmt"
	"io"
	"strconv"
)

// Parser parses PDF objects from a byte buffer using a Lexer for
// tokenization. It handles null, boolean, integer, real, string, name,
// array, dictionary, and indirect-reference objects, which covers
// everything a trailer dictionary can contain.
type Parser struct {
	lexer        *Lexer
	currentToken *Token
	peekToken    *Token // One token of lookahead for "num gen R"
}

// NewParser creates a parser over the given buffer and loads the first two
// tokens for lookahead.
func NewParser(input []byte) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances the parser by shifting the lookahead token. On a
// lexer error the lookahead is cleared so the stale token is never served
// twice; the parse then fails at the next token access.
func (p *Parser) nextToken() error {
	p.currentToken = p.peekToken
	token, err := p.lexer.NextToken()
	if err != nil {
		p.peekToken = nil
		return err
	}
	p.peekToken = token
	return nil
}

// skipComments skips over any consecutive comment tokens.
func (p *Parser) skipComments() error {
	for p.currentToken != nil && p.currentToken.Type == TokenComment {
		if err := p.nextToken(); err != nil {
			return err
		}
	}
	return nil
}

// ExpectKeyword consumes the current token, which must be the given
// keyword.
func (p *Parser) ExpectKeyword(keyword string) error {
	if err := p.skipComments(); err != nil {
		return err
	}
	if p.currentToken == nil || p.currentToken.Type != TokenKeyword || string(p.currentToken.Value) != keyword {
		return fmt.Errorf("expected %q keyword, got %v", keyword, p.currentToken)
	}
	return p.nextToken()
}

// ParseObject parses and returns the next PDF object from the input.
// It returns io.EOF at end of input.
func (p *Parser) ParseObject() (Object, error) {
	if err := p.skipComments(); err != nil {
		return nil, err
	}

	if p.currentToken == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch p.currentToken.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenKeyword:
		keyword := string(p.currentToken.Value)
		switch keyword {
		case "null":
			p.nextToken()
			return Null{}, nil
		case "true":
			p.nextToken()
			return Bool(true), nil
		case "false":
			p.nextToken()
			return Bool(false), nil
		default:
			return nil, fmt.Errorf("unexpected keyword: %s", keyword)
		}

	case TokenInteger:
		// Could be an integer or the start of an indirect reference.
		return p.parseNumber()

	case TokenReal:
		val, err := strconv.ParseFloat(string(p.currentToken.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number: %w", err)
		}
		p.nextToken()
		return Real(val), nil

	case TokenString:
		val := string(p.currentToken.Value)
		p.nextToken()
		return String(val), nil

	case TokenHexString:
		hexStr := string(p.currentToken.Value)
		if len(hexStr)%2 != 0 {
			hexStr += "0" // Trailing nibble is padded per spec
		}
		result := make([]byte, len(hexStr)/2)
		for i := 0; i < len(hexStr); i += 2 {
			b, err := strconv.ParseUint(hexStr[i:i+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid hex string: %w", err)
			}
			result[i/2] = byte(b)
		}
		p.nextToken()
		return String(result), nil

	case TokenName:
		val := string(p.currentToken.Value)
		p.nextToken()
		return Name(val), nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDict()

	default:
		return nil, fmt.Errorf("unexpected token type %v at position %d", p.currentToken.Type, p.currentToken.Pos)
	}
}

// parseNumber parses an integer or an indirect reference, detected by
// lookahead for the "num gen R" pattern.
func (p *Parser) parseNumber() (Object, error) {
	first, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(p.currentToken.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number: %s", p.currentToken.Value)
		}
		p.nextToken()
		return Real(f), nil
	}

	if p.peekToken != nil && p.peekToken.Type == TokenInteger {
		second, err := strconv.ParseInt(string(p.peekToken.Value), 10, 64)
		if err == nil {
			p.nextToken() // now at the second integer
			if p.peekToken != nil && p.peekToken.Type == TokenIndirectRef {
				p.nextToken() // at R
				p.nextToken() // past R
				return IndirectRef{
					Number:     int(first),
					Generation: int(second),
				}, nil
			}
			// Not a reference; the second integer is the next object.
			return Int(first), nil
		}
	}

	p.nextToken()
	return Int(first), nil
}

// parseArray parses a PDF array "[obj1 obj2 ...]".
func (p *Parser) parseArray() (Object, error) {
	p.nextToken() // past '['

	arr := Array{}
	for {
		if err := p.skipComments(); err != nil {
			return nil, err
		}
		if p.currentToken == nil || p.currentToken.Type == TokenEOF {
			return nil, fmt.Errorf("unexpected end of input in array")
		}
		if p.currentToken.Type == TokenArrayEnd {
			p.nextToken()
			break
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing array element: %w", err)
		}
		arr = append(arr, obj)
	}

	return arr, nil
}

// parseDict parses a PDF dictionary "<< /Key value ... >>".
func (p *Parser) parseDict() (Object, error) {
	p.nextToken() // past '<<'

	dict := make(Dict)
	for {
		if err := p.skipComments(); err != nil {
			return nil, err
		}
		if p.currentToken == nil || p.currentToken.Type == TokenEOF {
			return nil, fmt.Errorf("unexpected end of input in dictionary")
		}
		if p.currentToken.Type == TokenDictEnd {
			p.nextToken()
			break
		}

		if p.currentToken.Type != TokenName {
			return nil, fmt.Errorf("expected name for dictionary key, got %v", p.currentToken.Type)
		}
		key := string(p.currentToken.Value)
		p.nextToken()

		value, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing dictionary value for key %q: %w", key, err)
		}
		dict[key] = value
	}

	return dict, nil
}
