package timeline

import "fmt"

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokString
	tokNumber
)

var tokenNames = [...]string{
	tokEOF:      "end of document",
	tokLBrace:   "'{'",
	tokRBrace:   "'}'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokColon:    "':'",
	tokComma:    "','",
	tokString:   "string",
	tokNumber:   "number",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	text string // string contents without quotes, or the number literal
	off  int
}

// lexer splits a document into tokens. It understands only what the
// interchange layout uses: punctuation, escape-free strings and plain
// numbers.
type lexer struct {
	src []byte
	pos int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
			continue
		}
		break
	}
	start := l.pos
	if start >= len(l.src) {
		return token{kind: tokEOF, off: start}, nil
	}

	c := l.src[start]
	switch c {
	case '{':
		l.pos++
		return token{kind: tokLBrace, off: start}, nil
	case '}':
		l.pos++
		return token{kind: tokRBrace, off: start}, nil
	case '[':
		l.pos++
		return token{kind: tokLBracket, off: start}, nil
	case ']':
		l.pos++
		return token{kind: tokRBracket, off: start}, nil
	case ':':
		l.pos++
		return token{kind: tokColon, off: start}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, off: start}, nil
	case '"':
		return l.str()
	}
	if c == '-' || isDigit(c) {
		return l.number(), nil
	}
	return token{}, &ParseError{
		Code:    ErrCodeUnexpectedToken,
		Offset:  start,
		Message: fmt.Sprintf("unexpected character %q", c),
	}
}

func (l *lexer) str() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '"':
			text := string(l.src[start+1 : l.pos])
			l.pos++
			return token{kind: tokString, text: text, off: start}, nil
		case '\\', '\n':
			return token{}, &ParseError{
				Code:    ErrCodeUnexpectedToken,
				Offset:  l.pos,
				Message: "escapes and line breaks are not allowed in strings",
			}
		}
		l.pos++
	}
	return token{}, &ParseError{Code: ErrCodeUnexpectedToken, Offset: start, Message: "unterminated string"}
}

func (l *lexer) number() token {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			l.pos++
			continue
		}
		break
	}
	return token{kind: tokNumber, text: string(l.src[start:l.pos]), off: start}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
