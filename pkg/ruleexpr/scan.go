package ruleexpr

import "strings"

type tokKind int

const (
	tokEOF tokKind = iota
	tokWord
	tokString
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	off  int
}

type scanner struct {
	src string
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// next returns the next token. Bare words run until whitespace or a
// parenthesis; quote characters only open a string when they start a token,
// so a value like don't stays one word.
func (s *scanner) next() (token, *ParseError) {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, off: s.pos}, nil
	}

	start := s.pos
	switch c := s.src[s.pos]; c {
	case '(':
		s.pos++
		return token{kind: tokLParen, text: "(", off: start}, nil
	case ')':
		s.pos++
		return token{kind: tokRParen, text: ")", off: start}, nil
	case '"', '\'':
		end := strings.IndexByte(s.src[start+1:], c)
		if end < 0 {
			return token{}, &ParseError{Offset: start, Msg: "unterminated quoted string"}
		}
		s.pos = start + 1 + end + 1
		return token{kind: tokString, text: s.src[start+1 : start+1+end], off: start}, nil
	}

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isSpace(c) || c == '(' || c == ')' {
			break
		}
		s.pos++
	}
	return token{kind: tokWord, text: s.src[start:s.pos], off: start}, nil
}
