// Package ruleexpr compiles one-line boolean match expressions such as
//
//	host is 1.1.1.1
//	port is 80 or port is 443
//	not host in 192.168.1.0/24 and addr like ".*:8[0-9]{3}$"
//
// into the typed rule tree the bbs engine evaluates connections against.
// Keywords (not, and, or, in, is, like) and variables (host, port, addr)
// are case-insensitive; "and" binds tighter than "or" and both fold left;
// parentheses group. Negation is only valid directly before a leaf and ends
// up on that leaf's negate flag, never on a combo.
package ruleexpr

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports a malformed expression with the 0-based byte offset of
// the offending token.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

var dottedQuad = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// Compile parses expr into a rule tree. Empty or whitespace-only input
// compiles to a nil rule, meaning no condition was supplied; every error is
// a *ParseError.
func Compile(expr string) (Rule, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	p := &parser{scan: newScanner(expr)}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokEOF {
		return nil, errAt(tok, fmt.Sprintf("unexpected %q after expression", tok.text))
	}
	return root, nil
}

type parser struct {
	scan   *scanner
	peeked *token
}

func (p *parser) next() (token, *ParseError) {
	if p.peeked != nil {
		tok := *p.peeked
		p.peeked = nil
		return tok, nil
	}
	return p.scan.next()
}

func (p *parser) peek() (token, *ParseError) {
	if p.peeked == nil {
		tok, err := p.scan.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

func errAt(tok token, msg string) *ParseError {
	return &ParseError{Offset: tok.off, Msg: msg}
}

func keyword(tok token, word string) bool {
	return tok.kind == tokWord && strings.EqualFold(tok.text, word)
}

func (p *parser) parseOr() (Rule, *ParseError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if !keyword(tok, "or") {
			return left, nil
		}
		if _, err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Combo{Rule1: left, Op: OpOr, Rule2: right}
	}
}

func (p *parser) parseAnd() (Rule, *ParseError) {
	left, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if !keyword(tok, "and") {
			return left, nil
		}
		if _, err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		left = Combo{Rule1: left, Op: OpAnd, Rule2: right}
	}
}

// parseSimple handles a parenthesized group or one leaf:
// [not] VARIABLE OPERATOR VALUE.
func (p *parser) parseSimple() (Rule, *ParseError) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokLParen {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, err := p.next()
		if err != nil {
			return nil, err
		}
		if closing.kind != tokRParen {
			return nil, errAt(closing, "expected ')'")
		}
		return inner, nil
	}

	negate := false
	if keyword(tok, "not") {
		negate = true
		tok, err = p.next()
		if err != nil {
			return nil, err
		}
	}

	if tok.kind != tokWord {
		return nil, errAt(tok, "expected a variable (host, port or addr)")
	}
	variable := strings.ToLower(tok.text)
	switch variable {
	case VarHost, VarPort, VarAddr:
	default:
		return nil, errAt(tok, fmt.Sprintf("unknown variable %q, want host, port or addr", tok.text))
	}

	opTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if opTok.kind != tokWord {
		return nil, errAt(opTok, "expected an operator (in, is or like)")
	}
	op := strings.ToLower(opTok.text)
	switch op {
	case "in", "is", "like":
	default:
		return nil, errAt(opTok, fmt.Sprintf("unknown operator %q, want in, is or like", opTok.text))
	}

	valTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if valTok.kind != tokWord && valTok.kind != tokString {
		return nil, errAt(valTok, "expected a value")
	}

	return makeLeaf(variable, op, valTok.text, negate, opTok)
}

// makeLeaf maps a (variable, operator, value) triple onto the engine's leaf
// shapes. Pairs with no defined mapping (port in ..., addr in ...) are a
// compile error rather than an empty rule.
func makeLeaf(variable, op, value string, negate bool, opTok token) (Rule, *ParseError) {
	switch {
	case variable == VarHost && op == "in":
		return Subnet{Content: value, Negate: negate}, nil
	case variable == VarHost && op == "is":
		if dottedQuad.MatchString(value) {
			return Subnet{Content: value + "/32", Negate: negate}, nil
		}
		return Regexp{Variable: VarHost, Content: "^" + regexp.QuoteMeta(value) + "$", Negate: negate}, nil
	case op == "is":
		return Regexp{Variable: variable, Content: "^" + regexp.QuoteMeta(value) + "$", Negate: negate}, nil
	case op == "like":
		// Raw pattern supplied by the caller, used verbatim.
		return Regexp{Variable: variable, Content: value, Negate: negate}, nil
	default:
		return nil, errAt(opTok, fmt.Sprintf("operator %q is not supported for variable %q", op, variable))
	}
}
