package rule

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrEvaluation is matched by every [*EvaluationError].
	ErrEvaluation = errors.New("evaluation error")
	// ErrSyntax indicates a malformed condition.
	ErrSyntax = errors.New("syntax error")
	// ErrIndexOutOfRange indicates a placeholder that does not refer to a
	// required domain.
	ErrIndexOutOfRange = errors.New("placeholder index out of range")
)

// EvaluationError is returned when a condition cannot be compiled.
type EvaluationError struct {
	Err        error
	Rule       string // Name of the rule, when compiled by a [Rule].
	Expression string
	Pos        int // Byte offset into Expression.
}

func (e *EvaluationError) Error() string {
	msg := fmt.Sprintf("%v at position %d in %q", e.Err, e.Pos, e.Expression)
	if e.Rule != "" {
		return fmt.Sprintf("rule %q: %s", e.Rule, msg)
	}

	return msg
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation //nolint:errorlint // Sentinel comparison.
}

// Condition is a compiled boolean formula over requirement results.
type Condition interface {
	// Eval evaluates the condition. Every index referenced by the condition
	// must be valid for values.
	Eval(values []bool) bool
	String() string
}

type (
	// Index refers to the result of the requirement at that position.
	Index int
	// Literal is a constant.
	Literal bool
	// Not negates X.
	Not struct{ X Condition }
	// And is true when both L and R are.
	And struct{ L, R Condition }
	// Or is true when either L or R is.
	Or struct{ L, R Condition }
)

func (i Index) Eval(values []bool) bool { return values[i] }
func (l Literal) Eval([]bool) bool      { return bool(l) }
func (n Not) Eval(values []bool) bool   { return !n.X.Eval(values) }
func (a And) Eval(values []bool) bool   { return a.L.Eval(values) && a.R.Eval(values) }
func (o Or) Eval(values []bool) bool    { return o.L.Eval(values) || o.R.Eval(values) }

func (i Index) String() string { return strconv.Itoa(int(i)) }

func (l Literal) String() string {
	if l {
		return "True"
	}

	return "False"
}

func (n Not) String() string { return "not " + n.X.String() }
func (a And) String() string { return "(" + a.L.String() + " and " + a.R.String() + ")" }
func (o Or) String() string  { return "(" + o.L.String() + " or " + o.R.String() + ")" }

// ParseCondition parses expression into a [Condition] over n requirements.
//
// The grammar, loosest binding first:
//
//	or      = and { "or" and }
//	and     = not { "and" not }
//	not     = "not" not | primary
//	primary = index | "True" | "False" | "(" or ")"
//
// Index placeholders are decimal without leading zeros and must be in
// [0, n). A rule without requirements is written "True".
func ParseCondition(expression string, n int) (Condition, error) {
	p := &parser{lex: lexer{src: expression}, n: n}
	p.next()

	if p.tok.kind == tokEOF {
		return nil, p.errorf(ErrSyntax, "empty expression")
	}

	c, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokEOF {
		return nil, p.errorf(ErrSyntax, "unexpected %q", p.tok.text)
	}

	return c, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIndex
	tokTrue
	tokFalse
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokInvalid
)

type token struct {
	text string
	kind tokenKind
	pos  int
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() token {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}

	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}
	}

	c := l.src[l.pos]

	switch {
	case isDigit(c):
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}

		return token{kind: tokIndex, text: l.src[start:l.pos], pos: start}

	case isLetter(c):
		for l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.pos++
		}

		word := l.src[start:l.pos]

		kind := tokInvalid
		switch word {
		case "and":
			kind = tokAnd
		case "or":
			kind = tokOr
		case "not":
			kind = tokNot
		case "True":
			kind = tokTrue
		case "False":
			kind = tokFalse
		}

		return token{kind: kind, text: word, pos: start}

	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}

	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}

	}

	l.pos++

	return token{kind: tokInvalid, text: l.src[start:l.pos], pos: start}
}

type parser struct {
	lex lexer
	tok token
	n   int
}

func (p *parser) next() {
	p.tok = p.lex.next()
}

func (p *parser) errorf(err error, format string, args ...any) error {
	return &EvaluationError{
		Err:        fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)),
		Expression: p.lex.src,
		Pos:        p.tok.pos,
	}
}

func (p *parser) parseOr() (Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokOr {
		p.next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = Or{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Condition, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokAnd {
		p.next()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = And{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseNot() (Condition, error) {
	if p.tok.kind == tokNot {
		p.next()

		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return Not{X: x}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Condition, error) {
	switch p.tok.kind {
	case tokIndex:
		if len(p.tok.text) > 1 && p.tok.text[0] == '0' {
			return nil, p.errorf(ErrSyntax, "leading zero in index %s", p.tok.text)
		}

		idx, err := strconv.Atoi(p.tok.text)
		if err != nil || idx >= p.n {
			return nil, p.errorf(ErrIndexOutOfRange, "%s with %d required domains", p.tok.text, p.n)
		}

		p.next()

		return Index(idx), nil

	case tokTrue:
		p.next()
		return Literal(true), nil

	case tokFalse:
		p.next()
		return Literal(false), nil

	case tokLParen:
		p.next()

		c, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if p.tok.kind != tokRParen {
			return nil, p.errorf(ErrSyntax, "expected \")\"")
		}

		p.next()

		return c, nil

	case tokEOF:
		return nil, p.errorf(ErrSyntax, "unexpected end of expression")
	}

	return nil, p.errorf(ErrSyntax, "unexpected %q", p.tok.text)
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' }
