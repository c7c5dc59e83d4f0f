// Package amount evaluates user-entered money amounts. An amount is either a
// decimal literal or a small arithmetic expression such as "10+20.10" or
// "(12.50 * 3) - 4".
//
// The grammar is closed:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = [ "-" | "+" ] unary | factor
//	factor = number | "(" expr ")"
//	number = digits [ "." digits ] | "." digits
//
// Nothing outside it is accepted; there is no identifier or function syntax.
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxInputLength bounds the accepted expression text.
	MaxInputLength = 256
	// maxDepth bounds parenthesis and unary nesting.
	maxDepth = 32
	// divisionPrecision is the scale used for intermediate quotients.
	divisionPrecision = 10
)

// ErrInvalidExpression is returned for any input outside the grammar, or
// whose value cannot be stored.
var ErrInvalidExpression = errors.New("invalid amount expression")

// maxAbs is the exclusive bound of a numeric(12,2) column.
var maxAbs = decimal.New(1, 10)

// Evaluate parses input and returns its value rounded to 2 decimal places.
func Evaluate(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty input", ErrInvalidExpression)
	}
	if len(s) > MaxInputLength {
		return decimal.Zero, fmt.Errorf("%w: longer than %d characters", ErrInvalidExpression, MaxInputLength)
	}

	p := &parser{src: s}
	v, err := p.parseExpr(0)
	if err != nil {
		return decimal.Zero, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return decimal.Zero, p.errorf("unexpected %q", p.src[p.pos])
	}

	v = v.Round(2)
	if v.Abs().GreaterThanOrEqual(maxAbs) {
		return decimal.Zero, fmt.Errorf("%w: value out of range", ErrInvalidExpression)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at position %d", ErrInvalidExpression, fmt.Sprintf(format, args...), p.pos)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) parseExpr(depth int) (decimal.Decimal, error) {
	left, err := p.parseTerm(depth)
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm(depth)
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Add(right)
		case '-':
			p.pos++
			right, err := p.parseTerm(depth)
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm(depth int) (decimal.Decimal, error) {
	left, err := p.parseUnary(depth)
	if err != nil {
		return decimal.Zero, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary(depth)
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Mul(right)
		case '/':
			p.pos++
			right, err := p.parseUnary(depth)
			if err != nil {
				return decimal.Zero, err
			}
			if right.IsZero() {
				return decimal.Zero, p.errorf("division by zero")
			}
			left = left.DivRound(right, divisionPrecision)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary(depth int) (decimal.Decimal, error) {
	if depth > maxDepth {
		return decimal.Zero, p.errorf("expression nested too deeply")
	}
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.parseUnary(depth + 1)
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	case '+':
		p.pos++
		return p.parseUnary(depth + 1)
	}
	return p.parseFactor(depth)
}

func (p *parser) parseFactor(depth int) (decimal.Decimal, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseExpr(depth + 1)
		if err != nil {
			return decimal.Zero, err
		}
		if p.peek() != ')' {
			return decimal.Zero, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case isDigit(c) || c == '.':
		return p.parseNumber()
	case c == 0:
		return decimal.Zero, p.errorf("unexpected end of input")
	default:
		return decimal.Zero, p.errorf("unexpected %q", c)
	}
}

func (p *parser) parseNumber() (decimal.Decimal, error) {
	start := p.pos
	digits := 0
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
		digits++
	}
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		frac := 0
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
			frac++
		}
		if frac == 0 {
			return decimal.Zero, p.errorf("expected digits after decimal point")
		}
		digits += frac
	}
	if digits == 0 {
		return decimal.Zero, p.errorf("expected number")
	}
	text := p.src[start:p.pos]
	if text[0] == '.' {
		text = "0" + text
	}
	v, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, p.errorf("malformed number %q", text)
	}
	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
