package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parse converts a textual load expression such as "10*x + 5" or
// "2*sin(0.5*x)" into an Expr. The only free variable allowed is
// PositionVar; multiplication must be explicit (2*x, not 2x).
func Parse(input string) (Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("expr: unexpected %q", p.toks[p.pos].text)
	}
	return e, nil
}

type tokKind int

const (
	tokNum tokKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	val  float64
}

func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case c == '+' || c == '-' || c == '/' || c == '^':
			toks = append(toks, token{kind: tokOp, text: string(c)})
			i++
		case c == '*':
			if i+1 < len(input) && input[i+1] == '*' {
				toks = append(toks, token{kind: tokOp, text: "^"})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "*"})
				i++
			}
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(input) && (input[j] >= '0' && input[j] <= '9' || input[j] == '.') {
				j++
			}
			// scientific notation
			if j < len(input) && (input[j] == 'e' || input[j] == 'E') {
				k := j + 1
				if k < len(input) && (input[k] == '+' || input[k] == '-') {
					k++
				}
				if k < len(input) && input[k] >= '0' && input[k] <= '9' {
					for k < len(input) && input[k] >= '0' && input[k] <= '9' {
						k++
					}
					j = k
				}
			}
			v, err := strconv.ParseFloat(input[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("expr: bad number %q", input[i:j])
			}
			toks = append(toks, token{kind: tokNum, text: input[i:j], val: v})
			i = j
		case unicode.IsLetter(rune(c)):
			j := i
			for j < len(input) && (unicode.IsLetter(rune(input[j])) || unicode.IsDigit(rune(input[j]))) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: strings.ToLower(input[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("expr: unexpected character %q", string(c))
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if t.text == "+" {
			left = Add(left, right)
		} else {
			left = Sub(left, right)
		}
	}
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "*" {
			left = Mul(left, right)
		} else {
			left = Div(left, right)
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	t, ok := p.peek()
	if ok && t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.pos++
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return Neg(e), nil
		}
		return e, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	t, ok := p.peek()
	if !ok || t.kind != tokOp || t.text != "^" {
		return base, nil
	}
	p.pos++
	// right associative
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Pow(base, exp), nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("expr: unexpected end of expression")
	}
	switch t.kind {
	case tokNum:
		p.pos++
		return Num(t.val), nil
	case tokLParen:
		p.pos++
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	case tokIdent:
		p.pos++
		switch t.text {
		case PositionVar:
			return X(), nil
		case "pi":
			return Num(math.Pi), nil
		case "e":
			return Num(math.E), nil
		case "sin", "cos", "exp", "log", "ln", "sqrt":
			if err := p.expect(tokLParen); err != nil {
				return nil, err
			}
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRParen); err != nil {
				return nil, err
			}
			switch t.text {
			case "sin":
				return Sin(arg), nil
			case "cos":
				return Cos(arg), nil
			case "exp":
				return Exp(arg), nil
			case "log", "ln":
				return Log(arg), nil
			default:
				return Sqrt(arg), nil
			}
		}
		return nil, fmt.Errorf("expr: unknown identifier %q (the position variable is %q)", t.text, PositionVar)
	}
	return nil, fmt.Errorf("expr: unexpected %q", t.text)
}

func (p *parser) expect(kind tokKind) error {
	t, ok := p.peek()
	if !ok {
		return fmt.Errorf("expr: unexpected end of expression")
	}
	if t.kind != kind {
		return fmt.Errorf("expr: unexpected %q", t.text)
	}
	p.pos++
	return nil
}
