package expr

import (
	"fmt"
	"strconv"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

const maxDepth = 200

type parser struct {
	toks   []token
	pos    int
	depth  int
	params []string
	index  map[string]int
}

// Parse builds the syntax tree of src and returns it with the free
// parameters in encounter order.
func Parse(src string) (Node, []string, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{toks: toks, index: make(map[string]int)}

	n, err := p.parseExpr()
	if err != nil {
		return nil, nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		if tok.kind == tokRParen {
			return nil, nil, p.errorf(tok, "unmatched ')' at position %d", tok.pos)
		}
		return nil, nil, p.errorf(tok, "unexpected token '%s' at position %d after expression", tok.text, tok.pos)
	}
	return n, p.params, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &dynamo.CompileError{Pos: tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseExpr() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorf(p.peek(), "expression nested too deeply")
	}

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokPlus || k == tokMinus; k = p.peek().kind {
		op := p.advance().text[0]
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokStar || k == tokSlash; k = p.peek().kind {
		op := p.advance().text[0]
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorf(p.peek(), "expression nested too deeply")
	}

	switch p.peek().kind {
	case tokMinus:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Neg{X: x}, nil
	case tokPlus:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePower()
}

// parsePower recurses through parseUnary for the exponent, which makes ^
// right-associative and lets it bind tighter than a leading minus.
func (p *parser) parsePower() (Node, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCaret {
		return base, nil
	}
	p.advance()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Pow{Base: base, Exp: exp}, nil
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.peek()

	switch tok.kind {
	case tokNum:
		p.advance()
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.errorf(tok, "malformed number '%s' at position %d", tok.text, tok.pos)
		}
		return &Num{Text: tok.text, Value: v}, nil

	case tokIdent:
		p.advance()
		return p.parseIdent(tok)

	case tokLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf(p.peek(), "expected ')' to close '(' at position %d", tok.pos)
		}
		p.advance()
		return inner, nil

	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of expression")
	}

	return nil, p.errorf(tok, "unexpected token '%s' at position %d", tok.text, tok.pos)
}

func (p *parser) parseIdent(tok token) (Node, error) {
	name := tok.text

	if IsFunction(name) {
		if p.peek().kind != tokLParen {
			return nil, p.errorf(tok, "expected '(' after function '%s' at position %d", name, tok.pos)
		}
		return p.parseCall(tok)
	}

	if lit, ok := constants[name]; ok {
		v, _ := strconv.ParseFloat(lit, 64)
		return &Const{Name: name, Text: lit, Value: v}, nil
	}

	if variables[name] {
		return &Var{Name: name}, nil
	}

	idx, ok := p.index[name]
	if !ok {
		idx = len(p.params)
		p.index[name] = idx
		p.params = append(p.params, name)
	}
	return &Param{Name: name, Index: idx}, nil
}

func (p *parser) parseCall(tok token) (Node, error) {
	fn := tok.text
	if alias, ok := aliases[fn]; ok {
		fn = alias
	}
	p.advance() // (

	var args []Node
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().kind != tokComma {
			break
		}
		p.advance()
	}

	if p.peek().kind != tokRParen {
		return nil, p.errorf(p.peek(), "expected ')' after %s(", tok.text)
	}
	p.advance()

	ar := functions[fn]
	if len(args) < ar.min || len(args) > ar.max {
		want := fmt.Sprintf("%d", ar.min)
		if ar.max != ar.min {
			want = fmt.Sprintf("%d or %d", ar.min, ar.max)
		}
		return nil, p.errorf(tok, "%s expects %s argument(s), got %d", tok.text, want, len(args))
	}
	return &Call{Fn: fn, Args: args}, nil
}
