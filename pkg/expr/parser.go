package expr

import "fmt"

// AST node variants. The tree is closed: literals, function calls, the
// unary `not`, and binary operators.
type node interface {
	nodePos() int
}

type literalNode struct {
	val Value
	pos int
}

func (n *literalNode) nodePos() int { return n.pos }

type callNode struct {
	name string
	args []node
	pos  int
}

func (n *callNode) nodePos() int { return n.pos }

type notNode struct {
	operand node
	pos     int
}

func (n *notNode) nodePos() int { return n.pos }

type binaryOp int

const (
	opAnd binaryOp = iota
	opOr
	opEq
	opNe
	opIn
	opNotIn
)

func (o binaryOp) String() string {
	switch o {
	case opAnd:
		return "and"
	case opOr:
		return "or"
	case opEq:
		return "=="
	case opNe:
		return "!="
	case opIn:
		return "in"
	case opNotIn:
		return "not in"
	}

	return "?"
}

type binaryNode struct {
	lhs node
	rhs node
	op  binaryOp
	pos int
}

func (n *binaryNode) nodePos() int { return n.pos }

// parser is a recursive-descent parser with conventional precedence:
// or < and < not < comparison (==, !=, in, not in).
type parser struct {
	input  string
	tokens []token
	i      int
}

// parse builds the AST for a full expression, requiring all input to be
// consumed.
func parse(input string) (node, error) {
	tokens, err := scan(input)
	if err != nil {
		return nil, err
	}

	p := &parser{input: input, tokens: tokens}

	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.peek().typ != tokenEOF {
		return nil, p.errorf("unexpected %s", p.peek().typ)
	}

	return n, nil
}

// Check parses an expression without evaluating it, reporting syntax errors.
// Configuration validation uses this to reject malformed predicates and
// template calls before any rule is evaluated.
func Check(input string) error {
	_, err := parse(input)

	return err
}

func (p *parser) peek() token {
	return p.tokens[p.i]
}

func (p *parser) next() token {
	t := p.tokens[p.i]
	if t.typ != tokenEOF {
		p.i++
	}

	return t
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{
		Input: p.input,
		Pos:   p.peek().pos,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func (p *parser) parseOr() (node, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.peek().typ == tokenOr {
		pos := p.next().pos

		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		lhs = &binaryNode{op: opOr, lhs: lhs, rhs: rhs, pos: pos}
	}

	return lhs, nil
}

func (p *parser) parseAnd() (node, error) {
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.peek().typ == tokenAnd {
		pos := p.next().pos

		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		lhs = &binaryNode{op: opAnd, lhs: lhs, rhs: rhs, pos: pos}
	}

	return lhs, nil
}

func (p *parser) parseNot() (node, error) {
	// `not` binds looser than comparisons, so `not x in y` negates the
	// membership test. The infix `not in` form is handled in
	// parseComparison.
	if p.peek().typ == tokenNot && p.tokens[p.i+1].typ != tokenIn {
		pos := p.next().pos

		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return &notNode{operand: operand, pos: pos}, nil
	}

	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		var op binaryOp

		switch p.peek().typ {
		case tokenEq:
			op = opEq
		case tokenNe:
			op = opNe
		case tokenIn:
			op = opIn
		case tokenNot:
			if p.tokens[p.i+1].typ != tokenIn {
				return nil, p.errorf(`expected "in" after "not"`)
			}

			op = opNotIn
			p.next() // Consume `not`; `in` is consumed below.
		default:
			return lhs, nil
		}

		pos := p.next().pos

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		lhs = &binaryNode{op: op, lhs: lhs, rhs: rhs, pos: pos}
	}
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()

	switch t.typ {
	case tokenString:
		p.next()

		return &literalNode{val: String(t.text), pos: t.pos}, nil

	case tokenInt:
		p.next()

		return &literalNode{val: Int(t.num), pos: t.pos}, nil

	case tokenTrue:
		p.next()

		return &literalNode{val: Bool(true), pos: t.pos}, nil

	case tokenFalse:
		p.next()

		return &literalNode{val: Bool(false), pos: t.pos}, nil

	case tokenLParen:
		p.next()

		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if p.peek().typ != tokenRParen {
			return nil, p.errorf(`expected ")"`)
		}
		p.next()

		return inner, nil

	case tokenIdent:
		return p.parseCall()
	}

	return nil, p.errorf("unexpected %s", t.typ)
}

// parseCall parses name(arg, ...). Bare identifiers are rejected: the
// language has no variables, only function calls.
func (p *parser) parseCall() (node, error) {
	name := p.next()

	if p.peek().typ != tokenLParen {
		return nil, p.errorf(`expected "(" after %q (the language has no variables)`, name.text)
	}
	p.next()

	call := &callNode{name: name.text, pos: name.pos}

	if p.peek().typ == tokenRParen {
		p.next()

		return call, nil
	}

	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		call.args = append(call.args, arg)

		switch p.peek().typ {
		case tokenComma:
			p.next()
		case tokenRParen:
			p.next()

			return call, nil
		default:
			return nil, p.errorf(`expected "," or ")" in arguments of %q`, name.text)
		}
	}
}
