package arith

import (
	"fmt"
	"strconv"

	"github.com/jchip/safeshell/internal/paramexpand"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// ParseError is returned for any arithmetic syntax failure other than an
// unrecognized character (which surfaces as *LexError).
type ParseError struct {
	Message string
	Offset  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Message, e.Offset)
}

// Precedence levels per spec §4.3's ascending table.
const (
	precLowest     = 0
	precComma      = 1
	precAssign     = 2
	precTernary    = 3
	precOrOr       = 4
	precAndAnd     = 5
	precBitOr      = 6
	precBitXor     = 7
	precBitAnd     = 8
	precEquality   = 9
	precComparison = 10
	precShift      = 11
	precAdditive   = 12
	precMultiply   = 13
	precPower      = 14
	precPrefix     = 15
)

func precedenceOf(k kind) int {
	switch k {
	case tComma:
		return precComma
	case tAssign, tPlusEq, tMinusEq, tStarEq, tSlashEq, tPercentEq, tShlEq, tShrEq, tAmpEq, tPipeEq, tCaretEq:
		return precAssign
	case tQuestion:
		return precTernary
	case tOrOr:
		return precOrOr
	case tAndAnd:
		return precAndAnd
	case tPipe:
		return precBitOr
	case tCaret:
		return precBitXor
	case tAmp:
		return precBitAnd
	case tEqEq, tNe:
		return precEquality
	case tLt, tGt, tLe, tGe:
		return precComparison
	case tShl, tShr:
		return precShift
	case tPlus, tMinus:
		return precAdditive
	case tStar, tSlash, tPercent:
		return precMultiply
	case tStarStar:
		return precPower
	default:
		return precLowest
	}
}

func isAssignOp(k kind) bool {
	switch k {
	case tAssign, tPlusEq, tMinusEq, tStarEq, tSlashEq, tPercentEq, tShlEq, tShrEq, tAmpEq, tPipeEq, tCaretEq:
		return true
	default:
		return false
	}
}

// parser is a precedence-climbing parser over a fully materialized token
// slice — arithmetic bodies are short, so eager tokenization (failing fast
// on the first unrecognized character) is simpler than a streaming cursor.
type parser struct {
	toks   []tok
	pos    int
	gen    *ast.IdGenerator
	posMap *ast.PositionMap
	base   token.Position
}

// Parse turns the stripped contents of a `$(( … ))` / `(( … ))` construct
// into one ArithmeticExpression. basePos is the position of the first rune
// of input within the original source, used to place every node's Span.
func Parse(input string, basePos token.Position, gen *ast.IdGenerator, posMap *ast.PositionMap) (ast.ArithmeticExpression, error) {
	lx := newLexer(input)
	var toks []tok
	for {
		t, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tEOF {
			break
		}
	}

	p := &parser{toks: toks, gen: gen, posMap: posMap, base: basePos}
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tEOF {
		return nil, &ParseError{Message: fmt.Sprintf("Unexpected token %q", p.cur().text), Offset: p.cur().offset}
	}
	return expr, nil
}

func (p *parser) cur() tok {
	return p.toks[p.pos]
}

func (p *parser) advance() tok {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) posAt(offset int) token.Position {
	return token.Position{Line: p.base.Line, Column: p.base.Column + offset, Offset: p.base.Offset + offset}
}

func (p *parser) spanFrom(startOffset int) token.Span {
	end := p.toks[p.pos].offset
	if p.pos > 0 {
		end = p.toks[p.pos-1].offset + len(p.toks[p.pos-1].text)
	}
	return token.Span{Start: p.posAt(startOffset), End: p.posAt(end)}
}

func (p *parser) register(n ast.Node) {
	p.posMap.Set(n.Id(), n.Span())
}

func (p *parser) parseExpression(minPrec int) (ast.ArithmeticExpression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		tk := p.cur()
		prec := precedenceOf(tk.kind)
		if prec == precLowest || prec < minPrec {
			break
		}
		switch {
		case tk.kind == tQuestion:
			left, err = p.parseTernary(left)
		case isAssignOp(tk.kind):
			left, err = p.parseAssignment(left, tk)
		default:
			left, err = p.parseBinary(left, tk, prec)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parseBinary(left ast.ArithmeticExpression, op tok, prec int) (ast.ArithmeticExpression, error) {
	startOffset := left.Span().Start.Offset - p.base.Offset
	p.advance()
	nextMin := prec + 1
	if op.kind == tStarStar {
		nextMin = prec // right-associative
	}
	right, err := p.parseExpression(nextMin)
	if err != nil {
		return nil, err
	}
	node := &ast.BinaryArithmeticExpression{Operator: op.text, Left: left, Right: right}
	node.SetId(p.gen.Next())
	node.SetSpan(p.spanFrom(startOffset))
	p.register(node)
	return node, nil
}

func (p *parser) parseAssignment(left ast.ArithmeticExpression, op tok) (ast.ArithmeticExpression, error) {
	varRef, ok := left.(*ast.VariableReference)
	if !ok {
		return nil, &ParseError{Message: "assignment target must be a variable", Offset: op.offset}
	}
	startOffset := left.Span().Start.Offset - p.base.Offset
	p.advance()
	right, err := p.parseExpression(precAssign) // right-associative: same precedence
	if err != nil {
		return nil, err
	}
	node := &ast.AssignmentExpression{Operator: op.text, Left: varRef, Right: right}
	node.SetId(p.gen.Next())
	node.SetSpan(p.spanFrom(startOffset))
	p.register(node)
	return node, nil
}

func (p *parser) parseTernary(left ast.ArithmeticExpression) (ast.ArithmeticExpression, error) {
	startOffset := left.Span().Start.Offset - p.base.Offset
	p.advance() // '?'
	consequent, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tColon {
		return nil, &ParseError{Message: "expected ':' in ternary expression", Offset: p.cur().offset}
	}
	p.advance() // ':'
	alternate, err := p.parseExpression(precTernary)
	if err != nil {
		return nil, err
	}
	node := &ast.ConditionalArithmeticExpression{Test: left, Then: consequent, Else: alternate}
	node.SetId(p.gen.Next())
	node.SetSpan(p.spanFrom(startOffset))
	p.register(node)
	return node, nil
}

func (p *parser) parsePrefix() (ast.ArithmeticExpression, error) {
	tk := p.cur()
	switch tk.kind {
	case tNumber:
		p.advance()
		return p.finishPrimary(p.numberLiteral(tk))

	case tIdent:
		p.advance()
		node := &ast.VariableReference{Name: tk.text}
		node.SetId(p.gen.Next())
		node.SetSpan(p.spanSingle(tk))
		p.register(node)
		return p.maybePostfix(node, tk.offset)

	case tParamExpansion:
		p.advance()
		inner := tk.text[2 : len(tk.text)-1] // strip "${" and "}"
		node := paramexpand.Parse(inner, p.posAt(tk.offset+2), p.gen, p.posMap)
		return node, nil

	case tLParen:
		p.advance()
		startOffset := tk.offset
		inner, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tRParen {
			return nil, &ParseError{Message: "expected ')'", Offset: p.cur().offset}
		}
		p.advance()
		node := &ast.GroupedArithmeticExpression{Inner: inner}
		node.SetId(p.gen.Next())
		node.SetSpan(p.spanFrom(startOffset))
		p.register(node)
		return node, nil

	case tPlus, tMinus, tBang, tTilde:
		p.advance()
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}
		node := &ast.UnaryArithmeticExpression{Operator: tk.text, Operand: operand, Prefix: true}
		node.SetId(p.gen.Next())
		node.SetSpan(p.spanFrom(tk.offset))
		p.register(node)
		return node, nil

	case tIncr, tDecr:
		p.advance()
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}
		node := &ast.UnaryArithmeticExpression{Operator: tk.text, Operand: operand, Prefix: true}
		node.SetId(p.gen.Next())
		node.SetSpan(p.spanFrom(tk.offset))
		p.register(node)
		return node, nil

	default:
		return nil, &ParseError{Message: fmt.Sprintf("Unexpected token %q", tk.text), Offset: tk.offset}
	}
}

// maybePostfix wraps an identifier primary in a postfix UnaryArithmeticExpression
// when immediately followed by `++`/`--`, per §4.3's prefix-parsing rule.
func (p *parser) maybePostfix(operand ast.ArithmeticExpression, startOffset int) (ast.ArithmeticExpression, error) {
	if p.cur().kind == tIncr || p.cur().kind == tDecr {
		op := p.advance()
		node := &ast.UnaryArithmeticExpression{Operator: op.text, Operand: operand, Prefix: false}
		node.SetId(p.gen.Next())
		node.SetSpan(p.spanFrom(startOffset))
		p.register(node)
		return node, nil
	}
	return operand, nil
}

func (p *parser) finishPrimary(node ast.ArithmeticExpression, startOffset int) (ast.ArithmeticExpression, error) {
	return p.maybePostfix(node, startOffset)
}

func (p *parser) numberLiteral(tk tok) (ast.ArithmeticExpression, int) {
	value := parseIntLiteral(tk.text)
	node := &ast.NumberLiteral{Value: value, Raw: tk.text}
	node.SetId(p.gen.Next())
	node.SetSpan(p.spanSingle(tk))
	p.register(node)
	return node, tk.offset
}

func (p *parser) spanSingle(tk tok) token.Span {
	start := p.posAt(tk.offset)
	end := p.posAt(tk.offset + len(tk.text))
	return token.Span{Start: start, End: end}
}

// parseIntLiteral decodes decimal, 0x/0X hex, and leading-zero octal
// integer literals. Digits the base does not allow (the lexer accepts 8
// and 9 after a leading zero, e.g. "09") and out-of-range values fall back
// to 0 rather than panicking.
func parseIntLiteral(raw string) int64 {
	if len(raw) > 1 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X') {
		v, err := strconv.ParseInt(raw[2:], 16, 64)
		if err != nil {
			return 0
		}
		return v
	}
	if len(raw) > 1 && raw[0] == '0' {
		v, err := strconv.ParseInt(raw, 8, 64)
		if err != nil {
			return 0
		}
		return v
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
