package parser

import (
	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// unaryTestOps are the `[[ ]]` file/string tests taking a single operand.
var unaryTestOps = map[string]bool{
	"-e": true, "-f": true, "-d": true, "-r": true, "-w": true, "-x": true,
	"-s": true, "-z": true, "-n": true, "-L": true, "-h": true, "-p": true,
	"-S": true, "-b": true, "-c": true, "-g": true, "-u": true, "-k": true,
	"-O": true, "-G": true, "-N": true, "-o": true, "-v": true,
}

// binaryTestOps are the `[[ ]]` comparisons spelled as a WORD token
// (string equality/inequality, regex match, numeric and file comparisons).
// `<` and `>` are handled separately in tryConsumeBinaryTestOperator since
// the lexer, having no bracket-aware mode, still reports them as the LESS
// and GREAT redirection tokens.
var binaryTestOps = map[string]bool{
	"==": true, "=": true, "!=": true, "=~": true,
	"-eq": true, "-ne": true, "-lt": true, "-le": true, "-gt": true, "-ge": true,
	"-nt": true, "-ot": true, "-ef": true,
}

// parseTestOr parses the lowest-precedence level of a `[[ ]]` expression:
// `||`-joined terms, left-associative.
func (p *Parser) parseTestOr() (ast.TestCondition, error) {
	left, err := p.parseTestAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OR_OR) {
		p.Advance()
		p.skipLineContinuations()
		right, err := p.parseTestAnd()
		if err != nil {
			return nil, err
		}
		t := &ast.LogicalTest{Operator: "||", Left: left, Right: right}
		p.setId(t)
		p.setSpan(t, token.Span{Start: left.Span().Start, End: right.Span().End})
		left = t
	}
	return left, nil
}

// parseTestAnd parses `&&`-joined terms, binding tighter than `||`.
func (p *Parser) parseTestAnd() (ast.TestCondition, error) {
	left, err := p.parseTestUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.AND_AND) {
		p.Advance()
		p.skipLineContinuations()
		right, err := p.parseTestUnary()
		if err != nil {
			return nil, err
		}
		t := &ast.LogicalTest{Operator: "&&", Left: left, Right: right}
		p.setId(t)
		p.setSpan(t, token.Span{Start: left.Span().Start, End: right.Span().End})
		left = t
	}
	return left, nil
}

// parseTestUnary handles a prefix `!`, which binds tighter than both `&&`
// and `||` and may stack (`! ! -f x`).
func (p *Parser) parseTestUnary() (ast.TestCondition, error) {
	if p.at(token.BANG) {
		bang := p.Advance()
		operand, err := p.parseTestUnary()
		if err != nil {
			return nil, err
		}
		t := &ast.LogicalTest{Operator: "!", Right: operand}
		p.setId(t)
		p.setSpan(t, token.Span{Start: bang.Span.Start, End: operand.Span().End})
		return t, nil
	}
	return p.parseTestPrimary()
}

// parseTestPrimary parses a parenthesized sub-expression, a unary test, or
// an operand optionally followed by a binary comparison (falling back to a
// bare StringTest, the implicit `-n` test, when no comparison follows).
func (p *Parser) parseTestPrimary() (ast.TestCondition, error) {
	if p.at(token.LPAREN) {
		p.Advance()
		inner, err := p.parseTestOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "test expression"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	if p.atAny(token.WORD, token.NAME) && unaryTestOps[p.cur().Lexeme] {
		opTok := p.Advance()
		operand, err := p.parseTestOperand()
		if err != nil {
			return nil, err
		}
		t := &ast.UnaryTest{Operator: opTok.Lexeme, Operand: operand}
		p.setId(t)
		p.setSpan(t, token.Span{Start: opTok.Span.Start, End: operand.Span().End})
		return t, nil
	}

	left, err := p.parseTestOperand()
	if err != nil {
		return nil, err
	}

	if opLexeme, ok := p.tryConsumeBinaryTestOperator(); ok {
		right, err := p.parseTestOperand()
		if err != nil {
			return nil, err
		}
		t := &ast.BinaryTest{Operator: opLexeme, Left: left, Right: right}
		p.setId(t)
		p.setSpan(t, token.Span{Start: left.Span().Start, End: right.Span().End})
		return t, nil
	}

	t := &ast.StringTest{Operand: left}
	p.setId(t)
	p.setSpan(t, left.Span())
	return t, nil
}

// tryConsumeBinaryTestOperator consumes the current token if it spells a
// `[[ ]]` binary comparison, returning its canonical operator text.
func (p *Parser) tryConsumeBinaryTestOperator() (string, bool) {
	switch p.cur().Kind {
	case token.LESS:
		p.Advance()
		return "<", true
	case token.GREAT:
		p.Advance()
		return ">", true
	case token.WORD, token.NAME:
		if binaryTestOps[p.cur().Lexeme] {
			return p.Advance().Lexeme, true
		}
	}
	return "", false
}

// parseTestOperand consumes one word-or-expansion operand of a unary or
// binary test.
func (p *Parser) parseTestOperand() (*ast.Word, error) {
	if !p.atWordLikeStart() {
		return nil, p.fail(diag.ErrUnexpectedToken, "test expression", "expected an operand")
	}
	return p.parseWordLike()
}
