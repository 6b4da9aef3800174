package parser

import (
	"github.com/jchip/safeshell/internal/arith"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// parseArithmeticText hands raw arithmetic text (the stripped contents of
// a `$(( … ))` or `(( … ))` construct) to the arithmetic Pratt parser,
// sharing this parser's id generator and position map so every node it
// produces is addressable from the same PositionMap as the rest of the
// tree.
func (p *Parser) parseArithmeticText(text string, basePos token.Position) (ast.ArithmeticExpression, error) {
	return arith.Parse(text, basePos, &p.gen, p.posMap)
}
