package arith

import (
	"testing"

	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

func parse(t *testing.T, src string) ast.ArithmeticExpression {
	t.Helper()
	var gen ast.IdGenerator
	posMap := ast.NewPositionMap()
	expr, err := Parse(src, token.Position{Line: 1, Column: 1, Offset: 0}, &gen, posMap)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return expr
}

func TestParseNumberLiteral(t *testing.T) {
	expr := parse(t, "42")
	lit, ok := expr.(*ast.NumberLiteral)
	if !ok {
		t.Fatalf("expected *ast.NumberLiteral, got %T", expr)
	}
	if lit.Value != 42 {
		t.Fatalf("expected value 42, got %d", lit.Value)
	}
}

func TestParseVariableReference(t *testing.T) {
	expr := parse(t, "count")
	ref, ok := expr.(*ast.VariableReference)
	if !ok {
		t.Fatalf("expected *ast.VariableReference, got %T", expr)
	}
	if ref.Name != "count" {
		t.Fatalf("expected name %q, got %q", "count", ref.Name)
	}
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	expr := parse(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.BinaryArithmeticExpression)
	if !ok {
		t.Fatalf("expected top-level BinaryArithmeticExpression, got %T", expr)
	}
	if bin.Operator != "+" {
		t.Fatalf("expected top-level operator '+', got %q", bin.Operator)
	}
	if _, ok := bin.Left.(*ast.NumberLiteral); !ok {
		t.Fatalf("expected left operand to be a literal, got %T", bin.Left)
	}
	rhs, ok := bin.Right.(*ast.BinaryArithmeticExpression)
	if !ok {
		t.Fatalf("expected right operand to be the nested multiplication, got %T", bin.Right)
	}
	if rhs.Operator != "*" {
		t.Fatalf("expected nested operator '*', got %q", rhs.Operator)
	}
}

func TestExponentiationIsRightAssociative(t *testing.T) {
	expr := parse(t, "2 ** 3 ** 2")
	bin, ok := expr.(*ast.BinaryArithmeticExpression)
	if !ok {
		t.Fatalf("expected BinaryArithmeticExpression, got %T", expr)
	}
	if bin.Operator != "**" {
		t.Fatalf("expected '**', got %q", bin.Operator)
	}
	if _, ok := bin.Left.(*ast.NumberLiteral); !ok {
		t.Fatalf("left-associative parse would nest on the left; expected a bare literal, got %T", bin.Left)
	}
	nested, ok := bin.Right.(*ast.BinaryArithmeticExpression)
	if !ok || nested.Operator != "**" {
		t.Fatalf("expected the right operand to be the nested '**' expression, got %T", bin.Right)
	}
}

func TestAdditionIsLeftAssociative(t *testing.T) {
	expr := parse(t, "1 - 2 - 3")
	bin, ok := expr.(*ast.BinaryArithmeticExpression)
	if !ok || bin.Operator != "-" {
		t.Fatalf("expected top-level '-', got %T", expr)
	}
	if _, ok := bin.Left.(*ast.BinaryArithmeticExpression); !ok {
		t.Fatalf("left-associative parse should nest on the left, got %T", bin.Left)
	}
	if _, ok := bin.Right.(*ast.NumberLiteral); !ok {
		t.Fatalf("expected a bare literal on the right, got %T", bin.Right)
	}
}

func TestTernaryExpression(t *testing.T) {
	expr := parse(t, "x ? 1 : 2")
	cond, ok := expr.(*ast.ConditionalArithmeticExpression)
	if !ok {
		t.Fatalf("expected *ast.ConditionalArithmeticExpression, got %T", expr)
	}
	if _, ok := cond.Test.(*ast.VariableReference); !ok {
		t.Fatalf("expected variable test, got %T", cond.Test)
	}
}

func TestAssignmentRequiresVariableTarget(t *testing.T) {
	var gen ast.IdGenerator
	posMap := ast.NewPositionMap()
	_, err := Parse("1 = 2", token.Position{Line: 1, Column: 1, Offset: 0}, &gen, posMap)
	if err == nil {
		t.Fatalf("expected an error assigning to a non-variable target")
	}
}

func TestCompoundAssignment(t *testing.T) {
	expr := parse(t, "x += 1")
	assign, ok := expr.(*ast.AssignmentExpression)
	if !ok {
		t.Fatalf("expected *ast.AssignmentExpression, got %T", expr)
	}
	if assign.Operator != "+=" {
		t.Fatalf("expected operator '+=', got %q", assign.Operator)
	}
	if assign.Left.Name != "x" {
		t.Fatalf("expected left-hand variable 'x', got %q", assign.Left.Name)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	expr := parse(t, "(1 + 2) * 3")
	bin, ok := expr.(*ast.BinaryArithmeticExpression)
	if !ok || bin.Operator != "*" {
		t.Fatalf("expected top-level '*', got %T", expr)
	}
	if _, ok := bin.Left.(*ast.GroupedArithmeticExpression); !ok {
		t.Fatalf("expected grouped left operand, got %T", bin.Left)
	}
}

func TestUnaryMinus(t *testing.T) {
	expr := parse(t, "-5")
	un, ok := expr.(*ast.UnaryArithmeticExpression)
	if !ok {
		t.Fatalf("expected *ast.UnaryArithmeticExpression, got %T", expr)
	}
	if un.Operator != "-" || !un.Prefix {
		t.Fatalf("expected prefix '-', got operator=%q prefix=%v", un.Operator, un.Prefix)
	}
}

func TestPostfixIncrement(t *testing.T) {
	expr := parse(t, "x++")
	un, ok := expr.(*ast.UnaryArithmeticExpression)
	if !ok {
		t.Fatalf("expected *ast.UnaryArithmeticExpression, got %T", expr)
	}
	if un.Operator != "++" || un.Prefix {
		t.Fatalf("expected postfix '++', got operator=%q prefix=%v", un.Operator, un.Prefix)
	}
}

func TestHexAndOctalLiterals(t *testing.T) {
	hex := parse(t, "0x1F")
	lit, ok := hex.(*ast.NumberLiteral)
	if !ok || lit.Value != 31 {
		t.Fatalf("expected hex literal 31, got %#v", hex)
	}

	oct := parse(t, "010")
	lit2, ok := oct.(*ast.NumberLiteral)
	if !ok || lit2.Value != 8 {
		t.Fatalf("expected octal literal 8, got %#v", oct)
	}
}

func TestParameterExpansionInsideArithmetic(t *testing.T) {
	expr := parse(t, "${x:-1} + 1")
	bin, ok := expr.(*ast.BinaryArithmeticExpression)
	if !ok {
		t.Fatalf("expected BinaryArithmeticExpression, got %T", expr)
	}
	if _, ok := bin.Left.(*ast.ParameterExpansion); !ok {
		t.Fatalf("expected left operand to be a ParameterExpansion, got %T", bin.Left)
	}
}

func TestUnrecognizedCharacterIsALexError(t *testing.T) {
	var gen ast.IdGenerator
	posMap := ast.NewPositionMap()
	_, err := Parse("1 @ 2", token.Position{Line: 1, Column: 1, Offset: 0}, &gen, posMap)
	if err == nil {
		t.Fatalf("expected an error for an unrecognized character")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

func TestTrailingJunkIsAParseError(t *testing.T) {
	var gen ast.IdGenerator
	posMap := ast.NewPositionMap()
	_, err := Parse("1 2", token.Position{Line: 1, Column: 1, Offset: 0}, &gen, posMap)
	if err == nil {
		t.Fatalf("expected an error for trailing unconsumed tokens")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}
