package paramexpand

import (
	"testing"

	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

func parse(t *testing.T, inner string) *ast.ParameterExpansion {
	t.Helper()
	var gen ast.IdGenerator
	posMap := ast.NewPositionMap()
	return Parse(inner, token.Position{Line: 1, Column: 1, Offset: 0}, &gen, posMap)
}

func TestPlainName(t *testing.T) {
	node := parse(t, "foo")
	if node.Parameter != "foo" {
		t.Fatalf("expected parameter %q, got %q", "foo", node.Parameter)
	}
	if node.Indirect || node.HasSubscript || node.HasModifier {
		t.Fatalf("unexpected flags on plain name: %+v", node)
	}
}

func TestSpecialParameters(t *testing.T) {
	for _, name := range []string{"@", "*", "#", "?", "!", "-", "$"} {
		node := parse(t, name)
		if node.Parameter != name {
			t.Fatalf("special parameter %q parsed as %q", name, node.Parameter)
		}
	}
}

func TestPositionalParameter(t *testing.T) {
	node := parse(t, "1")
	if node.Parameter != "1" {
		t.Fatalf("expected positional parameter %q, got %q", "1", node.Parameter)
	}
}

func TestLengthQuery(t *testing.T) {
	node := parse(t, "#arr")
	if node.Parameter != "#arr" {
		t.Fatalf("expected length-query parameter %q, got %q", "#arr", node.Parameter)
	}
}

func TestLengthQueryOfPositionalParameter(t *testing.T) {
	node := parse(t, "#1")
	if node.Parameter != "#1" {
		t.Fatalf("expected length-query parameter %q, got %q", "#1", node.Parameter)
	}
	if node.HasModifier {
		t.Fatalf("the positional digit must not be misread as a modifier, got %+v", node)
	}
}

func TestLengthQueryOfSpecialParameter(t *testing.T) {
	node := parse(t, "#-")
	if node.Parameter != "#-" {
		t.Fatalf("expected length-query parameter %q, got %q", "#-", node.Parameter)
	}
	if node.HasModifier {
		t.Fatalf("the special parameter char must not be misread as a modifier, got %+v", node)
	}
}

func TestIndirection(t *testing.T) {
	node := parse(t, "!ref")
	if !node.Indirect {
		t.Fatalf("expected Indirect == true")
	}
	if node.Parameter != "ref" {
		t.Fatalf("expected parameter %q, got %q", "ref", node.Parameter)
	}
}

func TestBangAloneIsNotIndirection(t *testing.T) {
	node := parse(t, "!")
	if node.Indirect {
		t.Fatalf("bare '!' (the last-background-pid special parameter) must not be treated as indirection")
	}
	if node.Parameter != "!" {
		t.Fatalf("expected parameter %q, got %q", "!", node.Parameter)
	}
}

func TestSubscript(t *testing.T) {
	node := parse(t, "arr[0]")
	if node.Parameter != "arr" {
		t.Fatalf("expected parameter %q, got %q", "arr", node.Parameter)
	}
	if !node.HasSubscript || node.Subscript != "[0]" {
		t.Fatalf("expected subscript [0], got %q (has=%v)", node.Subscript, node.HasSubscript)
	}
}

func TestSubscriptWithAtSign(t *testing.T) {
	node := parse(t, "arr[@]")
	if node.Subscript != "[@]" {
		t.Fatalf("expected subscript [@], got %q", node.Subscript)
	}
}

func TestTwoCharModifier(t *testing.T) {
	node := parse(t, "x:-default")
	if !node.HasModifier || node.Modifier != ":-" {
		t.Fatalf("expected modifier ':-', got %q (has=%v)", node.Modifier, node.HasModifier)
	}
	if node.ModifierArg == nil || node.ModifierArg.Value != "default" {
		t.Fatalf("expected modifier arg %q, got %+v", "default", node.ModifierArg)
	}
}

func TestOneCharModifier(t *testing.T) {
	node := parse(t, "x#prefix")
	if !node.HasModifier || node.Modifier != "#" {
		t.Fatalf("expected modifier '#', got %q (has=%v)", node.Modifier, node.HasModifier)
	}
	if node.ModifierArg == nil || node.ModifierArg.Value != "prefix" {
		t.Fatalf("expected modifier arg %q, got %+v", "prefix", node.ModifierArg)
	}
}

func TestModifierWithNoArg(t *testing.T) {
	node := parse(t, "x-")
	if !node.HasModifier || node.Modifier != "-" {
		t.Fatalf("expected modifier '-', got %q", node.Modifier)
	}
	if node.ModifierArg != nil {
		t.Fatalf("expected no modifier arg, got %+v", node.ModifierArg)
	}
}

func TestSubscriptAndModifierTogether(t *testing.T) {
	node := parse(t, "arr[1]:-0")
	if !node.HasSubscript || node.Subscript != "[1]" {
		t.Fatalf("expected subscript [1], got %q", node.Subscript)
	}
	if !node.HasModifier || node.Modifier != ":-" {
		t.Fatalf("expected modifier ':-', got %q", node.Modifier)
	}
}
