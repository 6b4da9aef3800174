package ast

import "github.com/jchip/safeshell/pkg/token"

// Word is the single expression type carrying literal text and embedded
// expansions: command names, arguments, here-doc bodies, redirection
// targets, case patterns and array-literal elements are all Words.
//
// Value is the naive concatenation of all parts' literal forms and exists
// for fast equality/prefix comparisons; Parts is the source of truth for
// anything that needs to understand the word's structure.
type Word struct {
	base
	Value        string
	Quoted       bool
	SingleQuoted bool
	Parts        []WordPart
}

// WordPart is the sealed family of constituents that make up a Word.
type WordPart interface {
	Node
	wordPartNode()
}

func (*LiteralPart) wordPartNode()         {}
func (*ParameterExpansion) wordPartNode()  {}
func (*CommandSubstitution) wordPartNode() {}
func (*ArithmeticExpansion) wordPartNode() {}
func (*ProcessSubstitution) wordPartNode() {}
func (*GlobPattern) wordPartNode()         {}

// LiteralPart is a run of literal (already-unescaped) text within a Word.
type LiteralPart struct {
	base
	Text string
}

// ParameterExpansion represents `$name`, `${...}` and the special
// parameters ($#, $?, $!, $@, $*, $-, $0-$9).
//
// Parameter carries the parameter name including any length-query prefix
// (`#`, `#@`, `#*`) and the indirection prefix (`!`) when present.
// Subscript is the verbatim text of a `[...]` subscript, including the
// literal `@`/`*` forms used for whole-array operations.
type ParameterExpansion struct {
	base
	Parameter      string
	Indirect       bool
	Subscript      string
	HasSubscript   bool
	Modifier       string // e.g. ":-", "##", "/" ...
	HasModifier    bool
	ModifierArg    *Word
}

// CommandSubstitution represents `$(...)` or `` `...` ``. Backtick records
// whether the source used backtick form; per spec, the two forms are never
// normalized to one another.
type CommandSubstitution struct {
	base
	Body     string
	Backtick bool
}

// ArithmeticExpansion represents `$((...))`. The enclosed text is parsed by
// the arithmetic Pratt parser (internal/arith) into Expression.
type ArithmeticExpansion struct {
	base
	Expression ArithmeticExpression
}

// ProcessSubstitution represents `<(...)` or `>(...)`.
type ProcessSubstitution struct {
	base
	Direction byte // '<' or '>'
	Body      string
}

// GlobPattern marks a literal run of unquoted glob metacharacters
// (`*`, `?`, `[...]`) left unexpanded — expansion is a runtime concern of
// the interpreter, out of scope here; this node only records that the
// characters were seen as pattern syntax rather than plain literal text.
type GlobPattern struct {
	base
	Text string
}

// ArrayLiteral is the value of `name=(...)`/`name+=(...)` assignments.
type ArrayLiteral struct {
	base
	Elements []*Word
}

// Assignment is one `name=value` pair in a Command's leading-assignment
// list or a CaseStatement-free VariableAssignment.
type Assignment struct {
	Name  string
	Value *Word // nil when Array is non-nil
	Array *ArrayLiteral
	Plus  bool // += form (append)
	Span  token.Span
}
