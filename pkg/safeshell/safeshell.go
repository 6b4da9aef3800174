// Package safeshell is the public facade over SafeShell's lexer, grammar
// parser, arithmetic parser and dialect model. It mirrors the thin
// internal/-plus-pkg/ split the teacher used for its own embeddable
// package (internal does the work, pkg/safeshell is the stable surface
// third-party callers import).
package safeshell

import (
	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/internal/dialect"
	"github.com/jchip/safeshell/internal/parser"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// Shell re-exports the dialect enum so callers never need to import
// internal/dialect directly.
type Shell = dialect.Shell

const (
	Bash = dialect.Bash
	Sh   = dialect.Sh
	Dash = dialect.Dash
	Ksh  = dialect.Ksh
	Zsh  = dialect.Zsh
)

// Diagnostic re-exports diag.Note under this package's vocabulary.
type Diagnostic = diag.Note

// Result bundles everything a successful or recovered parse produces: the
// program tree, the id→span side table, the dialect and capability table
// the parser was configured with, and whatever diagnostics were recorded
// along the way. These are the companion accessors (getPositionMap/
// getShell/getCapabilities/hasCapability) spec §6 describes on a Parser
// instance, surfaced here instead since internal/parser.Parser itself
// isn't importable outside this module.
type Result struct {
	Program      *ast.Program
	Positions    *ast.PositionMap
	Shell        Shell
	Capabilities dialect.Capabilities
	Diagnostics  []Diagnostic
}

// HasCapability reports whether the dialect this Result was parsed under
// supports a named feature (see internal/dialect.CheckFeature for the name
// vocabulary).
func (r Result) HasCapability(name string) bool {
	return dialect.CheckFeature(r.Shell, name, token.Span{}, nil)
}

// Parse runs strict-mode parsing for the given dialect: the first
// unrecoverable syntax problem is returned as an error (a *parser.SyntaxError)
// instead of being recorded as a diagnostic.
func Parse(source string, shell Shell) (Result, error) {
	program, p, err := parser.Parse(source, shell)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Program:      program,
		Positions:    p.GetPositionMap(),
		Shell:        p.GetShell(),
		Capabilities: p.GetCapabilities(),
		Diagnostics:  p.Diagnostics(),
	}, nil
}

// ParseWithRecovery never fails on a syntax error: it resynchronizes at the
// next statement boundary and keeps going, recording every recovered
// problem as a diagnostic instead.
func ParseWithRecovery(source string, shell Shell) Result {
	program, p := parser.ParseWithRecovery(source, shell)
	return Result{
		Program:      program,
		Positions:    p.GetPositionMap(),
		Shell:        p.GetShell(),
		Capabilities: p.GetCapabilities(),
		Diagnostics:  p.Diagnostics(),
	}
}

// ParseArithmetic parses a standalone arithmetic expression (the contents
// of a `$(( ... ))` or `(( ... ))`, without the delimiters) via the
// Pratt parser directly.
func ParseArithmetic(source string) (ast.ArithmeticExpression, error) {
	return parser.ParseArithmetic(source)
}

// DetectShell determines the dialect a script was written for, preferring
// a `#!` shebang and falling back to a `# shell: name` (or `shelltype:` /
// `safesh-shell:`) directive comment, per spec §4.7.
func DetectShell(source string) (Shell, bool) {
	return dialect.DetectShell(source, 10)
}

// CapabilitiesFor returns the capability table for a dialect, exposed so
// callers can check feature support without a parse in hand.
func CapabilitiesFor(shell Shell) dialect.Capabilities {
	return dialect.CapabilitiesFor(shell)
}

// FormatDiagnostic renders a single diagnostic the way the CLI does.
func FormatDiagnostic(d Diagnostic) string {
	return diag.FormatDiagnostic(d)
}

// Span and Position are re-exported so callers walking a Result's AST can
// reference source locations without importing pkg/token directly.
type Span = token.Span
type Position = token.Position
