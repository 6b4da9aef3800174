// Package diag implements SafeShell's diagnostics subsystem (spec §4.6):
// a severity-channeled collector of parse notes, stable "SSH_NNNN" codes,
// and the "accept but warn" helpers used by the lexer, grammar parser and
// dialect capability model to report problems without aborting the parse.
package diag

import (
	"fmt"
	"strings"

	"github.com/jchip/safeshell/pkg/token"
)

// Severity ranks a diagnostic's importance.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

// String renders the severity for display ("ERROR", "WARNING", ...).
func (s Severity) String() string {
	switch s {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	case Info:
		return "INFO"
	case Hint:
		return "HINT"
	default:
		return "UNKNOWN"
	}
}

// Code is a stable diagnostic identifier, partitioned by range per spec §7:
// 1xxx syntax, 2xxx semantic warnings, 3xxx compatibility, 4xxx style.
type Code string

const (
	ErrUnexpectedToken Code = "SSH_1001"
	ErrUnexpectedEOF   Code = "SSH_1002"
	ErrMissingKeyword  Code = "SSH_1003"
	ErrUnclosedQuote   Code = "SSH_1004"
	ErrUnclosedBrace   Code = "SSH_1005"
	ErrInvalidRedirect Code = "SSH_1006"

	WarnUnquotedVariable Code = "SSH_2001"
	WarnMissingShebang   Code = "SSH_2002"
	WarnUnusedVariable   Code = "SSH_2003"

	WarnBashOnlyFeature Code = "SSH_3001"
	WarnNonPosixFeature Code = "SSH_3002"

	HintPreferDoubleBracket Code = "SSH_4001"
	HintPreferPrintf        Code = "SSH_4002"
)

// Note is a single diagnostic: a severity-tagged, coded, positioned message
// with optional context (e.g. "in 'if' statement") and fix hint.
type Note struct {
	Severity Severity
	Code     Code
	Message  string
	Span     token.Span
	Context  string
	FixHint  string
}

// FormatDiagnostic renders a note as "SEVERITY [CODE] L:C: message", with
// optional "\n  Context: ..." and "\n  Hint: ..." suffixes, per spec §7.
func FormatDiagnostic(n Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s: %s", n.Severity, n.Code, n.Span.Start, n.Message)
	if n.Context != "" {
		fmt.Fprintf(&b, "\n  Context: %s", n.Context)
	}
	if n.FixHint != "" {
		fmt.Fprintf(&b, "\n  Hint: %s", n.FixHint)
	}
	return b.String()
}

// Collector accumulates notes per-severity, in insertion order within each
// channel. All() returns the union in severity order: errors, warnings,
// infos, hints.
type Collector struct {
	errors   []Note
	warnings []Note
	infos    []Note
	hints    []Note
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a note to the channel matching its Severity.
func (c *Collector) Add(n Note) {
	switch n.Severity {
	case Error:
		c.errors = append(c.errors, n)
	case Warning:
		c.warnings = append(c.warnings, n)
	case Info:
		c.infos = append(c.infos, n)
	case Hint:
		c.hints = append(c.hints, n)
	}
}

// Errorf/Warnf/Infof/Hintf are convenience constructors that build and add
// a Note in one call.
func (c *Collector) Errorf(code Code, span token.Span, context string, format string, args ...any) {
	c.Add(Note{Severity: Error, Code: code, Span: span, Context: context, Message: fmt.Sprintf(format, args...)})
}

func (c *Collector) Warnf(code Code, span token.Span, context, fixHint string, format string, args ...any) {
	c.Add(Note{Severity: Warning, Code: code, Span: span, Context: context, FixHint: fixHint, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error-severity note was recorded.
func (c *Collector) HasErrors() bool { return len(c.errors) > 0 }

// HasWarnings reports whether any warning-severity note was recorded.
func (c *Collector) HasWarnings() bool { return len(c.warnings) > 0 }

// Count returns the total number of notes across all channels.
func (c *Collector) Count() int {
	return len(c.errors) + len(c.warnings) + len(c.infos) + len(c.hints)
}

// All returns every note, errors first, then warnings, infos, hints; order
// within each channel is insertion order.
func (c *Collector) All() []Note {
	out := make([]Note, 0, c.Count())
	out = append(out, c.errors...)
	out = append(out, c.warnings...)
	out = append(out, c.infos...)
	out = append(out, c.hints...)
	return out
}

// Errors returns the error-channel notes.
func (c *Collector) Errors() []Note { return c.errors }

// Clear empties every channel.
func (c *Collector) Clear() {
	c.errors = nil
	c.warnings = nil
	c.infos = nil
	c.hints = nil
}

// AcceptOptions carries the optional fields of an "accept but warn" note.
type AcceptOptions struct {
	Context string
	FixHint string
}

// Accepted wraps a successfully-parsed value alongside whether accepting it
// triggered a diagnostic, replacing exception-based control flow for
// constructs that parse fine but deserve a caveat (spec §4.6, §9).
type Accepted[T any] struct {
	Value  T
	Warned bool
}

// AcceptButWarn emits a Warning note and returns the value with Warned=true.
func AcceptButWarn[T any](c *Collector, value T, code Code, message string, span token.Span, opts AcceptOptions) Accepted[T] {
	c.Add(Note{Severity: Warning, Code: code, Message: message, Span: span, Context: opts.Context, FixHint: opts.FixHint})
	return Accepted[T]{Value: value, Warned: true}
}

// AcceptButWarnInfo emits an Info note and returns the value with Warned=true.
func AcceptButWarnInfo[T any](c *Collector, value T, code Code, message string, span token.Span, opts AcceptOptions) Accepted[T] {
	c.Add(Note{Severity: Info, Code: code, Message: message, Span: span, Context: opts.Context, FixHint: opts.FixHint})
	return Accepted[T]{Value: value, Warned: true}
}

// AcceptButWarnHint emits a Hint note and returns the value with Warned=true.
func AcceptButWarnHint[T any](c *Collector, value T, code Code, message string, span token.Span, opts AcceptOptions) Accepted[T] {
	c.Add(Note{Severity: Hint, Code: code, Message: message, Span: span, Context: opts.Context, FixHint: opts.FixHint})
	return Accepted[T]{Value: value, Warned: true}
}

// AcceptIf gates the emission of a warning on a condition: when condition is
// true, the note is recorded and Warned is true; otherwise the value is
// returned untouched.
func AcceptIf[T any](c *Collector, value T, condition bool, code Code, message string, span token.Span, opts AcceptOptions) Accepted[T] {
	if !condition {
		return Accepted[T]{Value: value}
	}
	return AcceptButWarn(c, value, code, message, span, opts)
}

// AcceptWithCompatibilityCheck specializes AcceptIf to the SSH_3001
// bash-only-feature warning, with a standard POSIX-alternatives fix hint.
func AcceptWithCompatibilityCheck[T any](c *Collector, value T, supported bool, feature string, span token.Span) Accepted[T] {
	return AcceptIf(c, value, !supported, WarnBashOnlyFeature,
		fmt.Sprintf("%s is not supported by this shell dialect", feature), span,
		AcceptOptions{FixHint: "rewrite using a POSIX sh construct, or target a dialect that supports " + feature})
}
