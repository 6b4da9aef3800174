// Package parser implements SafeShell's shell grammar parser (spec §4.4):
// a recursive-descent parser consuming internal/lexer's token stream and
// producing a Program, in either strict (throw on first error) or
// recovery (collect diagnostics and resynchronize) mode.
package parser

import (
	"fmt"

	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/internal/dialect"
	"github.com/jchip/safeshell/internal/lexer"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// SyntaxError is the throwable raised by strict-mode parsing on the first
// unrecoverable discrepancy. Its message includes the expected construct
// and, where available, a context hint and a suggestion, per spec §4.4.
type SyntaxError struct {
	Note diag.Note
}

func (e *SyntaxError) Error() string {
	return diag.FormatDiagnostic(e.Note)
}

// Parser walks a token stream and builds a Program. All mutable per-parse
// state (lexer cursor, pending-heredoc correlation, id counter, collector,
// position map) is local to the instance — no globals, so independent
// parses never interfere (spec §9).
type Parser struct {
	source string
	lex    *lexer.Lexer
	toks   []token.Token
	pos    int

	gen    ast.IdGenerator
	posMap *ast.PositionMap
	diags  *diag.Collector

	shell dialect.Shell
	caps  dialect.Capabilities

	recovery bool

	pendingHeredocs []*ast.Redirection
}

// New creates a Parser over source text for the given dialect.
func New(source string, shell dialect.Shell) *Parser {
	return &Parser{
		source: source,
		lex:    lexer.New(source),
		posMap: ast.NewPositionMap(),
		diags:  diag.NewCollector(),
		shell:  shell,
		caps:   dialect.CapabilitiesFor(shell),
	}
}

// GetPositionMap returns the id→span side table populated during parsing.
func (p *Parser) GetPositionMap() *ast.PositionMap { return p.posMap }

// GetShell returns the dialect this parser was configured with.
func (p *Parser) GetShell() dialect.Shell { return p.shell }

// GetCapabilities returns the dialect's capability table.
func (p *Parser) GetCapabilities() dialect.Capabilities { return p.caps }

// HasCapability reports whether the configured dialect supports a named
// feature (see internal/dialect.CheckFeature for the name vocabulary).
func (p *Parser) HasCapability(name string) bool {
	return dialect.CheckFeature(p.shell, name, token.Span{}, nil)
}

// Diagnostics returns every note recorded so far.
func (p *Parser) Diagnostics() []diag.Note { return p.diags.All() }

// checkFeature records an SSH_3001 compatibility warning when the
// configured dialect lacks the named capability; it never aborts parsing,
// since a missing capability is a dialect mismatch, not a syntax error.
func (p *Parser) checkFeature(name string, span token.Span) bool {
	return dialect.CheckFeature(p.shell, name, span, p.diags)
}

func (p *Parser) nextId() ast.NodeId { return p.gen.Next() }

func (p *Parser) setSpan(n ast.Node, span token.Span) {
	if setter, ok := n.(interface{ SetSpan(token.Span) }); ok {
		setter.SetSpan(span)
	}
	p.posMap.Set(n.Id(), n.Span())
}

func (p *Parser) setId(n interface{ SetId(ast.NodeId) }) ast.NodeId {
	id := p.nextId()
	n.SetId(id)
	return id
}

// pull fetches the next non-comment token from the lexer.
func (p *Parser) pull() token.Token {
	for {
		t := p.lex.Next()
		if t.Kind != token.COMMENT {
			return t
		}
	}
}

func (p *Parser) ensure(n int) {
	for len(p.toks) <= p.pos+n {
		p.toks = append(p.toks, p.pull())
	}
}

// Peek returns the token n positions ahead of the cursor (Peek(0) == cur).
func (p *Parser) Peek(n int) token.Token {
	p.ensure(n)
	return p.toks[p.pos+n]
}

func (p *Parser) cur() token.Token { return p.Peek(0) }

// Advance consumes and returns the current token.
func (p *Parser) Advance() token.Token {
	t := p.cur()
	p.pos++
	return t
}

// Mark returns a cursor position to ResetTo later (used by recovery and
// any speculative lookahead).
func (p *Parser) Mark() int { return p.pos }

// ResetTo rewinds the cursor to a previously Marked position.
func (p *Parser) ResetTo(mark int) { p.pos = mark }

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) atAny(ks ...token.Kind) bool {
	c := p.cur().Kind
	for _, k := range ks {
		if c == k {
			return true
		}
	}
	return false
}

// expect consumes the current token if it matches kind, else raises a
// missing-keyword/unexpected-token condition through fail.
func (p *Parser) expect(k token.Kind, context string) (token.Token, error) {
	if p.at(k) {
		return p.Advance(), nil
	}
	return token.Token{}, p.fail(diag.ErrUnexpectedToken, context,
		fmt.Sprintf("expected %s but found %s", k, p.cur().Kind))
}

// recoverySignal is the error every production returns after a failed
// condition in recovery mode; it carries no information of its own (the
// diagnostic was already recorded by fail) and is only ever caught by
// parseStatement, which is the sole resynchronization point.
type recoverySignal struct{}

func (e *recoverySignal) Error() string { return "recovered" }

// fail builds the 1xxx condition, records it, and returns an error every
// caller propagates with a plain `if err != nil { return nil, err }` —
// in strict mode that error is a *SyntaxError that ultimately reaches
// Parse's caller; in recovery mode it is a *recoverySignal that only
// parseStatement intercepts, by calling skipToSync and continuing with
// the next statement. This keeps every other production free to treat
// "error" uniformly regardless of mode.
func (p *Parser) fail(code diag.Code, context, message string) error {
	note := diag.Note{Severity: diag.Error, Code: code, Message: message, Span: p.cur().Span, Context: context}
	p.diags.Add(note)
	if !p.recovery {
		return &SyntaxError{Note: note}
	}
	return &recoverySignal{}
}

var syncKinds = map[token.Kind]bool{
	token.NEWLINE:   true,
	token.SEMICOLON: true,
	token.EOF:       true,
	token.FI:        true,
	token.DONE:      true,
	token.ESAC:      true,
	token.RBRACE:    true,
	token.RPAREN:    true,
}

// skipToSync advances past tokens until a synchronization point (spec
// §4.8): NEWLINE, `;`, EOF, or a block-closing keyword.
func (p *Parser) skipToSync() []token.Token {
	var skipped []token.Token
	for !syncKinds[p.cur().Kind] {
		skipped = append(skipped, p.Advance())
	}
	return skipped
}

// skipSeparators consumes any run of NEWLINE/`;` tokens, draining heredoc
// bodies after each NEWLINE it passes.
func (p *Parser) skipSeparators() {
	for p.atAny(token.NEWLINE, token.SEMICOLON) {
		nl := p.at(token.NEWLINE)
		p.Advance()
		if nl {
			p.drainHeredocs()
		}
	}
}

// drainHeredocs consumes HEREDOC_CONTENT tokens now sitting at the cursor
// (the lexer appends them immediately after the NEWLINE that triggered
// capture) and assigns each to the Redirection that announced it, in the
// FIFO order both queues share.
func (p *Parser) drainHeredocs() {
	for len(p.pendingHeredocs) > 0 && p.at(token.HEREDOC_CONTENT) {
		tok := p.Advance()
		redir := p.pendingHeredocs[0]
		p.pendingHeredocs = p.pendingHeredocs[1:]
		word := &ast.Word{Value: tok.Lexeme, Quoted: tok.Flags.Quoted, Parts: []ast.WordPart{
			&ast.LiteralPart{Text: tok.Lexeme},
		}}
		p.setId(word)
		p.setSpan(word, tok.Span)
		redir.Target = word
	}
}

// Parse runs strict-mode parsing: the first unrecoverable discrepancy
// propagates as a *SyntaxError.
func Parse(source string, shell dialect.Shell) (*ast.Program, *Parser, error) {
	p := New(source, shell)
	p.recovery = false
	prog, err := p.parseProgram()
	return prog, p, err
}

// ParseWithRecovery never returns an error for syntactic problems;
// instead it resynchronizes at the next sync point and continues,
// recording a diagnostic for every recovered failure.
func ParseWithRecovery(source string, shell dialect.Shell) (*ast.Program, *Parser) {
	p := New(source, shell)
	p.recovery = true
	prog, _ := p.parseProgram()
	if prog == nil {
		prog = &ast.Program{}
		p.setId(prog)
	}
	return prog, p
}

// ParseArithmetic exposes the arithmetic Pratt parser directly on raw
// arithmetic text, per spec §6.
func ParseArithmetic(source string) (ast.ArithmeticExpression, error) {
	p := New("", dialect.Bash)
	return p.parseArithmeticText(source, token.Position{Line: 1, Column: 1, Offset: 0})
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	p.setId(prog)
	start := p.cur().Span.Start

	p.skipSeparators()
	for !p.at(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return prog, err
		}
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
		p.skipSeparators()
	}

	end := p.cur().Span.End
	p.setSpan(prog, token.Span{Start: start, End: end})
	return prog, nil
}
