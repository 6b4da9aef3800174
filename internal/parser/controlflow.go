package parser

import (
	"strings"

	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// parseStatementList parses a run of statements up to (but not consuming)
// one of the given terminator kinds, draining separators between them. It
// backs every compound command's body: if/while/until/for/case arms,
// brace groups and subshells all share this loop.
func (p *Parser) parseStatementList(terminators ...token.Kind) ([]ast.Statement, error) {
	var body []ast.Statement
	p.skipSeparators()
	_, err := p.ManyUntil(func() (bool, error) {
		stmt, err := p.parseStatement()
		if err != nil {
			return false, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
		p.skipSeparators()
		return true, nil
	}, terminators...)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// parseIfStatement parses `if cond; then body (elif cond; then body)* (else body)? fi`,
// delegating to parseIfClause which recurses once per elif.
func (p *Parser) parseIfStatement() (ast.Statement, error) {
	start := p.cur().Span.Start
	p.Advance() // IF
	stmt, fi, err := p.parseIfClause()
	if err != nil {
		return nil, err
	}
	p.setSpan(stmt, token.Span{Start: start, End: fi.Span.End})
	return stmt, nil
}

// parseIfClause parses the test/then/consequent shared by `if` and `elif`;
// the cursor is positioned just past the IF or ELIF keyword on entry. It
// returns the fully-built node along with the FI token that closed it, so
// the top-level caller can use that token's span without re-deriving it.
func (p *Parser) parseIfClause() (*ast.IfStatement, token.Token, error) {
	test, err := p.parseAndOrList()
	if err != nil {
		return nil, token.Token{}, err
	}
	if test == nil {
		return nil, token.Token{}, p.fail(diag.ErrUnexpectedEOF, "if statement", "expected a condition")
	}
	p.skipSeparators()
	if _, err := p.expect(token.THEN, "if statement"); err != nil {
		return nil, token.Token{}, err
	}

	consequent, err := p.parseStatementList(token.ELIF, token.ELSE, token.FI)
	if err != nil {
		return nil, token.Token{}, err
	}

	stmt := &ast.IfStatement{Test: test, Consequent: consequent}
	p.setId(stmt)

	switch {
	case p.at(token.ELIF):
		elifStart := p.cur().Span.Start
		p.Advance()
		nested, fi, err := p.parseIfClause()
		if err != nil {
			return nil, token.Token{}, err
		}
		p.setSpan(nested, token.Span{Start: elifStart, End: fi.Span.End})
		stmt.Alternate = nested
		return stmt, fi, nil

	case p.at(token.ELSE):
		p.Advance()
		altBody, err := p.parseStatementList(token.FI)
		if err != nil {
			return nil, token.Token{}, err
		}
		stmt.Alternate = altBody
		fi, err := p.expect(token.FI, "if statement")
		if err != nil {
			return nil, token.Token{}, err
		}
		return stmt, fi, nil

	default:
		fi, err := p.expect(token.FI, "if statement")
		if err != nil {
			return nil, token.Token{}, err
		}
		return stmt, fi, nil
	}
}

// parseCondDoBody parses the `cond; do body; done` shape shared by `while`
// and `until` once the leading keyword has been consumed.
func (p *Parser) parseCondDoBody(context string) (*ast.Pipeline, []ast.Statement, token.Token, error) {
	test, err := p.parseAndOrList()
	if err != nil {
		return nil, nil, token.Token{}, err
	}
	if test == nil {
		return nil, nil, token.Token{}, p.fail(diag.ErrUnexpectedEOF, context, "expected a condition")
	}
	p.skipSeparators()
	if _, err := p.expect(token.DO, context); err != nil {
		return nil, nil, token.Token{}, err
	}
	body, err := p.parseStatementList(token.DONE)
	if err != nil {
		return nil, nil, token.Token{}, err
	}
	done, err := p.expect(token.DONE, context)
	if err != nil {
		return nil, nil, token.Token{}, err
	}
	return test, body, done, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	start := p.cur().Span.Start
	p.Advance() // WHILE
	test, body, done, err := p.parseCondDoBody("while statement")
	if err != nil {
		return nil, err
	}
	stmt := &ast.WhileStatement{Test: test, Body: body}
	p.setId(stmt)
	p.setSpan(stmt, token.Span{Start: start, End: done.Span.End})
	return stmt, nil
}

func (p *Parser) parseUntilStatement() (ast.Statement, error) {
	start := p.cur().Span.Start
	p.Advance() // UNTIL
	test, body, done, err := p.parseCondDoBody("until statement")
	if err != nil {
		return nil, err
	}
	stmt := &ast.UntilStatement{Test: test, Body: body}
	p.setId(stmt)
	p.setSpan(stmt, token.Span{Start: start, End: done.Span.End})
	return stmt, nil
}

// parseForStatement handles both `for name [in word...]; do body; done`
// and the C-style `for ((init; test; update)); do body; done` — the two
// forms only share the leading FOR keyword and the do/body/done tail.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	start := p.cur().Span.Start
	p.Advance() // FOR
	if p.at(token.DLPAREN) {
		return p.parseCStyleFor(start)
	}

	nameTok, err := p.expect(token.NAME, "for statement")
	if err != nil {
		return nil, err
	}
	stmt := &ast.ForStatement{Variable: nameTok.Lexeme}
	p.setId(stmt)

	p.skipLineContinuations()
	if p.at(token.IN) {
		p.Advance()
		stmt.HasIn = true
		for p.atWordLikeStart() {
			word, err := p.parseWordLike()
			if err != nil {
				return nil, err
			}
			stmt.Iterable = append(stmt.Iterable, word)
		}
	}

	p.skipSeparators()
	if _, err := p.expect(token.DO, "for statement"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(token.DONE)
	if err != nil {
		return nil, err
	}
	done, err := p.expect(token.DONE, "for statement")
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	p.setSpan(stmt, token.Span{Start: start, End: done.Span.End})
	return stmt, nil
}

// parseCStyleFor parses the `((init; test; update))` header by locating its
// raw text in the original source the same way parseProcessSubstitution
// does, since DLPAREN/DRPAREN are ordinary operator tokens and the lexer
// tokenizes the interior as regular shell tokens rather than capturing it
// verbatim.
func (p *Parser) parseCStyleFor(start token.Position) (ast.Statement, error) {
	openTok := p.Advance() // DLPAREN
	startOffset := openTok.Span.End.Offset
	end, ok := findBalanced(p.source, startOffset, '(', ')', 2)
	if !ok {
		return nil, p.fail(diag.ErrUnclosedBrace, "for statement", "unterminated (( ... )) header")
	}
	inner := p.source[startOffset : end-2]
	innerBase := addCols(openTok.Span.Start, 2)

	clauses := splitArithClauses(inner)
	if len(clauses) != 3 {
		return nil, p.fail(diag.ErrUnexpectedToken, "for statement", "expected init; test; update inside (( ))")
	}

	stmt := &ast.CStyleForStatement{}
	offset := 0
	for i, clause := range clauses {
		trimmed := strings.TrimSpace(clause)
		lead := len(clause) - len(strings.TrimLeft(clause, " \t"))
		clauseBase := addCols(innerBase, offset+lead)
		offset += len(clause) + 1 // + the ';' separator this clause was split on

		if trimmed == "" {
			continue
		}
		expr, err := p.parseArithmeticText(trimmed, clauseBase)
		if err != nil {
			return nil, p.fail(diag.ErrUnexpectedToken, "for statement", err.Error())
		}
		switch i {
		case 0:
			stmt.Init = expr
		case 1:
			stmt.Test = expr
		case 2:
			stmt.Update = expr
		}
	}
	p.setId(stmt)

	// Skip the already-lexed tokens spanning the header text, resyncing at
	// the matching DRPAREN.
	for !p.at(token.EOF) && p.cur().Span.Start.Offset < end-2 {
		p.Advance()
	}
	if p.at(token.DRPAREN) {
		p.Advance()
	}

	p.skipSeparators()
	if _, err := p.expect(token.DO, "for statement"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(token.DONE)
	if err != nil {
		return nil, err
	}
	done, err := p.expect(token.DONE, "for statement")
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	p.setSpan(stmt, token.Span{Start: start, End: done.Span.End})
	return stmt, nil
}

// splitArithClauses splits a C-style for-header's raw text on top-level
// semicolons, respecting parenthesis nesting so a `;` inside a nested
// sub-expression never splits a clause in two.
func splitArithClauses(text string) []string {
	var clauses []string
	depth := 0
	last := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ';':
			if depth == 0 {
				clauses = append(clauses, text[last:i])
				last = i + 1
			}
		}
	}
	clauses = append(clauses, text[last:])
	return clauses
}

// atWordLikeStart reports whether the cursor begins a word-or-expansion
// suitable for a `for ... in` iterable list or a `case` pattern.
func (p *Parser) atWordLikeStart() bool {
	return p.atAny(token.WORD, token.NAME, token.NUMBER, token.ASSIGNMENT_WORD,
		token.LESS_PAREN, token.GREAT_PAREN)
}

// parseWordLike consumes one word-or-expansion token, dispatching to
// process-substitution parsing when it opens with `<(`/`>(`.
func (p *Parser) parseWordLike() (*ast.Word, error) {
	if p.atAny(token.LESS_PAREN, token.GREAT_PAREN) {
		return p.parseProcessSubstitution()
	}
	tok := p.Advance()
	return p.buildWord(tok)
}

// parseCaseStatement parses `case word in (pattern|pattern...) body ;;|;&|;;& ... esac`.
func (p *Parser) parseCaseStatement() (ast.Statement, error) {
	start := p.cur().Span.Start
	p.Advance() // CASE

	if !p.atWordLikeStart() {
		return nil, p.fail(diag.ErrUnexpectedToken, "case statement", "expected a word after 'case'")
	}
	word, err := p.parseWordLike()
	if err != nil {
		return nil, err
	}

	p.skipLineContinuations()
	if _, err := p.expect(token.IN, "case statement"); err != nil {
		return nil, err
	}
	p.skipSeparators()

	stmt := &ast.CaseStatement{Word: word}
	p.setId(stmt)

	for !p.at(token.ESAC) && !p.at(token.EOF) {
		arm, err := p.parseCaseArm()
		if err != nil {
			return nil, err
		}
		stmt.Arms = append(stmt.Arms, arm)
		p.skipSeparators()
	}

	esac, err := p.expect(token.ESAC, "case statement")
	if err != nil {
		return nil, err
	}
	p.setSpan(stmt, token.Span{Start: start, End: esac.Span.End})
	return stmt, nil
}

func (p *Parser) parseCaseArm() (ast.CaseArm, error) {
	if p.at(token.LPAREN) {
		p.Advance()
	}

	var patterns []*ast.Word
	err := p.SeparatedList(func() error {
		if !p.atWordLikeStart() {
			return p.fail(diag.ErrUnexpectedToken, "case pattern", "expected a pattern")
		}
		w, err := p.parseWordLike()
		if err != nil {
			return err
		}
		patterns = append(patterns, w)
		return nil
	}, token.PIPE)
	if err != nil {
		return ast.CaseArm{}, err
	}

	if _, err := p.expect(token.RPAREN, "case pattern"); err != nil {
		return ast.CaseArm{}, err
	}

	body, err := p.parseStatementList(token.DSEMI, token.SEMI_AMP, token.DSEMI_AMP, token.ESAC)
	if err != nil {
		return ast.CaseArm{}, err
	}

	term := ast.TermNone
	switch p.cur().Kind {
	case token.DSEMI:
		p.Advance()
		term = ast.TermBreak
	case token.SEMI_AMP:
		p.Advance()
		term = ast.TermFallthrough
	case token.DSEMI_AMP:
		p.Advance()
		term = ast.TermContinue
	}

	return ast.CaseArm{Patterns: patterns, Body: body, Terminator: term}, nil
}

// parseReturnStatement, parseBreakStatement and parseContinueStatement all
// share the same `keyword [word]` shape; `return`/`break`/`continue` are
// ordinary command names lexically (they are builtins, not reserved
// words), so parseSimpleOrCompound recognizes them by lexeme before
// falling through to parseSimpleCommand.
func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	start := p.cur().Span.Start
	end := p.Advance().Span.End // "return"
	var value *ast.Word
	if p.atAny(token.WORD, token.NAME, token.NUMBER, token.ASSIGNMENT_WORD) {
		tok := p.Advance()
		w, err := p.buildWord(tok)
		if err != nil {
			return nil, err
		}
		value = w
		end = w.Span().End
	}
	stmt := &ast.ReturnStatement{Value: value}
	p.setId(stmt)
	p.setSpan(stmt, token.Span{Start: start, End: end})
	return stmt, nil
}

func (p *Parser) parseBreakStatement() (ast.Statement, error) {
	start := p.cur().Span.Start
	end := p.Advance().Span.End // "break"
	var level *ast.Word
	if p.atAny(token.WORD, token.NAME, token.NUMBER) {
		tok := p.Advance()
		w, err := p.buildWord(tok)
		if err != nil {
			return nil, err
		}
		level = w
		end = w.Span().End
	}
	stmt := &ast.BreakStatement{Level: level}
	p.setId(stmt)
	p.setSpan(stmt, token.Span{Start: start, End: end})
	return stmt, nil
}

func (p *Parser) parseContinueStatement() (ast.Statement, error) {
	start := p.cur().Span.Start
	end := p.Advance().Span.End // "continue"
	var level *ast.Word
	if p.atAny(token.WORD, token.NAME, token.NUMBER) {
		tok := p.Advance()
		w, err := p.buildWord(tok)
		if err != nil {
			return nil, err
		}
		level = w
		end = w.Span().End
	}
	stmt := &ast.ContinueStatement{Level: level}
	p.setId(stmt)
	p.setSpan(stmt, token.Span{Start: start, End: end})
	return stmt, nil
}
