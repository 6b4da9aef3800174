package parser

import (
	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// parseFunctionDeclaration handles both `function name [()] { ... }` /
// `function name [()] ( ... )` and the POSIX `name() { ... }` /
// `name() ( ... )` forms. The caller has already confirmed, via one token
// of lookahead, that a bare NAME is followed by `(` before dispatching
// here.
func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	start := p.cur().Span.Start
	var name string

	if p.at(token.FUNCTION) {
		p.Advance()
		nameTok, err := p.expect(token.NAME, "function declaration")
		if err != nil {
			return nil, err
		}
		name = nameTok.Lexeme
		if p.at(token.LPAREN) {
			p.Advance()
			if _, err := p.expect(token.RPAREN, "function declaration"); err != nil {
				return nil, err
			}
		}
	} else {
		nameTok, err := p.expect(token.NAME, "function declaration")
		if err != nil {
			return nil, err
		}
		name = nameTok.Lexeme
		p.Advance() // LPAREN, guaranteed present by the caller's lookahead
		if _, err := p.expect(token.RPAREN, "function declaration"); err != nil {
			return nil, err
		}
	}

	p.skipLineContinuations()

	var body ast.Statement
	var err error
	switch {
	case p.at(token.LBRACE):
		body, err = p.parseBraceGroup()
	case p.at(token.LPAREN):
		body, err = p.parseSubshell()
	default:
		return nil, p.fail(diag.ErrMissingKeyword, "function declaration", "expected '{' or '(' to open the function body")
	}
	if err != nil {
		return nil, err
	}

	stmt := &ast.FunctionDeclaration{Name: name, Body: body}
	p.setId(stmt)
	p.setSpan(stmt, token.Span{Start: start, End: body.Span().End})
	return stmt, nil
}

// atRedirectStart reports whether the cursor opens a (possibly
// fd-prefixed) redirection, the same test parseSimpleCommand uses.
func (p *Parser) atRedirectStart() bool {
	return redirectKinds[p.cur().Kind] || p.startsFdPrefixedRedirection()
}

// parseTrailingRedirects consumes zero or more redirections following a
// compound command's closing delimiter (`}`, `)`), as in `{ cmd; } > log`.
func (p *Parser) parseTrailingRedirects() ([]*ast.Redirection, token.Position, error) {
	var redirs []*ast.Redirection
	var end token.Position
	for p.atRedirectStart() {
		redir, err := p.parseFdPrefixedRedirection()
		if err != nil {
			return nil, end, err
		}
		redirs = append(redirs, redir)
		end = redir.Span().End
	}
	return redirs, end, nil
}

// parseBraceGroup parses `{ body ; }`, optionally followed by redirections.
func (p *Parser) parseBraceGroup() (ast.Statement, error) {
	open, err := p.expect(token.LBRACE, "brace group")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(token.RBRACE)
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RBRACE, "brace group")
	if err != nil {
		return nil, err
	}

	grp := &ast.BraceGroup{Body: body}
	p.setId(grp)
	end := closeTok.Span.End
	redirs, redirEnd, err := p.parseTrailingRedirects()
	if err != nil {
		return nil, err
	}
	grp.Redirects = redirs
	if len(redirs) > 0 {
		end = redirEnd
	}
	p.setSpan(grp, token.Span{Start: open.Span.Start, End: end})
	return grp, nil
}

// parseSubshell parses `( body )`, optionally followed by redirections.
func (p *Parser) parseSubshell() (ast.Statement, error) {
	open, err := p.expect(token.LPAREN, "subshell")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RPAREN, "subshell")
	if err != nil {
		return nil, err
	}

	sub := &ast.Subshell{Body: body}
	p.setId(sub)
	end := closeTok.Span.End
	redirs, redirEnd, err := p.parseTrailingRedirects()
	if err != nil {
		return nil, err
	}
	sub.Redirects = redirs
	if len(redirs) > 0 {
		end = redirEnd
	}
	p.setSpan(sub, token.Span{Start: open.Span.Start, End: end})
	return sub, nil
}

// parseArithmeticCommand parses `(( expr ))`. Like process substitution and
// the C-style for header, the expression text is recovered from the
// original source by a balanced-paren scan rather than from the token
// stream, since DLPAREN/DRPAREN are ordinary operator tokens and the lexer
// has already tokenized the interior as regular shell tokens.
func (p *Parser) parseArithmeticCommand() (ast.Statement, error) {
	openTok := p.Advance() // DLPAREN
	startOffset := openTok.Span.End.Offset
	end, ok := findBalanced(p.source, startOffset, '(', ')', 2)
	if !ok {
		return nil, p.fail(diag.ErrUnclosedBrace, "arithmetic command", "unterminated (( ... ))")
	}
	inner := p.source[startOffset : end-2]
	innerBase := addCols(openTok.Span.Start, 2)

	expr, err := p.parseArithmeticText(inner, innerBase)
	if err != nil {
		return nil, p.fail(diag.ErrUnexpectedToken, "arithmetic command", err.Error())
	}

	last := openTok
	for !p.at(token.EOF) && p.cur().Span.Start.Offset < end-2 {
		last = p.Advance()
	}
	endPos := last.Span.End
	if p.at(token.DRPAREN) {
		rp := p.Advance()
		endPos = rp.Span.End
	}

	stmt := &ast.ArithmeticCommand{Expression: expr}
	p.setId(stmt)
	p.setSpan(stmt, token.Span{Start: openTok.Span.Start, End: endPos})
	return stmt, nil
}

// parseTestCommand parses `[[ expr ]]`.
func (p *Parser) parseTestCommand() (ast.Statement, error) {
	open, err := p.expect(token.DLBRACK, "test command")
	if err != nil {
		return nil, err
	}
	p.checkFeature("doublebrackettest", open.Span)

	cond, err := p.parseTestOr()
	if err != nil {
		return nil, err
	}

	closeTok, err := p.expect(token.DRBRACK, "test command")
	if err != nil {
		return nil, err
	}

	stmt := &ast.TestCommand{Condition: cond}
	p.setId(stmt)
	p.setSpan(stmt, token.Span{Start: open.Span.Start, End: closeTok.Span.End})
	return stmt, nil
}
