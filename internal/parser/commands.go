package parser

import (
	"strings"

	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// redirectKinds is the set of token kinds that open a Redirection.
var redirectKinds = map[token.Kind]bool{
	token.LESS: true, token.GREAT: true, token.DGREAT: true,
	token.DLESS: true, token.DLESS_DASH: true, token.TLESS: true,
	token.LESS_AMP: true, token.GREAT_AMP: true, token.LESS_GREAT: true,
	token.CLOBBER: true, token.AMP_GREAT: true, token.AMP_DGREAT: true,
}

var redirOperatorOf = map[token.Kind]ast.RedirOperator{
	token.LESS:        ast.RedirLess,
	token.GREAT:       ast.RedirGreat,
	token.DGREAT:      ast.RedirDGreat,
	token.DLESS:       ast.RedirDLess,
	token.DLESS_DASH:  ast.RedirDLessDash,
	token.TLESS:       ast.RedirTLess,
	token.LESS_AMP:    ast.RedirLessAmp,
	token.GREAT_AMP:   ast.RedirGreatAmp,
	token.LESS_GREAT:  ast.RedirLessGreat,
	token.CLOBBER:     ast.RedirClobber,
	token.AMP_GREAT:   ast.RedirAmpGreat,
	token.AMP_DGREAT:  ast.RedirAmpDGreat,
}

// parseSimpleOrCompound parses `SimpleOrCompound := SimpleCommand | Compound`,
// returning the bare Statement (never pre-wrapped in a Pipeline — that
// wrapping is parsePipe's job).
func (p *Parser) parseSimpleOrCompound() (ast.Statement, error) {
	switch p.cur().Kind {
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.UNTIL:
		return p.parseUntilStatement()
	case token.CASE:
		return p.parseCaseStatement()
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.LBRACE:
		return p.parseBraceGroup()
	case token.LPAREN:
		return p.parseSubshell()
	case token.DLBRACK:
		return p.parseTestCommand()
	case token.DLPAREN:
		return p.parseArithmeticCommand()
	case token.NAME:
		if p.Peek(1).Kind == token.LPAREN {
			return p.parseFunctionDeclaration()
		}
		switch p.cur().Lexeme {
		case "return":
			return p.parseReturnStatement()
		case "break":
			return p.parseBreakStatement()
		case "continue":
			return p.parseContinueStatement()
		}
		return p.parseSimpleCommand()
	case token.WORD, token.ASSIGNMENT_WORD, token.NUMBER,
		token.LESS_PAREN, token.GREAT_PAREN:
		return p.parseSimpleCommand()
	default:
		return nil, nil
	}
}

// parseSimpleCommand parses `LeadingAssignment* (Word|Expansion)
// (Word|Expansion|Redirect|Assignment*)*`. A run of leading assignments
// with no following command word produces a VariableAssignment (or, for
// more than one bare assignment, a nameless Command carrying just the
// Assignments) rather than a Command.
func (p *Parser) parseSimpleCommand() (ast.Statement, error) {
	start := p.cur().Span.Start
	cmd := &ast.Command{}

	for p.at(token.ASSIGNMENT_WORD) {
		tok := p.Advance()
		assign, err := p.parseAssignment(tok)
		if err != nil {
			return nil, err
		}
		cmd.Assignments = append(cmd.Assignments, assign)
	}

	for {
		switch {
		case redirectKinds[p.cur().Kind] || p.startsFdPrefixedRedirection():
			redir, err := p.parseFdPrefixedRedirection()
			if err != nil {
				return nil, err
			}
			cmd.Redirects = append(cmd.Redirects, redir)

		case p.atAny(token.WORD, token.NAME, token.NUMBER):
			tok := p.Advance()
			word, err := p.buildWord(tok)
			if err != nil {
				return nil, err
			}
			if cmd.Name == nil {
				cmd.Name = word
			} else {
				cmd.Args = append(cmd.Args, word)
			}

		case p.at(token.ASSIGNMENT_WORD):
			// Only a *leading* run counts as Assignments; once a command
			// word has been seen, further name=value tokens are arguments.
			tok := p.Advance()
			if cmd.Name == nil {
				assign, err := p.parseAssignment(tok)
				if err != nil {
					return nil, err
				}
				cmd.Assignments = append(cmd.Assignments, assign)
				continue
			}
			word, err := p.buildWord(tok)
			if err != nil {
				return nil, err
			}
			cmd.Args = append(cmd.Args, word)

		case p.atAny(token.LESS_PAREN, token.GREAT_PAREN):
			word, err := p.parseProcessSubstitution()
			if err != nil {
				return nil, err
			}
			if cmd.Name == nil {
				cmd.Name = word
			} else {
				cmd.Args = append(cmd.Args, word)
			}

		default:
			goto done
		}
	}

done:
	end := start
	if n := len(p.toks); p.pos > 0 && p.pos <= n {
		end = p.toks[p.pos-1].Span.End
	}

	if cmd.Name == nil {
		switch len(cmd.Assignments) {
		case 0:
			return nil, nil
		case 1:
			va := &ast.VariableAssignment{Assignment: cmd.Assignments[0]}
			p.setId(va)
			p.setSpan(va, token.Span{Start: start, End: end})
			return va, nil
		}
	}

	p.setId(cmd)
	p.setSpan(cmd, token.Span{Start: start, End: end})
	return cmd, nil
}

// parseAssignment splits an ASSIGNMENT_WORD token's "name=value",
// "name+=value", "name[sub]=value" text into an Assignment, and handles
// the array-literal form name=(...) / name+=(...), whose `(` arrives as a
// separate LPAREN token since the lexer's word scan stops at it.
func (p *Parser) parseAssignment(tok token.Token) (ast.Assignment, error) {
	text := tok.Lexeme
	plus := false
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return ast.Assignment{}, p.fail(diag.ErrUnexpectedToken, "assignment", "malformed assignment word")
	}
	name := text[:eq]
	if strings.HasSuffix(name, "+") {
		plus = true
		name = name[:len(name)-1]
	}
	valueText := text[eq+1:]

	if valueText == "" && p.at(token.LPAREN) {
		arr, err := p.parseArrayLiteral()
		if err != nil {
			return ast.Assignment{}, err
		}
		return ast.Assignment{Name: name, Array: arr, Plus: plus, Span: token.Span{Start: tok.Span.Start, End: arr.Span().End}}, nil
	}

	valueBase := addCols(tok.Span.Start, eq+1)
	word := &ast.Word{Value: valueText}
	p.setId(word)
	p.setSpan(word, token.Span{Start: valueBase, End: tok.Span.End})
	parts, err := p.splitWordParts(valueText, tok.Flags.Quoted, valueBase)
	if err != nil {
		return ast.Assignment{}, err
	}
	word.Parts = parts

	return ast.Assignment{Name: name, Value: word, Plus: plus, Span: tok.Span}, nil
}

// parseArrayLiteral parses `( word* )` for an array assignment's value.
func (p *Parser) parseArrayLiteral() (*ast.ArrayLiteral, error) {
	open, err := p.expect(token.LPAREN, "array literal")
	if err != nil {
		return nil, err
	}
	arr := &ast.ArrayLiteral{}
	p.setId(arr)

	for {
		p.skipLineContinuations()
		if p.at(token.RPAREN) || p.at(token.EOF) {
			break
		}
		if p.atAny(token.WORD, token.NAME, token.NUMBER, token.ASSIGNMENT_WORD) {
			tok := p.Advance()
			word, err := p.buildWord(tok)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, word)
			continue
		}
		break
	}

	close, err := p.expect(token.RPAREN, "array literal")
	if err != nil {
		return nil, err
	}
	p.setSpan(arr, token.Span{Start: open.Span.Start, End: close.Span.End})
	return arr, nil
}

// parseRedirection parses one redirection: an optional fd number or
// `{name}` fd-variable fused to the operator, the operator itself, and its
// target (a Word, or a duplication target fd for `<&N`/`>&N`).
func (p *Parser) parseRedirection() (*ast.Redirection, error) {
	start := p.cur().Span.Start
	redir := &ast.Redirection{}

	opTok := p.Advance()
	op, ok := redirOperatorOf[opTok.Kind]
	if !ok {
		return nil, p.fail(diag.ErrInvalidRedirect, "redirection", "expected a redirection operator")
	}
	redir.Operator = op
	redir.Fd = op.DefaultFd()

	if op == ast.RedirDLess || op == ast.RedirDLessDash {
		return p.finishHeredocRedirection(redir, start)
	}

	if redir.Operator == ast.RedirLessAmp || redir.Operator == ast.RedirGreatAmp {
		if p.at(token.NUMBER) {
			tok := p.Advance()
			redir.TargetIsFd = true
			redir.TargetFd = parseFdNumber(tok.Lexeme)
			p.setId(redir)
			p.setSpan(redir, token.Span{Start: start, End: tok.Span.End})
			return redir, nil
		}
	}

	target, err := p.parseRedirectionTarget()
	if err != nil {
		return nil, err
	}
	redir.Target = target
	p.setId(redir)
	p.setSpan(redir, token.Span{Start: start, End: target.Span().End})
	return redir, nil
}

// startsFdPrefixedRedirection reports whether the cursor is at a NUMBER or
// `{name}` that is itself immediately followed by a redirection operator
// — the lexer never fuses an fd prefix onto the operator token, so the
// grammar has to recognize the two-token sequence itself.
func (p *Parser) startsFdPrefixedRedirection() bool {
	if p.at(token.NUMBER) && redirectKinds[p.Peek(1).Kind] {
		return true
	}
	if p.at(token.LBRACE) && p.Peek(1).Kind == token.NAME && p.Peek(2).Kind == token.RBRACE && redirectKinds[p.Peek(3).Kind] {
		return true
	}
	return false
}

// parseFdPrefixedRedirection consumes an optional fd NUMBER or `{name}`
// fd-variable, fuses it onto the Redirection built by parseRedirection for
// the operator that follows.
func (p *Parser) parseFdPrefixedRedirection() (*ast.Redirection, error) {
	start := p.cur().Span.Start
	var fd int
	var fdVar string
	hasFdVar := false
	hasFd := false

	if p.at(token.NUMBER) && redirectKinds[p.Peek(1).Kind] {
		tok := p.Advance()
		fd = parseFdNumber(tok.Lexeme)
		hasFd = true
	} else if p.at(token.LBRACE) {
		if name, ok := p.tryFdVariable(); ok {
			fdVar = name
			hasFdVar = true
		}
	}

	redir, err := p.parseRedirection()
	if err != nil {
		return nil, err
	}
	if hasFd {
		redir.Fd = fd
	}
	if hasFdVar {
		redir.FdVar = fdVar
		redir.HasFdVar = true
	}
	redir.SetSpan(token.Span{Start: start, End: redir.Span().End})
	return redir, nil
}

// tryFdVariable recognizes `{name}` immediately preceding a redirection
// operator (spec §4.4: only when the closing `}` is immediately followed
// by a redirect operator; otherwise `{...}` belongs to a word). It
// speculatively consumes and rewinds on mismatch.
func (p *Parser) tryFdVariable() (string, bool) {
	mark := p.Mark()
	p.Advance() // {
	if !p.at(token.NAME) {
		p.ResetTo(mark)
		return "", false
	}
	nameTok := p.Advance()
	if !p.at(token.RBRACE) || !redirectKinds[p.Peek(1).Kind] {
		p.ResetTo(mark)
		return "", false
	}
	p.Advance() // }
	return nameTok.Lexeme, true
}

func (p *Parser) parseRedirectionTarget() (*ast.Word, error) {
	if p.atAny(token.WORD, token.NAME, token.NUMBER, token.ASSIGNMENT_WORD) {
		tok := p.Advance()
		return p.buildWord(tok)
	}
	if p.atAny(token.LESS_PAREN, token.GREAT_PAREN) {
		return p.parseProcessSubstitution()
	}
	return nil, p.fail(diag.ErrUnexpectedToken, "redirection", "expected a redirection target")
}

// finishHeredocRedirection registers the pending here-doc with the lexer
// and this parser's correlation queue once the delimiter word is read; the
// body itself is filled in later by drainHeredocs, when the terminating
// NEWLINE for this statement is consumed.
func (p *Parser) finishHeredocRedirection(redir *ast.Redirection, start token.Position) (*ast.Redirection, error) {
	if !p.atAny(token.WORD, token.NAME, token.NUMBER, token.ASSIGNMENT_WORD) {
		return nil, p.fail(diag.ErrUnexpectedToken, "here-document", "expected a here-document delimiter")
	}
	tok := p.Advance()
	redir.HeredocTag = tok.Lexeme
	redir.HeredocQuoted = tok.Flags.Quoted
	p.setId(redir)
	p.setSpan(redir, token.Span{Start: start, End: tok.Span.End})

	p.lex.AddPendingHeredoc(tok.Lexeme, redir.Operator == ast.RedirDLessDash, tok.Flags.Quoted)
	p.pendingHeredocs = append(p.pendingHeredocs, redir)
	return redir, nil
}

func parseFdNumber(lexeme string) int {
	n := 0
	for _, r := range lexeme {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// parseProcessSubstitution handles `<(...)`/`>(...)`, whose body is a
// command list tokenized normally by the lexer; this parser skips past
// those tokens rather than re-parsing them, since ProcessSubstitution only
// carries the raw body text (consistent with CommandSubstitution).
func (p *Parser) parseProcessSubstitution() (*ast.Word, error) {
	openTok := p.Advance()
	p.checkFeature("processsubstitution", openTok.Span)
	dir := byte('<')
	if openTok.Kind == token.GREAT_PAREN {
		dir = '>'
	}

	startOffset := openTok.Span.End.Offset
	rel, ok := findBalanced(p.source, startOffset, '(', ')', 1)
	if !ok {
		return nil, p.fail(diag.ErrUnclosedBrace, "process substitution", "unterminated process substitution")
	}
	bodyEndOffset := rel
	body := p.source[startOffset : bodyEndOffset-1]

	last := openTok
	for !p.at(token.EOF) && p.cur().Span.Start.Offset < bodyEndOffset-1 {
		last = p.Advance()
	}
	endPos := last.Span.End
	if p.at(token.RPAREN) {
		rp := p.Advance()
		endPos = rp.Span.End
	}

	part := &ast.ProcessSubstitution{Direction: dir, Body: body}
	p.setId(part)
	p.setSpan(part, token.Span{Start: openTok.Span.Start, End: endPos})

	word := &ast.Word{Value: p.source[openTok.Span.Start.Offset:endPos.Offset], Parts: []ast.WordPart{part}}
	p.setId(word)
	p.setSpan(word, token.Span{Start: openTok.Span.Start, End: endPos})
	return word, nil
}
