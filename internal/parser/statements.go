package parser

import (
	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// parseStatement parses one Statement (`Statement := AndOrList ('&'|';'|newline|ε)`)
// and is the sole resynchronization point: a *recoverySignal bubbling up
// from anywhere below is caught here, the cursor is advanced to the next
// sync point, and parsing continues with the statement that follows.
func (p *Parser) parseStatement() (ast.Statement, error) {
	stmt, err := p.parseStatementInner()
	if err != nil {
		if _, ok := err.(*recoverySignal); ok {
			p.skipToSync()
			return nil, nil
		}
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseStatementInner() (ast.Statement, error) {
	pipeline, err := p.parseAndOrList()
	if err != nil {
		return nil, err
	}
	if pipeline == nil {
		return nil, nil
	}

	if p.at(token.AMP) {
		amp := p.Advance()
		pipeline.Background = true
		if len(pipeline.Commands) > 1 || pipeline.Operator != ast.NoOperator {
			pipeline.Operator = ast.OpBackground
		}
		p.setSpan(pipeline, token.Span{Start: pipeline.Span().Start, End: amp.Span.End})
	}

	return pipeline, nil
}

// parseAndOrList parses `AndOrList := Pipeline (('&&'|'||') Pipeline)*`,
// building a flat Pipeline per run of the same operator and nesting only
// where the operator changes (spec §3's mixed-precedence invariant).
func (p *Parser) parseAndOrList() (*ast.Pipeline, error) {
	result, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	for p.atAny(token.AND_AND, token.OR_OR) {
		opTok := p.Advance()
		op := ast.OpAndAnd
		if opTok.Kind == token.OR_OR {
			op = ast.OpOrOr
		}
		p.skipLineContinuations()

		next, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, p.fail(diag.ErrUnexpectedEOF, "and-or list", "expected a command after "+opTok.Kind.String())
		}

		if result.Operator == op {
			result.Commands = append(result.Commands, next)
		} else {
			wrapped := &ast.Pipeline{Operator: op, Commands: []ast.Statement{result, next}}
			p.setId(wrapped)
			result = wrapped
		}
		p.setSpan(result, token.Span{Start: result.Commands[0].Span().Start, End: next.Span().End})
	}
	return result, nil
}

// parsePipe parses `Pipeline := ['!'] SimpleOrCompound (('|'|'|&') SimpleOrCompound)*`.
// `|&` is folded into Operator=OpPipe with PipeErr=true, per spec §4.4.
func (p *Parser) parsePipe() (*ast.Pipeline, error) {
	start := p.cur().Span.Start
	negate := false
	if p.at(token.BANG) {
		p.Advance()
		negate = true
	}

	first, err := p.parseSimpleOrCompound()
	if err != nil {
		return nil, err
	}
	if first == nil {
		if negate {
			return nil, p.fail(diag.ErrUnexpectedEOF, "pipeline", "expected a command after !")
		}
		return nil, nil
	}

	pipeline := wrapSingleCommand(first)
	pipeline.Negate = negate
	p.setId(pipeline)
	p.setSpan(pipeline, token.Span{Start: start, End: first.Span().End})

	for p.atAny(token.PIPE, token.PIPE_AMP) {
		pipeErr := p.at(token.PIPE_AMP)
		p.Advance()
		p.skipLineContinuations()

		next, err := p.parseSimpleOrCompound()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, p.fail(diag.ErrUnexpectedEOF, "pipeline", "expected a command after |")
		}
		pipeline.Operator = ast.OpPipe
		if pipeErr {
			pipeline.PipeErr = true
			p.checkFeature("pipestderr", pipeline.Span())
		}
		pipeline.Commands = append(pipeline.Commands, next)
		p.setSpan(pipeline, token.Span{Start: start, End: next.Span().End})
	}

	return pipeline, nil
}

// wrapSingleCommand wraps a bare Statement (a Command or a compound
// construct) in a single-command Pipeline with Operator=NoOperator, per
// spec §4.4's SimpleOrCompound rule.
func wrapSingleCommand(s ast.Statement) *ast.Pipeline {
	return &ast.Pipeline{Operator: ast.NoOperator, Commands: []ast.Statement{s}}
}

// skipLineContinuations consumes NEWLINEs that merely continue an and-or
// or pipe chain across lines (`cmd1 &&\ncmd2`), without touching the
// pending here-doc queue — a continuation newline never triggers a
// here-doc body the way a statement-terminating newline does, because the
// operator it follows cannot have registered one.
func (p *Parser) skipLineContinuations() {
	for p.at(token.NEWLINE) {
		p.Advance()
	}
}
