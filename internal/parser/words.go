package parser

import (
	"strings"

	"github.com/jchip/safeshell/internal/diag"
	"github.com/jchip/safeshell/internal/paramexpand"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

// buildWord turns a WORD/NAME/ASSIGNMENT_WORD/NUMBER token into a *ast.Word.
// The lexer has already stripped quote delimiters and resolved double-quote
// backslash escapes into tok.Lexeme, copying `$...`/backtick/`$((...))`
// sequences through verbatim; this pass locates those verbatim sequences
// (plus, for an entirely-unquoted word, glob metacharacters) and splits
// them into structured Parts.
func (p *Parser) buildWord(tok token.Token) (*ast.Word, error) {
	word := &ast.Word{
		Value:        tok.Lexeme,
		Quoted:       tok.Flags.Quoted,
		SingleQuoted: tok.Flags.SingleQuoted,
	}
	p.setId(word)
	p.setSpan(word, tok.Span)

	parts, err := p.splitWordParts(tok.Lexeme, tok.Flags.Quoted, tok.Span.Start)
	if err != nil {
		return nil, err
	}
	word.Parts = parts
	return word, nil
}

// splitWordParts scans already-dequoted text for the verbatim expansion
// forms the lexer passed through (`$name`, `${...}`, `$(...)`, `` `...` ``,
// `$((...))`) and, when allowGlob is set, runs of unquoted glob
// metacharacters. Everything else accumulates into LiteralPart runs.
//
// Quoting in this spec is tracked per-word rather than per-rune (the lexer
// reports one Flags.Quoted bit for the whole token), so a partially-quoted
// word such as `foo"*"bar` is treated as fully quoted for glob purposes:
// conservative, but never produces a false GlobPattern inside a quoted
// region.
func (p *Parser) splitWordParts(text string, quoted bool, base token.Position) ([]ast.WordPart, error) {
	var parts []ast.WordPart
	var lit strings.Builder
	litStart := 0

	flush := func(end int) {
		if lit.Len() == 0 {
			return
		}
		part := &ast.LiteralPart{Text: lit.String()}
		p.setId(part)
		p.setSpan(part, spanAt(base, litStart, end))
		parts = append(parts, part)
		lit.Reset()
	}

	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '$' && i+1 < len(text):
			flush(i)
			part, consumed, err := p.scanDollar(text[i:], base, i)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
			i += consumed
			litStart = i

		case c == '`':
			flush(i)
			part, consumed, err := p.scanBacktick(text[i:], base, i)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
			i += consumed
			litStart = i

		case !quoted && (c == '*' || c == '?'):
			flush(i)
			j := i + 1
			for j < len(text) && (text[j] == '*' || text[j] == '?') {
				j++
			}
			part := &ast.GlobPattern{Text: text[i:j]}
			p.setId(part)
			p.setSpan(part, spanAt(base, i, j))
			parts = append(parts, part)
			i = j
			litStart = i

		case !quoted && c == '[':
			if j, ok := findMatchingBracket(text, i); ok {
				flush(i)
				part := &ast.GlobPattern{Text: text[i : j+1]}
				p.setId(part)
				p.setSpan(part, spanAt(base, i, j+1))
				parts = append(parts, part)
				i = j + 1
				litStart = i
			} else {
				lit.WriteByte(c)
				i++
			}

		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush(len(text))

	if len(parts) == 0 {
		part := &ast.LiteralPart{Text: ""}
		p.setId(part)
		p.setSpan(part, spanAt(base, 0, 0))
		parts = append(parts, part)
	}
	return parts, nil
}

// findMatchingBracket finds the `]` closing a `[...]` glob bracket
// expression starting at text[start]=='['. A leading `!`/`^` negation and a
// leading `]` (literal, per glob convention) are tolerated.
func findMatchingBracket(text string, start int) (int, bool) {
	i := start + 1
	if i < len(text) && (text[i] == '!' || text[i] == '^') {
		i++
	}
	if i < len(text) && text[i] == ']' {
		i++
	}
	for i < len(text) {
		if text[i] == ']' {
			return i, true
		}
		i++
	}
	return 0, false
}

func spanAt(base token.Position, start, end int) token.Span {
	return token.Span{
		Start: token.Position{Line: base.Line, Column: base.Column + start, Offset: base.Offset + start},
		End:   token.Position{Line: base.Line, Column: base.Column + end, Offset: base.Offset + end},
	}
}

// scanDollar handles one `$`-led construct at the start of text, returning
// the WordPart and the number of bytes consumed.
func (p *Parser) scanDollar(text string, base token.Position, offset int) (ast.WordPart, int, error) {
	if strings.HasPrefix(text, "$((") {
		end, ok := findBalanced(text, 3, '(', ')', 2) // 2: the two '(' in "$((" are already consumed
		if !ok {
			return nil, 0, p.fail(diag.ErrUnclosedBrace, "arithmetic expansion", "unterminated $(( ... ))")
		}
		inner := text[3 : end-2]
		innerBase := addCols(base, offset+3)
		expr, err := p.parseArithmeticText(inner, innerBase)
		if err != nil {
			return nil, 0, p.fail(diag.ErrUnexpectedToken, "arithmetic expansion", err.Error())
		}
		part := &ast.ArithmeticExpansion{Expression: expr}
		p.setId(part)
		p.setSpan(part, spanAt(base, offset, offset+end))
		return part, end, nil
	}

	if strings.HasPrefix(text, "$(") {
		end, ok := findBalanced(text, 2, '(', ')', 1)
		if !ok {
			return nil, 0, p.fail(diag.ErrUnclosedBrace, "command substitution", "unterminated $( ... )")
		}
		inner := text[2 : end-1]
		part := &ast.CommandSubstitution{Body: inner, Backtick: false}
		p.setId(part)
		p.setSpan(part, spanAt(base, offset, offset+end))
		return part, end, nil
	}

	if strings.HasPrefix(text, "${") {
		end, ok := findBalanced(text, 2, '{', '}', 1)
		if !ok {
			return nil, 0, p.fail(diag.ErrUnclosedBrace, "parameter expansion", "unterminated ${ ... }")
		}
		inner := text[2 : end-1]
		innerBase := addCols(base, offset+2)
		part := paramexpand.Parse(inner, innerBase, &p.gen, p.posMap)
		p.setSpan(part, spanAt(base, offset, offset+end))
		return part, end, nil
	}

	// Bare `$name`, `$1`-`$9`, or a single-char special parameter.
	r := text[1]
	switch {
	case isIdentStartByte(r):
		j := 2
		for j < len(text) && isIdentPartByte(text[j]) {
			j++
		}
		part := &ast.ParameterExpansion{Parameter: text[1:j]}
		p.setId(part)
		p.setSpan(part, spanAt(base, offset, offset+j))
		return part, j, nil
	case r >= '0' && r <= '9':
		part := &ast.ParameterExpansion{Parameter: string(r)}
		p.setId(part)
		p.setSpan(part, spanAt(base, offset, offset+2))
		return part, 2, nil
	case strings.ContainsRune("$?!@*-#", rune(r)):
		part := &ast.ParameterExpansion{Parameter: string(r)}
		p.setId(part)
		p.setSpan(part, spanAt(base, offset, offset+2))
		return part, 2, nil
	default:
		// A lone `$` not followed by anything recognizable: literal dollar.
		part := &ast.LiteralPart{Text: "$"}
		p.setId(part)
		p.setSpan(part, spanAt(base, offset, offset+1))
		return part, 1, nil
	}
}

// scanBacktick consumes a backtick command substitution, honoring
// backslash escapes before the closing backtick per spec §4.2.
func (p *Parser) scanBacktick(text string, base token.Position, offset int) (ast.WordPart, int, error) {
	i := 1
	for i < len(text) {
		if text[i] == '\\' && i+1 < len(text) {
			i += 2
			continue
		}
		if text[i] == '`' {
			break
		}
		i++
	}
	if i >= len(text) {
		return nil, 0, p.fail(diag.ErrUnclosedQuote, "command substitution", "unterminated backtick substitution")
	}
	inner := text[1:i]
	part := &ast.CommandSubstitution{Body: inner, Backtick: true}
	p.setId(part)
	p.setSpan(part, spanAt(base, offset, offset+i+1))
	return part, i + 1, nil
}

// findBalanced scans text starting at index `from` (just past the already-
// consumed opening delimiter run) for the point where nesting returns to
// zero, honoring single/double quotes so an unescaped quoted delimiter
// doesn't end the construct early. initialDepth is the number of opening
// delimiters already consumed before `from` (2 for "$((", 1 for "$(" and
// "${"). Returns the index just past the final closing delimiter.
func findBalanced(text string, from int, open, close rune, initialDepth int) (int, bool) {
	depth := initialDepth
	i := from
	inSingle, inDouble := false, false
	for i < len(text) {
		r := rune(text[i])
		switch {
		case inSingle:
			if r == '\'' {
				inSingle = false
			}
			i++
		case inDouble:
			if r == '\\' && i+1 < len(text) {
				i += 2
				continue
			}
			if r == '"' {
				inDouble = false
			}
			i++
		case r == '\'':
			inSingle = true
			i++
		case r == '"':
			inDouble = true
			i++
		case r == '\\' && i+1 < len(text):
			i += 2
		case r == open:
			depth++
			i++
		case r == close:
			depth--
			i++
			if depth == 0 {
				return i, true
			}
		default:
			i++
		}
	}
	return 0, false
}

func addCols(base token.Position, n int) token.Position {
	return token.Position{Line: base.Line, Column: base.Column + n, Offset: base.Offset + n}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentPartByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}
