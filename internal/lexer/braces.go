package lexer

import "github.com/jchip/safeshell/pkg/token"

// lexLeftBrace implements spec §4.2's brace-expansion-vs-literal-brace
// disambiguation for a `{` that starts a fresh token. If the next character
// is whitespace, a newline or an operator, the brace cannot be the start of
// an expansion/literal run and is emitted as LBRACE (the `{ ... }` command
// grouping keyword). Otherwise the content up to the matching `}` is
// looked ahead: if a matching close is found before any disqualifying
// separator, the whole run belongs to a word and is delegated to lexWord
// (which performs the actual consumption via absorbBrace); this covers both
// brace expansion (`{a,b}`, `{1..5}`) and a merely-balanced literal brace
// run (including the empty `{}`).
func (l *Lexer) lexLeftBrace(start token.Position) token.Token {
	first := l.peekChar()
	if first == 0 || first == ' ' || first == '\t' || first == '\n' || first == '\r' || isOperatorStart(first) {
		l.readChar()
		return newToken(token.LBRACE, "{", start, l.Position(), token.Flags{})
	}

	depth := 0
	matched := false
	disqualified := false
	for i := 0; ; i++ {
		r := l.peekCharN(i)
		if r == 0 {
			break
		}
		if r == '\n' {
			disqualified = true
			break
		}
		if r == ' ' || r == '\t' || isOperatorStart(r) {
			disqualified = true
			break
		}
		if r == '{' {
			depth++
			continue
		}
		if r == '}' {
			if depth == 0 {
				matched = true
				break
			}
			depth--
			continue
		}
	}

	if disqualified || !matched {
		l.readChar()
		return newToken(token.LBRACE, "{", start, l.Position(), token.Flags{})
	}
	return l.lexWord(start)
}

// lexRightBrace implements the companion rule: a `}` that starts a fresh
// token (i.e. was not already absorbed while scanning a preceding word) is
// emitted as RBRACE unless the very next character continues a word, in
// which case it is itself the start of a word (e.g. a stray "}foo").
func (l *Lexer) lexRightBrace(start token.Position) token.Token {
	if isWordContinuation(l.peekChar()) {
		return l.lexWord(start)
	}
	l.readChar()
	return newToken(token.RBRACE, "}", start, l.Position(), token.Flags{})
}
