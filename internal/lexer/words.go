package lexer

import (
	"regexp"
	"strings"

	"github.com/jchip/safeshell/pkg/token"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
var digitsPattern = regexp.MustCompile(`^[0-9]+$`)
var assignmentPrefix = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\[[^\]]*\])?\+?=`)

// classifyWord implements spec §4.2's classification rules, used for both
// the fast path and the slow path. quotedAtStart suppresses reserved-word
// and ASSIGNMENT_WORD recognition when the word begins with a quote
// character (the slow-path exception called out in §4.2).
func classifyWord(value string, quotedAtStart bool) token.Kind {
	if !quotedAtStart {
		if kw, ok := token.ReservedWords[value]; ok {
			return kw
		}
	}
	if identPattern.MatchString(value) {
		return token.NAME
	}
	if digitsPattern.MatchString(value) {
		return token.NUMBER
	}
	if !quotedAtStart && assignmentPrefix.MatchString(value) {
		return token.ASSIGNMENT_WORD
	}
	return token.WORD
}

func isWordContinuation(r rune) bool {
	if r == 0 {
		return false
	}
	switch r {
	case ' ', '\t', '\n', '\r':
		return false
	}
	return !isOperatorStart(r)
}

// lexWord scans a word token, honoring quoting and expansion syntax per
// spec §4.2. It produces Value as the naive concatenated literal form:
// quote delimiters are stripped, double-quote backslash escapes are
// resolved, but `$...`/backtick/`$((...))` sequences are copied through
// verbatim (unevaluated) since splitting them into structured Parts is the
// grammar parser's job (internal/parser), which scans this token's Lexeme
// to do so.
func (l *Lexer) lexWord(start token.Position) token.Token {
	var sb strings.Builder
	quoted := false
	singleQuoted := false
	quotedAtStart := isQuoteStart(l.ch)

outer:
	for {
		switch {
		case l.ch == 0:
			break outer
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			break outer
		case isOperatorStart(l.ch):
			break outer
		case l.ch == '\'':
			quoted = true
			if sb.Len() == 0 {
				singleQuoted = true
			}
			l.readChar()
			for l.ch != '\'' && l.ch != 0 {
				if l.ch == '\n' {
					l.advanceNewline()
				}
				sb.WriteRune(l.ch)
				l.readChar()
			}
			if l.ch == '\'' {
				l.readChar()
			}
		case l.ch == '"':
			quoted = true
			l.lexDoubleQuoted(&sb)
		case l.ch == '\\':
			if l.peekChar() == '\n' {
				l.readChar()
				l.readChar()
				l.advanceNewline()
				continue
			}
			l.readChar()
			if l.ch != 0 {
				sb.WriteRune(l.ch)
				l.readChar()
			}
		case l.ch == '$':
			quoted = l.lexDollar(&sb) || quoted
		case l.ch == '`':
			quoted = true
			l.lexBacktick(&sb)
		case l.ch == '{':
			if !l.absorbBrace(&sb) {
				break outer
			}
		case l.ch == '}':
			if isWordContinuation(l.peekChar()) {
				sb.WriteByte('}')
				l.readChar()
			} else {
				break outer
			}
		default:
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}

	value := sb.String()
	kind := classifyWord(value, quotedAtStart)
	return newToken(kind, value, start, l.Position(), token.Flags{Quoted: quoted, SingleQuoted: singleQuoted})
}

func isQuoteStart(r rune) bool {
	return r == '\'' || r == '"'
}

// lexDoubleQuoted consumes a "..." segment (the opening quote is the
// current character), resolving \$ \` \" \\ and eliding \<newline>, while
// copying $-expansions and backtick substitutions through unevaluated.
func (l *Lexer) lexDoubleQuoted(sb *strings.Builder) {
	l.readChar() // consume opening "
	for l.ch != '"' && l.ch != 0 {
		switch {
		case l.ch == '\\':
			nc := l.peekChar()
			switch nc {
			case '$', '`', '"', '\\':
				l.readChar()
				sb.WriteRune(l.ch)
				l.readChar()
			case '\n':
				l.readChar()
				l.readChar()
				l.advanceNewline()
			default:
				sb.WriteRune(l.ch)
				l.readChar()
			}
		case l.ch == '$':
			l.lexDollar(sb)
		case l.ch == '`':
			l.lexBacktick(sb)
		default:
			if l.ch == '\n' {
				l.advanceNewline()
			}
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	if l.ch == '"' {
		l.readChar()
	}
}

// lexBacktick consumes a `...` command substitution, honoring backslash
// escapes, collecting verbatim (including the surrounding backticks) until
// the unescaped closing backtick.
func (l *Lexer) lexBacktick(sb *strings.Builder) {
	sb.WriteByte('`')
	l.readChar()
	for l.ch != '`' && l.ch != 0 {
		if l.ch == '\\' {
			sb.WriteRune(l.ch)
			l.readChar()
			if l.ch != 0 {
				sb.WriteRune(l.ch)
				l.readChar()
			}
			continue
		}
		if l.ch == '\n' {
			l.advanceNewline()
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '`' {
		sb.WriteByte('`')
		l.readChar()
	}
}

// lexDollar consumes a `$`-led construct: a special parameter, `$name`,
// `${...}`, `$(...)`, `$((...))`, `$[...]`, `$'...'` or `$"..."`. Returns
// true if the construct involves quoting (ANSI-C/locale forms) so the
// caller can propagate the Quoted flag.
func (l *Lexer) lexDollar(sb *strings.Builder) bool {
	sb.WriteByte('$')
	l.readChar() // consume $
	switch l.ch {
	case '\'':
		sb.WriteByte('\'')
		l.readChar()
		for l.ch != '\'' && l.ch != 0 {
			if l.ch == '\\' {
				sb.WriteRune(l.ch)
				l.readChar()
				if l.ch != 0 {
					sb.WriteRune(l.ch)
					l.readChar()
				}
				continue
			}
			sb.WriteRune(l.ch)
			l.readChar()
		}
		if l.ch == '\'' {
			sb.WriteByte('\'')
			l.readChar()
		}
		return true
	case '"':
		sb.WriteByte('"')
		l.readChar()
		for l.ch != '"' && l.ch != 0 {
			if l.ch == '\\' {
				sb.WriteRune(l.ch)
				l.readChar()
				if l.ch != 0 {
					sb.WriteRune(l.ch)
					l.readChar()
				}
				continue
			}
			sb.WriteRune(l.ch)
			l.readChar()
		}
		if l.ch == '"' {
			sb.WriteByte('"')
			l.readChar()
		}
		return true
	case '(':
		if l.peekChar() == '(' {
			l.consumeBalanced(sb, '(', ')', 2)
		} else {
			l.consumeBalanced(sb, '(', ')', 1)
		}
		return false
	case '[':
		l.consumeBalanced(sb, '[', ']', 1)
		return false
	case '{':
		l.consumeBalanced(sb, '{', '}', 1)
		return false
	case '#', '?', '!', '@', '*', '-', '$':
		sb.WriteRune(l.ch)
		l.readChar()
		return false
	default:
		if l.ch >= '0' && l.ch <= '9' {
			sb.WriteRune(l.ch)
			l.readChar()
			return false
		}
		// bare $name: consume identifier characters
		for (l.ch >= 'A' && l.ch <= 'Z') || (l.ch >= 'a' && l.ch <= 'z') || (l.ch >= '0' && l.ch <= '9') || l.ch == '_' {
			sb.WriteRune(l.ch)
			l.readChar()
		}
		return false
	}
}

// consumeBalanced copies characters verbatim starting at the current open
// character (open must equal l.ch, already counted once into depth) through
// to the matching close, honoring nested quotes so that an unbalanced
// delimiter inside a string literal doesn't end the scan early. depth
// copies of `open` must close before the construct is considered complete
// (used with depth=2 for `$((`, whose matching close is `))`).
func (l *Lexer) consumeBalanced(sb *strings.Builder, open, closeCh rune, depth int) {
	remaining := depth
	for remaining > 0 && l.ch == open {
		sb.WriteRune(l.ch)
		l.readChar()
		remaining--
	}
	count := depth
	for count > 0 && l.ch != 0 {
		switch {
		case l.ch == '\'':
			sb.WriteRune(l.ch)
			l.readChar()
			for l.ch != '\'' && l.ch != 0 {
				sb.WriteRune(l.ch)
				l.readChar()
			}
			if l.ch == '\'' {
				sb.WriteRune(l.ch)
				l.readChar()
			}
		case l.ch == '"':
			sb.WriteRune(l.ch)
			l.readChar()
			for l.ch != '"' && l.ch != 0 {
				if l.ch == '\\' {
					sb.WriteRune(l.ch)
					l.readChar()
					if l.ch != 0 {
						sb.WriteRune(l.ch)
						l.readChar()
					}
					continue
				}
				sb.WriteRune(l.ch)
				l.readChar()
			}
			if l.ch == '"' {
				sb.WriteRune(l.ch)
				l.readChar()
			}
		case l.ch == '\\':
			sb.WriteRune(l.ch)
			l.readChar()
			if l.ch != 0 {
				sb.WriteRune(l.ch)
				l.readChar()
			}
		case l.ch == open:
			sb.WriteRune(l.ch)
			l.readChar()
			count++
		case l.ch == closeCh:
			sb.WriteRune(l.ch)
			l.readChar()
			count--
		default:
			if l.ch == '\n' {
				l.advanceNewline()
			}
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// absorbBrace consumes a `{...}` run that is not itself token-initial (it
// appears mid-word, e.g. "a{b,c}d") — these are always absorbed into the
// surrounding word; the LBRACE-vs-WORD decision in lexLeftBrace only
// applies when `{` starts a fresh token. Returns false if the run is
// unterminated before a separator is reached without finding the matching
// `}` and nothing was consumed (so the caller can end the word instead).
func (l *Lexer) absorbBrace(sb *strings.Builder) bool {
	nested := 0
	for i := 0; ; i++ {
		r := l.peekCharN(i)
		if r == 0 || r == ' ' || r == '\t' || r == '\r' || r == '\n' || isOperatorStart(r) {
			return false
		}
		if r == '{' {
			nested++
		} else if r == '}' {
			if nested == 0 {
				break
			}
			nested--
		}
	}
	depth := 0
	sb.WriteByte('{')
	l.readChar()
	depth++
	for depth > 0 && l.ch != 0 {
		switch l.ch {
		case '{':
			depth++
			sb.WriteByte('{')
			l.readChar()
		case '}':
			depth--
			sb.WriteByte('}')
			l.readChar()
		case '\'':
			sb.WriteByte('\'')
			l.readChar()
			for l.ch != '\'' && l.ch != 0 {
				sb.WriteRune(l.ch)
				l.readChar()
			}
			if l.ch == '\'' {
				sb.WriteByte('\'')
				l.readChar()
			}
		case '"':
			l.lexDoubleQuoted(sb)
		case '$':
			l.lexDollar(sb)
		default:
			if l.ch == '\n' {
				l.advanceNewline()
			}
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	return true
}
