// Package lexer implements SafeShell's shell lexer (spec §4.2): a
// context-sensitive, streaming tokenizer that tracks quoting state,
// recognizes multi-character operators, distinguishes assignments from
// commands, handles deferred here-document bodies, arithmetic/command
// substitutions, brace expansion vs. literal braces, and ANSI-C /
// locale-quoted strings.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/jchip/safeshell/pkg/token"
)

// pendingHeredoc is one registered `<<`/`<<-` delimiter awaiting body
// capture after the next NEWLINE.
type pendingHeredoc struct {
	delimiter string
	stripTabs bool
	quoted    bool
}

// Lexer is a lazy, restartable tokenizer over shell source text.
//
// Like the teacher's DWScript lexer, columns are counted in runes, not
// bytes or display width; Offset is the 0-based byte offset into input.
type Lexer struct {
	input        string
	pos          int // byte offset of ch
	readPos      int // byte offset of next rune
	line         int
	column       int
	ch           rune
	pending      []pendingHeredoc
	buffered     []token.Token
}

// New creates a Lexer for the given source text.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// peekCharN returns the rune n runes ahead of readPos, counting runes
// rather than bytes (n=0 is the same as peekChar).
func (l *Lexer) peekCharN(n int) rune {
	pos := l.readPos
	for i := 0; i < n && pos < len(l.input); i++ {
		_, size := utf8.DecodeRuneInString(l.input[pos:])
		pos += size
	}
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

// Position returns the current Position for token creation.
func (l *Lexer) Position() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.pos}
}

// AtEnd reports whether the lexer has consumed all input.
func (l *Lexer) AtEnd() bool {
	return l.ch == 0 && l.pos >= len(l.input)
}

func (l *Lexer) advanceNewline() {
	l.line++
	l.column = 0
}

// skipWhitespace skips spaces, tabs and backslash-newline line
// continuations between tokens. Newlines themselves are not skipped here —
// they are emitted as NEWLINE tokens by the caller.
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\\' && l.peekChar() == '\n':
			l.readChar() // consume backslash
			l.readChar() // consume newline
			l.advanceNewline()
		default:
			return
		}
	}
}

// skipLineComment consumes from '#' to end of line (exclusive), returning
// the literal text including the leading '#'.
func (l *Lexer) skipLineComment() string {
	start := l.pos
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// AddPendingHeredoc registers a here-doc delimiter announced by a `<<`/`<<-`
// operator. Bodies are captured in FIFO order after the next NEWLINE.
func (l *Lexer) AddPendingHeredoc(delimiter string, stripTabs, quoted bool) {
	l.pending = append(l.pending, pendingHeredoc{delimiter: delimiter, stripTabs: stripTabs, quoted: quoted})
}

func newToken(kind token.Kind, lexeme string, start, end token.Position, flags token.Flags) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Span: token.Span{Start: start, End: end}, Flags: flags}
}

// Next returns the next token in the stream, draining any buffered tokens
// produced by a prior Peek first.
func (l *Lexer) Next() token.Token {
	l.ensureBuffered(0)
	t := l.buffered[0]
	l.buffered = l.buffered[1:]
	return t
}

// Peek returns the token n positions ahead without consuming it (Peek(0) ==
// the token Next() would return next).
func (l *Lexer) Peek(n int) token.Token {
	l.ensureBuffered(n)
	return l.buffered[n]
}

// ensureBuffered makes sure at least n+1 tokens are available in l.buffered,
// producing them one logical token at a time. A produced NEWLINE may itself
// cause one or more HEREDOC_CONTENT tokens to be appended immediately after
// it, in FIFO order, before any later token — fillOne keeps that ordering
// atomic so Peek can never observe heredoc bodies ahead of their newline.
func (l *Lexer) ensureBuffered(n int) {
	for len(l.buffered) <= n {
		l.fillOne()
	}
}

// fillOne appends exactly one primary token (plus any heredoc bodies it
// triggers) to l.buffered.
func (l *Lexer) fillOne() {
	tok := l.nextInternal()
	l.buffered = append(l.buffered, tok)
	if tok.Kind == token.NEWLINE && len(l.pending) > 0 {
		l.captureHeredocs()
	}
}

// Tokenize drains the lexer to end of input, including a trailing EOF
// token.
func (l *Lexer) Tokenize() []token.Token {
	var out []token.Token
	for {
		t := l.Next()
		out = append(out, t)
		if t.Kind == token.EOF {
			return out
		}
	}
}

func (l *Lexer) nextInternal() token.Token {
	l.skipWhitespace()
	start := l.Position()

	switch {
	case l.ch == 0:
		return newToken(token.EOF, "", start, start, token.Flags{})

	case l.ch == '\n':
		l.readChar()
		l.advanceNewline()
		return newToken(token.NEWLINE, "\n", start, l.Position(), token.Flags{})

	case l.ch == '#':
		text := l.skipLineComment()
		return newToken(token.COMMENT, text, start, l.Position(), token.Flags{})

	case l.ch == '{':
		return l.lexLeftBrace(start)

	case l.ch == '}':
		return l.lexRightBrace(start)

	case l.ch == '!':
		return l.lexBang(start)
	}

	if op, ok := l.tryOperator(); ok {
		return newToken(op.kind, op.lexeme, start, l.Position(), token.Flags{})
	}

	return l.lexWord(start)
}

// captureHeredocs drains the pending-heredoc queue in FIFO order, appending
// one HEREDOC_CONTENT token per entry to the internal buffer so that the
// next calls to Next()/Peek() surface them before any following token.
func (l *Lexer) captureHeredocs() {
	queue := l.pending
	l.pending = nil
	for _, entry := range queue {
		start := l.Position()
		var body strings.Builder
		for {
			lineStart := l.pos
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			line := l.input[lineStart:l.pos]
			trimmed := line
			if entry.stripTabs {
				trimmed = strings.TrimLeft(line, "\t")
			}
			atEOF := l.ch == 0
			if trimmed == entry.delimiter {
				if !atEOF {
					l.readChar() // consume the newline after the delimiter line
					l.advanceNewline()
				}
				break
			}
			body.WriteString(line)
			if atEOF {
				break
			}
			body.WriteByte('\n')
			l.readChar() // consume newline
			l.advanceNewline()
			if l.ch == 0 {
				break
			}
		}
		tok := newToken(token.HEREDOC_CONTENT, body.String(), start, l.Position(), token.Flags{Quoted: entry.quoted})
		l.buffered = append(l.buffered, tok)
	}
}
