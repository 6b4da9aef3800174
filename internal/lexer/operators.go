package lexer

import "github.com/jchip/safeshell/pkg/token"

type opMatch struct {
	kind   token.Kind
	lexeme string
}

// threeCharOps and twoCharOps are checked longest-match-first, per spec
// §4.2's greedy operator table. Three-char first, then two-char, then the
// single-char fallback table.
var threeCharOps = []opMatch{
	{token.DSEMI_AMP, ";;&"},
	{token.TLESS, "<<<"},
	{token.AMP_DGREAT, "&>>"},
	{token.DLESS_DASH, "<<-"},
}

var twoCharOps = []opMatch{
	{token.DLBRACK, "[["},
	{token.DRBRACK, "]]"},
	{token.DLPAREN, "(("},
	{token.DRPAREN, "))"},
	{token.AND_AND, "&&"},
	{token.OR_OR, "||"},
	{token.DSEMI, ";;"},
	{token.SEMI_AMP, ";&"},
	{token.PIPE_AMP, "|&"},
	{token.DGREAT, ">>"},
	{token.DLESS, "<<"},
	{token.LESS_AMP, "<&"},
	{token.GREAT_AMP, ">&"},
	{token.LESS_GREAT, "<>"},
	{token.CLOBBER, ">|"},
	{token.AMP_GREAT, "&>"},
	{token.LESS_PAREN, "<("},
	{token.GREAT_PAREN, ">("},
}

var singleCharOps = map[rune]opMatch{
	'|': {token.PIPE, "|"},
	'&': {token.AMP, "&"},
	';': {token.SEMICOLON, ";"},
	'(': {token.LPAREN, "("},
	')': {token.RPAREN, ")"},
	'<': {token.LESS, "<"},
	'>': {token.GREAT, ">"},
}

// tryOperator attempts to match the longest operator starting at the
// current character. On success it consumes the matched characters and
// returns true.
func (l *Lexer) tryOperator() (opMatch, bool) {
	c0 := l.ch
	if (c0 == '[' || c0 == ']') && l.peekChar() == c0 && !isWordContinuation(l.peekCharN(1)) {
		l.readChar()
		l.readChar()
		if c0 == '[' {
			return opMatch{token.DLBRACK, "[["}, true
		}
		return opMatch{token.DRBRACK, "]]"}, true
	}
	if !isOperatorStart(c0) {
		return opMatch{}, false
	}
	c1 := l.peekChar()
	c2 := l.peekCharN(1)
	three := string([]rune{c0, c1, c2})
	for _, op := range threeCharOps {
		if op.lexeme == three {
			l.readChar()
			l.readChar()
			l.readChar()
			return op, true
		}
	}
	two := string([]rune{c0, c1})
	for _, op := range twoCharOps {
		if op.lexeme == two {
			l.readChar()
			l.readChar()
			return op, true
		}
	}
	if op, ok := singleCharOps[c0]; ok {
		l.readChar()
		return op, true
	}
	return opMatch{}, false
}

func isOperatorStart(r rune) bool {
	switch r {
	case '|', '&', ';', '(', ')', '<', '>':
		return true
	default:
		return false
	}
}

// lexBang handles `!=` (a WORD, string-inequality to be parsed inside
// `[[ ]]` by the grammar) versus a standalone BANG.
func (l *Lexer) lexBang(start token.Position) token.Token {
	if l.peekChar() == '=' {
		return l.lexWord(start)
	}
	l.readChar()
	return newToken(token.BANG, "!", start, l.Position(), token.Flags{})
}
