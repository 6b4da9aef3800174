package parser

import "github.com/jchip/safeshell/pkg/token"

// ParserFunc is one step of a repeatable parse: it reports whether it
// consumed an item, or an error if the input was malformed.
type ParserFunc func() (bool, error)

// ManyUntil repeatedly applies parseFn until one of the terminator kinds
// is seen (or EOF is reached), returning the count of successful
// applications. It backs parseStatementList's body loop: every compound
// command's body (if/while/until/for/case arms, brace groups, subshells)
// shares this one loop rather than repeating it per production.
func (p *Parser) ManyUntil(parseFn ParserFunc, terminators ...token.Kind) (int, error) {
	count := 0
	for !p.atAny(terminators...) && !p.at(token.EOF) {
		ok, err := parseFn()
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}
		count++
	}
	return count, nil
}

// SeparatedList parses one or more items via parseItem, each followed by
// an optional separator of kind sep; it stops as soon as sep is absent. It
// backs case-arm pattern lists (`pat1 | pat2 | pat3)`).
func (p *Parser) SeparatedList(parseItem func() error, sep token.Kind) error {
	for {
		if err := parseItem(); err != nil {
			return err
		}
		if p.at(sep) {
			p.Advance()
			continue
		}
		return nil
	}
}
