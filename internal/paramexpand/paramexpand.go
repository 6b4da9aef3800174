// Package paramexpand implements SafeShell's parameter-expansion
// sub-parser (spec §4.5): given the inside of a `${…}` construct, it
// classifies indirection, length queries, the parameter name/subscript,
// and a trailing modifier, producing one ast.ParameterExpansion. It is
// shared by the shell grammar parser (for `${…}` appearing in ordinary
// words) and the arithmetic Pratt parser (for `${…}` appearing inside
// `$(( … ))`), so it lives below both rather than inside either.
package paramexpand

import (
	"strings"

	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/token"
)

var twoCharModifiers = []string{":-", ":=", ":?", ":+", "##", "%%", "^^", ",,", "//", "/#", "/%"}
var oneCharModifiers = "-=?+#%^,/@"

// specialParams is the set of single-character special parameters
// recognized as a complete parameter name on their own.
const specialParams = "$?!@*-"

// Parse classifies the inner text of a `${…}` construct (with the `${`
// and `}` delimiters already stripped) into an ast.ParameterExpansion.
// basePos is the source position of the first rune of inner, used to
// compute an absolute Span; gen/posMap register the new node's id.
func Parse(inner string, basePos token.Position, gen *ast.IdGenerator, posMap *ast.PositionMap) *ast.ParameterExpansion {
	runes := []rune(inner)
	i := 0
	indirect := false

	if len(runes) > 0 && runes[0] == '!' && inner != "!" {
		indirect = true
		i = 1
	}

	var parameter string
	if !indirect && i < len(runes) && runes[i] == '#' {
		rest := string(runes[i:])
		if rest == "#" || rest == "#@" || rest == "#*" {
			parameter = rest
			i = len(runes)
		} else {
			// length query: '#' is a prefix on the parameter name that
			// follows, e.g. ${#arr} / ${#arr[@]} / ${#1} / ${#-}.
			i++
			nameStart := i
			if i < len(runes) && strings.ContainsRune(specialParams, runes[i]) {
				i++
			} else if i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
				i++
			} else {
				i = consumeName(runes, i)
			}
			parameter = "#" + string(runes[nameStart:i])
		}
	} else {
		nameStart := i
		if i < len(runes) && strings.ContainsRune(specialParams, runes[i]) {
			i++
		} else if i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			i++
		} else {
			i = consumeName(runes, i)
		}
		parameter = string(runes[nameStart:i])
	}

	var subscript string
	hasSubscript := false
	if i < len(runes) && runes[i] == '[' {
		depth := 0
		start := i
		for i < len(runes) {
			if runes[i] == '[' {
				depth++
			} else if runes[i] == ']' {
				depth--
				if depth == 0 {
					i++
					break
				}
			}
			i++
		}
		subscript = string(runes[start:i])
		hasSubscript = true
	}

	remainder := string(runes[i:])
	modifier := ""
	hasModifier := false
	var modifierArgText string
	if remainder != "" {
		matched := false
		for _, m := range twoCharModifiers {
			if strings.HasPrefix(remainder, m) {
				modifier = m
				modifierArgText = remainder[len(m):]
				matched = true
				break
			}
		}
		if !matched && strings.ContainsRune(oneCharModifiers, rune(remainder[0])) {
			modifier = remainder[:1]
			modifierArgText = remainder[1:]
			matched = true
		}
		if !matched {
			modifier = remainder
			modifierArgText = ""
		}
		hasModifier = true
	}

	node := &ast.ParameterExpansion{
		Parameter:    parameter,
		Indirect:     indirect,
		Subscript:    subscript,
		HasSubscript: hasSubscript,
		Modifier:     modifier,
		HasModifier:  hasModifier,
	}
	if hasModifier && modifierArgText != "" {
		argWord := &ast.Word{Value: modifierArgText, Parts: []ast.WordPart{
			&ast.LiteralPart{Text: modifierArgText},
		}}
		argWord.SetId(gen.Next())
		argWord.SetSpan(token.Span{Start: basePos, End: basePos})
		posMap.Set(argWord.Id(), argWord.Span())
		node.ModifierArg = argWord
	}

	node.SetId(gen.Next())
	end := basePos
	end.Offset += len(inner)
	node.SetSpan(token.Span{Start: basePos, End: end})
	posMap.Set(node.Id(), node.Span())
	return node
}

func consumeName(runes []rune, i int) int {
	if i >= len(runes) {
		return i
	}
	if !isIdentStart(runes[i]) {
		return i
	}
	i++
	for i < len(runes) && isIdentPart(runes[i]) {
		i++
	}
	return i
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
