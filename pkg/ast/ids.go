package ast

import "github.com/jchip/safeshell/pkg/token"

// NodeId and TokenId are opaque, monotonically increasing integers issued by
// a per-parse generator. They carry no meaning across parses and are only
// used to key into a PositionMap. A zero value means "no id assigned".
type NodeId = token.Id
type TokenId = token.Id

// IdGenerator hands out strictly increasing NodeIds/TokenIds for one parse.
// It is a thin wrapper over token.IdGenerator so that the parser's token ids
// and the AST's node ids can share one counter when desired, or be kept
// separate by constructing two generators.
type IdGenerator struct {
	gen token.IdGenerator
}

// Next returns the next identifier and advances the generator.
func (g *IdGenerator) Next() NodeId {
	return g.gen.Next()
}

// PositionMap associates node/token ids with their source spans.
//
// It is populated with node spans by the grammar parser and its arithmetic
// and parameter-expansion sub-parsers during one parse; the lexer does not
// write to it. After the parse returns, the caller owns
// the map and may augment it, but within one parse the parser is the only
// writer.
type PositionMap struct {
	spans map[NodeId]token.Span
}

// NewPositionMap creates an empty PositionMap.
func NewPositionMap() *PositionMap {
	return &PositionMap{spans: make(map[NodeId]token.Span)}
}

// Set records the span for the given id, overwriting any previous entry.
func (m *PositionMap) Set(id NodeId, span token.Span) {
	if m.spans == nil {
		m.spans = make(map[NodeId]token.Span)
	}
	m.spans[id] = span
}

// Get returns the span recorded for id, and whether it was present.
func (m *PositionMap) Get(id NodeId) (token.Span, bool) {
	span, ok := m.spans[id]
	return span, ok
}

// Has reports whether id has a recorded span.
func (m *PositionMap) Has(id NodeId) bool {
	_, ok := m.spans[id]
	return ok
}

// Size returns the number of recorded entries.
func (m *PositionMap) Size() int {
	return len(m.spans)
}

// Clear removes every recorded entry.
func (m *PositionMap) Clear() {
	m.spans = make(map[NodeId]token.Span)
}

// Entries returns a snapshot copy of the id->span table.
func (m *PositionMap) Entries() map[NodeId]token.Span {
	out := make(map[NodeId]token.Span, len(m.spans))
	for k, v := range m.spans {
		out[k] = v
	}
	return out
}

// Span returns the union span of two recorded ids: the start of startId's
// span through the end of endId's span. The second return value is false if
// either id is not present in the map.
func (m *PositionMap) Span(startId, endId NodeId) (token.Span, bool) {
	start, ok := m.spans[startId]
	if !ok {
		return token.Span{}, false
	}
	end, ok := m.spans[endId]
	if !ok {
		return token.Span{}, false
	}
	return token.Span{Start: start.Start, End: end.End}, true
}
