package ast

import (
	"testing"

	"github.com/jchip/safeshell/pkg/token"
)

func pos(offset int) token.Position {
	return token.Position{Line: 1, Column: offset + 1, Offset: offset}
}

func TestIdGeneratorIncreasesMonotonically(t *testing.T) {
	var gen IdGenerator
	first := gen.Next()
	second := gen.Next()
	third := gen.Next()
	if !(first < second && second < third) {
		t.Fatalf("expected strictly increasing ids, got %d, %d, %d", first, second, third)
	}
}

func TestPositionMapSetGetHas(t *testing.T) {
	m := NewPositionMap()
	id := NodeId(7)
	want := token.Span{Start: pos(0), End: pos(4)}

	if m.Has(id) {
		t.Fatalf("fresh map should not have id %d", id)
	}
	m.Set(id, want)
	if !m.Has(id) {
		t.Fatalf("expected id %d to be present after Set", id)
	}
	got, ok := m.Get(id)
	if !ok || got != want {
		t.Fatalf("Get(%d) = %+v, %v, want %+v, true", id, got, ok, want)
	}
}

func TestPositionMapSizeAndClear(t *testing.T) {
	m := NewPositionMap()
	m.Set(1, token.Span{})
	m.Set(2, token.Span{})
	if m.Size() != 2 {
		t.Fatalf("expected Size() == 2, got %d", m.Size())
	}
	m.Clear()
	if m.Size() != 0 {
		t.Fatalf("expected Size() == 0 after Clear, got %d", m.Size())
	}
}

func TestPositionMapSpanUnionsStartAndEnd(t *testing.T) {
	m := NewPositionMap()
	m.Set(1, token.Span{Start: pos(0), End: pos(3)})
	m.Set(2, token.Span{Start: pos(10), End: pos(15)})

	union, ok := m.Span(1, 2)
	if !ok {
		t.Fatalf("expected both ids to be present")
	}
	if union.Start.Offset != 0 || union.End.Offset != 15 {
		t.Fatalf("unexpected union span: %+v", union)
	}
}

func TestPositionMapSpanMissingId(t *testing.T) {
	m := NewPositionMap()
	m.Set(1, token.Span{Start: pos(0), End: pos(3)})
	if _, ok := m.Span(1, 99); ok {
		t.Fatalf("expected ok == false when an id is missing")
	}
}

func TestPositionMapEntriesIsASnapshotCopy(t *testing.T) {
	m := NewPositionMap()
	m.Set(1, token.Span{Start: pos(0), End: pos(1)})
	entries := m.Entries()
	entries[2] = token.Span{Start: pos(5), End: pos(6)}
	if m.Has(2) {
		t.Fatalf("mutating the snapshot copy must not affect the map")
	}
}
