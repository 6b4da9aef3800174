package token

import "testing"

func TestSpanUnion(t *testing.T) {
	a := Span{Start: Position{Line: 1, Column: 1, Offset: 0}, End: Position{Line: 1, Column: 5, Offset: 4}}
	b := Span{Start: Position{Line: 2, Column: 1, Offset: 10}, End: Position{Line: 2, Column: 8, Offset: 17}}

	u := a.Union(b)
	if u.Start.Offset != 0 || u.End.Offset != 17 {
		t.Fatalf("unexpected union: %+v", u)
	}
}

func TestSpanUnionIsSymmetric(t *testing.T) {
	a := Span{Start: Position{Offset: 5}, End: Position{Offset: 9}}
	b := Span{Start: Position{Offset: 0}, End: Position{Offset: 3}}

	u1 := a.Union(b)
	u2 := b.Union(a)
	if u1 != u2 {
		t.Fatalf("Union should be symmetric, got %+v vs %+v", u1, u2)
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 3, Column: 7}
	if got := p.String(); got != "3:7" {
		t.Fatalf("Position.String() = %q, want %q", got, "3:7")
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if IF.String() != "if" {
		t.Fatalf("IF.String() = %q, want %q", IF.String(), "if")
	}
	var bogus Kind = 9999
	if bogus.String() != "UNKNOWN" {
		t.Fatalf("unknown kind should stringify to UNKNOWN, got %q", bogus.String())
	}
}

func TestTokenLengthCountsRunesNotBytes(t *testing.T) {
	tok := Token{Lexeme: "café"}
	if tok.Length() != 4 {
		t.Fatalf("Length() = %d, want 4", tok.Length())
	}
}

func TestReservedWordsRoundTrip(t *testing.T) {
	for word, kind := range ReservedWords {
		if kindNames[kind] != word {
			t.Fatalf("ReservedWords[%q] = %v, whose kindNames entry is %q", word, kind, kindNames[kind])
		}
	}
}

func TestIdGeneratorNeverReturnsZero(t *testing.T) {
	var gen IdGenerator
	if gen.Next() == 0 {
		t.Fatalf("first generated id should be non-zero (0 means unassigned)")
	}
}
