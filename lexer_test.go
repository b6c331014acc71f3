package bfopt

import (
	test "testing"
)

func TestLexFiltersToSignificantChars(t *test.T) {
	tokens := Lex([]byte("+ hello -\n>x<"))

	want := []Char{CharAdd, CharSub, CharIncPtr, CharDecPtr}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, tok := range tokens {
		if tok.Char != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], tok.Char)
		}
	}
}

func TestLexTracksLineAndColumn(t *test.T) {
	tokens := Lex([]byte("+\n  -"))

	if tokens[0].Location != (Location{Line: 1, Col: 1}) {
		t.Errorf("expected first token at (1,1), got %+v", tokens[0].Location)
	}
	if tokens[1].Location != (Location{Line: 2, Col: 3}) {
		t.Errorf("expected second token at (2,3), got %+v", tokens[1].Location)
	}
}

func TestLexEmptySource(t *test.T) {
	tokens := Lex([]byte(""))
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %d", len(tokens))
	}
}
