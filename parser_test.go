package bfopt

import (
	test "testing"
)

func mustParse(t *test.T, src string) *Node {
	t.Helper()
	tree, err := Parse(Lex([]byte(src)))
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return tree
}

func TestParseFlatSequence(t *test.T) {
	tree := mustParse(t, "+++>-")
	if len(tree.Children) != 5 {
		t.Fatalf("expected 5 children, got %d", len(tree.Children))
	}
	if tree.Summary.HasNestedLoops {
		t.Errorf("flat sequence should not report nested loops")
	}
}

func TestParseUnmatchedLeftBracket(t *test.T) {
	_, err := Parse(Lex([]byte("[++")))
	if _, ok := err.(*UnmatchedLeftBracketError); !ok {
		t.Fatalf("expected *UnmatchedLeftBracketError, got %T (%v)", err, err)
	}
}

func TestParseUnmatchedRightBracket(t *test.T) {
	_, err := Parse(Lex([]byte("++]")))
	if _, ok := err.(*UnmatchedRightBracketError); !ok {
		t.Fatalf("expected *UnmatchedRightBracketError, got %T (%v)", err, err)
	}
}

func TestParseLoopSummaryPtrMovePerIteration(t *test.T) {
	tree := mustParse(t, "[->+<]")
	loop := tree.Children[0]
	if loop.Kind != NodeLoop {
		t.Fatalf("expected a loop node, got %v", loop.Kind)
	}
	if loop.Summary.PtrMovePerIteration == nil {
		t.Fatalf("expected a defined ptr_move_per_iteration")
	}
	if *loop.Summary.PtrMovePerIteration != 0 {
		t.Errorf("expected balanced loop (net 0), got %d", *loop.Summary.PtrMovePerIteration)
	}
	if !loop.Summary.HasAdd || !loop.Summary.HasAddPtr {
		t.Errorf("expected has_add and has_addptr both true")
	}
	if loop.Summary.HasIO || loop.Summary.HasNestedLoops {
		t.Errorf("did not expect io or nested loops")
	}
}

func TestParseNestedBalancedLoopDefinesPtrMove(t *test.T) {
	// The inner loop's own net delta is unbounded from the parser's point
	// of view only if it itself is unbalanced; here it is balanced, so the
	// outer loop's ptr_move_per_iteration should still be defined.
	tree := mustParse(t, "[>[-]<]")
	outer := tree.Children[0]
	if !outer.Summary.HasNestedLoops {
		t.Fatalf("expected has_nested_loops")
	}
	if outer.Summary.PtrMovePerIteration == nil || *outer.Summary.PtrMovePerIteration != 0 {
		t.Errorf("expected outer loop ptr_move_per_iteration = 0, got %v", outer.Summary.PtrMovePerIteration)
	}
}

func TestParseNestedLoopWithNonzeroNetDeltaLeavesOuterUndefined(t *test.T) {
	// The inner loop's own net pointer delta per iteration is -1 (defined
	// but unbalanced), so the outer loop's ptr_move_per_iteration must be
	// undefined even though every nested loop's own delta is known.
	tree := mustParse(t, "[>[->+<<]]")
	outer := tree.Children[0]
	if !outer.Summary.HasNestedLoops {
		t.Fatalf("expected has_nested_loops")
	}
	if outer.Summary.PtrMovePerIteration != nil {
		t.Errorf("expected outer ptr_move_per_iteration to be undefined, got %v", *outer.Summary.PtrMovePerIteration)
	}
}

func TestParseMinMaxPtr(t *test.T) {
	tree := mustParse(t, ">>><<")
	if tree.Summary.MaxPtr != 3 {
		t.Errorf("expected max_ptr 3, got %d", tree.Summary.MaxPtr)
	}
	if tree.Summary.MinPtr != 0 {
		t.Errorf("expected min_ptr 0, got %d", tree.Summary.MinPtr)
	}
}
