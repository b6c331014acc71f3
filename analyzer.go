package bfopt

import "log"

// Analyze lowers a parsed syntax tree into the semantic IR (§4.3). It is
// the only entry point analyzer.go exports; everything else is a helper
// dispatched from here.
func Analyze(root *Node) (*IRNode, error) {
	children, err := analyzeChildren(root.Children)
	if err != nil {
		return nil, err
	}
	return peepholeIR(&IRNode{Kind: IRRoot, Children: children}), nil
}

// analyzeChildren walks a mixed sequence of basic-op and loop nodes,
// canonicalizing each maximal basic-op run through summarizeOps and
// dispatching each loop through analyzeLoop, preserving order.
func analyzeChildren(children []*Node) ([]*IRNode, error) {
	var out []*IRNode
	i := 0
	for i < len(children) {
		if children[i].Kind == NodeBasicOp {
			j := i
			for j < len(children) && children[j].Kind == NodeBasicOp {
				j++
			}
			out = append(out, summarizeOps(children[i:j])...)
			i = j
			continue
		}

		loopIR, err := analyzeLoop(children[i])
		if err != nil {
			return nil, err
		}
		out = append(out, loopIR)
		i++
	}
	return out, nil
}

// analyzeLoop dispatches a Loop node by its static summary (§4.3).
func analyzeLoop(loop *Node) (*IRNode, error) {
	s := loop.Summary
	if DEBUG {
		log.Printf("analyzer: dispatching loop at %+v (hasIO=%v hasNestedLoops=%v hasAdd=%v hasAddPtr=%v)",
			loop.Location, s.HasIO, s.HasNestedLoops, s.HasAdd, s.HasAddPtr)
	}
	switch {
	case !s.HasNestedLoops && !s.HasIO:
		return analyzePureLoop(loop), nil
	case !s.HasNestedLoops && s.HasIO:
		return analyzeIOLoop(loop), nil
	default:
		return analyzeNestedLoop(loop)
	}
}

// analyzeNestedLoop recurses into a loop that itself contains nested
// loops (§4.3.4). It never tries to prove termination or shortcut the
// iteration count; it just canonicalizes the straight-line runs between
// nested loops and repeats the whole body until the flag cell is zero.
func analyzeNestedLoop(loop *Node) (*IRNode, error) {
	children, err := analyzeChildren(loop.Children)
	if err != nil {
		return nil, err
	}
	return &IRNode{Kind: IRLoop, Children: children}, nil
}

// analyzePureLoop classifies a loop with no I/O and no nested loops
// (§4.3.2), using compile-time modular-arithmetic reasoning about the
// flag cell wherever that reasoning holds unconditionally.
func analyzePureLoop(loop *Node) *IRNode {
	s := loop.Summary

	switch {
	case !s.HasAdd && !s.HasAddPtr:
		// Body never touches any cell: it either never runs (flag already
		// zero) or never terminates.
		return irEmptyLoop()

	case s.HasAdd && !s.HasAddPtr:
		// Every op in the body lands on the flag cell itself.
		flagStep := wrapByte(sumDelta(loop.Children))
		if flagStep == 0 {
			return irEmptyLoop()
		}
		if gcdByte(flagStep, 0) == 1 {
			return irSetZero()
		}
		return &IRNode{Kind: IRCountedLoop, FlagStep: flagStep, Body: []*IRNode{irAdd(flagStep)}}

	case !s.HasAdd && s.HasAddPtr:
		if s.PtrMovePerIteration == nil {
			return &IRNode{Kind: IRLoop, Children: summarizeOps(loop.Children)}
		}
		step := *s.PtrMovePerIteration
		if step == 0 {
			return irEmptyLoop()
		}
		return irJumpToZero(step)

	default:
		return analyzeMixedLoop(loop, s)
	}
}

// analyzeMixedLoop handles the has_add ∧ has_addptr case: a loop that
// both moves the pointer and changes cell contents (§4.3.2, mixed case).
func analyzeMixedLoop(loop *Node, s Summary) *IRNode {
	if s.PtrMovePerIteration == nil || *s.PtrMovePerIteration != 0 {
		return &IRNode{Kind: IRLoop, Children: summarizeOps(loop.Children)}
	}

	deltas := cellDeltas(loop.Children, s.MinPtr, s.MaxPtr)
	flagStep := wrapByte(deltas[-s.MinPtr])
	if flagStep == 0 {
		return &IRNode{Kind: IRLoop, Children: summarizeOps(loop.Children)}
	}

	body := summarizeOps(loop.Children)
	node := &IRNode{Kind: IRCountedLoop, FlagStep: flagStep, Body: body}

	if s.MaxPtr-s.MinPtr+1 >= simdWidth/2 {
		vecBody, vecBegin, vecEnd := vectorizeBody(deltas, s.MinPtr)
		node.Body = vecBody
		node.VecBegin = vecBegin
		node.VecEnd = vecEnd
	}
	return node
}

// analyzeIOLoop handles a loop with I/O but no nested loops (§4.3.3).
// Unlike summarizeOps it never reorders ops across pointer motion: it
// only merges runs of the same command into a single IR node, which is
// always sound regardless of intervening pointer movement.
func analyzeIOLoop(loop *Node) *IRNode {
	return &IRNode{Kind: IRLoop, Children: mergeRun(loop.Children)}
}

// mergeKind groups the six basic-op kinds into the four families
// mergeRun folds runs of.
type mergeKind int

const (
	mergeNone mergeKind = iota
	mergeAdd
	mergeMove
	mergeRead
	mergeWrite
)

func classify(op BasicOpKind) mergeKind {
	switch op {
	case OpAdd, OpSub:
		return mergeAdd
	case OpIncPtr, OpDecPtr:
		return mergeMove
	case OpRead:
		return mergeRead
	case OpWrite:
		return mergeWrite
	default:
		return mergeNone
	}
}

func mergeRun(ops []*Node) []*IRNode {
	var out []*IRNode
	kind := mergeNone
	var acc int

	flush := func() {
		switch kind {
		case mergeAdd:
			if v := wrapByte(acc); v != 0 {
				out = append(out, irAdd(v))
			}
		case mergeMove:
			if acc != 0 {
				out = append(out, irMovePtr(acc))
			}
		case mergeRead:
			if acc > 0 {
				out = append(out, irRead(uint(acc)))
			}
		case mergeWrite:
			if acc > 0 {
				out = append(out, irWrite(uint(acc)))
			}
		}
		kind = mergeNone
		acc = 0
	}

	for _, op := range ops {
		k := classify(op.Op)
		if k != kind {
			flush()
			kind = k
		}
		switch op.Op {
		case OpAdd:
			acc++
		case OpSub:
			acc--
		case OpIncPtr:
			acc++
		case OpDecPtr:
			acc--
		case OpRead, OpWrite:
			acc++
		}
	}
	flush()
	return out
}

// sumDelta returns the net signed +/- delta of a basic-op run that never
// moves the pointer.
func sumDelta(ops []*Node) int {
	total := 0
	for _, op := range ops {
		switch op.Op {
		case OpAdd:
			total++
		case OpSub:
			total--
		}
	}
	return total
}

// cellDeltas forward-simulates ops and returns the net signed delta at
// every offset in [minPtr, maxPtr], indexed by offset-minPtr. I/O ops
// contribute nothing; callers only use this on loops with HasIO false.
func cellDeltas(ops []*Node, minPtr, maxPtr int) []int {
	deltas := make([]int, maxPtr-minPtr+1)
	ptr := 0
	for _, op := range ops {
		switch op.Op {
		case OpAdd:
			deltas[ptr-minPtr]++
		case OpSub:
			deltas[ptr-minPtr]--
		case OpIncPtr:
			ptr++
		case OpDecPtr:
			ptr--
		}
	}
	return deltas
}

func wrapByte(n int) byte {
	m := n % 256
	if m < 0 {
		m += 256
	}
	return byte(m)
}

func gcdInt(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// gcdByte returns gcd(step, 256) for a nonzero step encoded as a byte.
// The second argument is unused padding kept so call sites read as
// "gcd of step against the modulus" without a magic 256 at every call.
func gcdByte(step byte, _ int) int {
	return gcdInt(int(step), 256)
}

// summarizeOps canonicalizes a maximal straight-line run of basic ops
// into offset-sorted MovePtr/Add/Read/Write IR (§4.3.1). It walks the run
// backwards, accumulating each cell's pending delta into a simulation
// buffer indexed by offset-minPtr, and treats every Read/Write as a
// barrier that flushes the current cell's pending delta first.
//
// Net cell deltas left over after the walk are emitted in descending
// offset order (max_ptr side first) — the run's own trailing MovePtr
// walks backward across them, which is also the order the flushed I/O
// barriers naturally interleave with when unwound.
func summarizeOps(ops []*Node) []*IRNode {
	if len(ops) == 0 {
		return nil
	}

	minPtr, maxPtr, netPtr := runBounds(ops)
	size := maxPtr - minPtr + 1
	mem := make([]int, size)

	type deferredOp struct {
		isAdd bool
		kind  BasicOpKind // OpRead or OpWrite when !isAdd
		count uint
		delta byte
		pos   int
	}
	var deferred []deferredOp

	p := netPtr - minPtr
	for k := len(ops) - 1; k >= 0; k-- {
		switch ops[k].Op {
		case OpAdd:
			mem[p]++
		case OpSub:
			mem[p]--
		case OpIncPtr:
			p--
		case OpDecPtr:
			p++
		case OpRead, OpWrite:
			if v := wrapByte(mem[p]); v != 0 {
				deferred = append(deferred, deferredOp{isAdd: true, delta: v, pos: p})
				mem[p] = 0
			}
			if n := len(deferred); n > 0 && !deferred[n-1].isAdd &&
				deferred[n-1].kind == ops[k].Op && deferred[n-1].pos == p {
				deferred[n-1].count++
			} else {
				deferred = append(deferred, deferredOp{isAdd: false, kind: ops[k].Op, count: 1, pos: p})
			}
		}
	}

	lo, hi := -1, -1
	for i := 0; i < size; i++ {
		if wrapByte(mem[i]) != 0 {
			if lo == -1 {
				lo = i
			}
			hi = i
		}
	}

	var out []*IRNode
	currentPos := 0

	if lo != -1 {
		for i := hi; i >= lo; i-- {
			if v := wrapByte(mem[i]); v != 0 {
				offset := i + minPtr
				if offset != currentPos {
					out = append(out, irMovePtr(offset-currentPos))
					currentPos = offset
				}
				out = append(out, irAdd(v))
			}
		}
	}

	for k := len(deferred) - 1; k >= 0; k-- {
		e := deferred[k]
		offset := e.pos + minPtr
		if offset != currentPos {
			out = append(out, irMovePtr(offset-currentPos))
			currentPos = offset
		}
		if e.isAdd {
			out = append(out, irAdd(e.delta))
		} else if e.kind == OpRead {
			out = append(out, irRead(e.count))
		} else {
			out = append(out, irWrite(e.count))
		}
	}

	if currentPos != netPtr {
		out = append(out, irMovePtr(netPtr-currentPos))
	}

	return out
}

func runBounds(ops []*Node) (minPtr, maxPtr, netPtr int) {
	p := 0
	for _, op := range ops {
		switch op.Op {
		case OpIncPtr:
			p++
			if p > maxPtr {
				maxPtr = p
			}
		case OpDecPtr:
			p--
			if p < minPtr {
				minPtr = p
			}
		}
	}
	netPtr = p
	return
}

// peepholeIR runs the optional post-pass described in §4.3.5: it clones
// the tree via CloneRoot, merges adjacent MovePtr nodes produced when
// analyze_nested_loop concatenates straight-line segments around nested
// loops, and checks that the merge left every sequence's net pointer
// arithmetic unchanged. A defective merge is discarded in favor of the
// un-peepholed (but correct) tree rather than risking a broken one.
func peepholeIR(root *IRNode) *IRNode {
	clone := CloneRoot(root)
	if !mergeAdjacentMovePtrsInPlace(clone) {
		return root
	}
	return clone
}

// mergeAdjacentMovePtrsInPlace merges runs of consecutive MovePtr nodes
// at every level of n (Children, and Body/Tail for CountedLoop),
// recursing into compound children. It returns false if any level's net
// pointer delta changed across the merge, signaling a bug in the merge
// itself rather than a legitimate optimization.
func mergeAdjacentMovePtrsInPlace(n *IRNode) bool {
	ok := true

	switch n.Kind {
	case IRRoot, IRLoop:
		before := netMoveDelta(n.Children)
		n.Children = mergeAdjacentMovePtrs(n.Children)
		if netMoveDelta(n.Children) != before {
			ok = false
		}
		for _, c := range n.Children {
			if !mergeAdjacentMovePtrsInPlace(c) {
				ok = false
			}
		}

	case IRCountedLoop:
		beforeBody := netMoveDelta(n.Body)
		n.Body = mergeAdjacentMovePtrs(n.Body)
		if netMoveDelta(n.Body) != beforeBody {
			ok = false
		}
		beforeTail := netMoveDelta(n.Tail)
		n.Tail = mergeAdjacentMovePtrs(n.Tail)
		if netMoveDelta(n.Tail) != beforeTail {
			ok = false
		}
		for _, c := range n.Body {
			if !mergeAdjacentMovePtrsInPlace(c) {
				ok = false
			}
		}
		for _, c := range n.Tail {
			if !mergeAdjacentMovePtrsInPlace(c) {
				ok = false
			}
		}
	}

	return ok
}

// mergeAdjacentMovePtrs folds consecutive MovePtr entries in nodes into
// a single MovePtr, dropping any that net to zero. It does not recurse.
func mergeAdjacentMovePtrs(nodes []*IRNode) []*IRNode {
	if len(nodes) == 0 {
		return nodes
	}

	merged := make([]*IRNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == IRMovePtr && len(merged) > 0 && merged[len(merged)-1].Kind == IRMovePtr {
			merged[len(merged)-1] = irMovePtr(merged[len(merged)-1].MoveDelta + n.MoveDelta)
			continue
		}
		merged = append(merged, n)
	}

	out := merged[:0]
	for _, n := range merged {
		if n.Kind == IRMovePtr && n.MoveDelta == 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// netMoveDelta sums the MoveDelta of every top-level MovePtr node in
// nodes; it is the invariant peepholeIR checks before trusting a merge.
func netMoveDelta(nodes []*IRNode) int {
	total := 0
	for _, n := range nodes {
		if n.Kind == IRMovePtr {
			total += n.MoveDelta
		}
	}
	return total
}
