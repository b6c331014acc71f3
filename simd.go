package bfopt

import "bfopt/internal/tape"

// simdWidth is the compile-time SIMD width the analyzer uses to decide
// when a counted loop's cell range is dense enough to vectorize (§9). Go
// has no portable way to query the host's native byte-vector width at
// compile time without cgo or assembly, so this repository fixes a
// conservative width and always executes VecAdd with a scalar fallback
// loop (see executor.go) — the IR shape and the analyzer's dispatch logic
// are the part of the design under test here, not raw throughput.
const simdWidth = 32

// vectorizeBody rewrites a counted loop's per-iteration cell deltas into
// non-overlapping VecAdd chunks of at most simdWidth bytes, covering the
// whole [minPtr, maxPtr] range with MovePtr splices between chunks that
// contain at least one nonzero delta. Unlike the original two-pipeline
// reference this deliberately never lets the final chunk double-cover
// cells that an earlier chunk already covered (see DESIGN.md).
func vectorizeBody(deltas []int, minPtr int) (body []*IRNode, vecBegin, vecEnd int) {
	size := len(deltas)
	currentPos := 0
	haveVec := false

	for start := 0; start < size; start += simdWidth {
		end := start + simdWidth
		if end > size {
			end = size
		}

		allZero := true
		for k := start; k < end; k++ {
			if wrapByte(deltas[k]) != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			continue
		}

		offset := start + minPtr
		if offset != currentPos {
			body = append(body, irMovePtr(offset-currentPos))
			currentPos = offset
		}

		vec := make([]byte, end-start)
		for k := start; k < end; k++ {
			vec[k-start] = wrapByte(deltas[k])
		}
		body = append(body, irVecAdd(vec))

		if !haveVec {
			vecBegin = offset
			haveVec = true
		}
		vecEnd = offset + (end - start)
	}

	if currentPos != 0 {
		body = append(body, irMovePtr(-currentPos))
	}

	return body, vecBegin, vecEnd
}

// applyVecAdd adds v into tape[p..p+len(v)) with per-byte wraparound. This
// is the scalar fallback the executor always uses.
func applyVecAdd(t tape.Tape, p int, v []byte) error {
	for i, delta := range v {
		cur, err := t.Read(p + i)
		if err != nil {
			return err
		}
		if err := t.Write(p+i, cur+delta); err != nil {
			return err
		}
	}
	return nil
}
