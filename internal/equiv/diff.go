package equiv

import (
	"fmt"

	"github.com/xrash/smetrics"
)

// Report describes an equivalence-fuzzing comparison between two output
// byte streams, or two tape snapshots.
type Report struct {
	Identical  bool
	Similarity float64 // 0..1, 1 means identical
	DivergedAt int      // first differing byte index, -1 if identical
	Message    string
}

// Compare scores how far apart two byte streams are using
// smetrics.WagnerFischer (insertion/deletion/substitution cost 1/1/2),
// matching the call shape sketched in the reference toolchain's
// commented-out Breed() gene comparison.
func Compare(label string, a, b []byte) Report {
	divergedAt := -1
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	for i := 0; i < limit; i++ {
		if a[i] != b[i] {
			divergedAt = i
			break
		}
	}
	if divergedAt == -1 && len(a) != len(b) {
		divergedAt = limit
	}

	if divergedAt == -1 {
		return Report{Identical: true, Similarity: 1, DivergedAt: -1, Message: fmt.Sprintf("%s: identical (%d bytes)", label, len(a))}
	}

	dist := smetrics.WagnerFischer(string(a), string(b), 1, 1, 2)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	similarity := 1.0
	if maxLen > 0 {
		similarity = 1.0 - float64(dist)/float64(maxLen)
		if similarity < 0 {
			similarity = 0
		}
	}

	return Report{
		Identical:  false,
		Similarity: similarity,
		DivergedAt: divergedAt,
		Message: fmt.Sprintf("%s: %.0f%% similar, diverged at byte %d",
			label, similarity*100, divergedAt),
	}
}
