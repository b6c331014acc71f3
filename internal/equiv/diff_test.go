package equiv

import (
	test "testing"
)

func TestCompareIdentical(t *test.T) {
	report := Compare("t", []byte("hello"), []byte("hello"))
	if !report.Identical || report.Similarity != 1 || report.DivergedAt != -1 {
		t.Fatalf("expected an identical report, got %+v", report)
	}
}

func TestCompareDivergesAtFirstDifference(t *test.T) {
	report := Compare("t", []byte("hello"), []byte("hallo"))
	if report.Identical {
		t.Fatalf("expected divergence to be detected")
	}
	if report.DivergedAt != 1 {
		t.Errorf("expected divergence at byte 1, got %d", report.DivergedAt)
	}
	if report.Similarity <= 0 || report.Similarity >= 1 {
		t.Errorf("expected a similarity strictly between 0 and 1, got %f", report.Similarity)
	}
}

func TestCompareDifferentLengths(t *test.T) {
	report := Compare("t", []byte("hello"), []byte("hello world"))
	if report.Identical {
		t.Fatalf("expected length mismatch to count as divergence")
	}
	if report.DivergedAt != 5 {
		t.Errorf("expected divergence at byte 5, got %d", report.DivergedAt)
	}
}

func TestCompareEmptyBuffers(t *test.T) {
	report := Compare("t", nil, nil)
	if !report.Identical {
		t.Fatalf("expected two empty buffers to be identical")
	}
}
