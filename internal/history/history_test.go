package history

import (
	test "testing"
)

func TestCreateAndShardFor(t *test.T) {
	h, err := NewHistoryFromConfig(&Config{Path: t.TempDir(), NumShards: 4})
	if err != nil {
		t.Fatalf("unexpected error opening history: %v", err)
	}
	defer h.Shutdown()

	run := &Run{
		SourceDigest:   "deadbeef",
		SourceLength:   42,
		CompileSeconds: 0.001,
		ExecuteSeconds: 0.05,
		MemoryUsed:     1024,
		Outcome:        "ok",
	}
	id, err := h.Create(run)
	if err != nil {
		t.Fatalf("unexpected error creating run: %v", err)
	}
	if id == 0 {
		t.Errorf("expected a nonzero primary key")
	}

	shard := h.shardFor("deadbeef")
	var found Run
	if result := shard.First(&found, id); result.Error != nil {
		t.Fatalf("expected run to be persisted in its shard: %v", result.Error)
	}
	if found.SourceDigest != "deadbeef" {
		t.Errorf("expected digest deadbeef, got %q", found.SourceDigest)
	}
}

func TestShardForIsStable(t *test.T) {
	h, err := NewHistoryFromConfig(&Config{Path: t.TempDir(), NumShards: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Shutdown()

	first := h.shardFor("some-digest")
	second := h.shardFor("some-digest")
	if first != second {
		t.Errorf("expected shardFor to be deterministic for the same digest")
	}
}

func TestCreateRejectsNilRun(t *test.T) {
	h, err := NewHistoryFromConfig(&Config{Path: t.TempDir(), NumShards: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Shutdown()

	if _, err := h.Create(nil); err == nil {
		t.Errorf("expected an error creating a nil run")
	}
}
