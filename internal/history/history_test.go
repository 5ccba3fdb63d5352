package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileYieldsEmptyJournal(t *testing.T) {
	j, err := Load(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := j.LastBatch(); ok {
		t.Fatal("expected empty journal")
	}
}

func TestRecordAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	j := New(path)
	j.Record(Batch{
		ID:      "1",
		Command: "rename",
		Renames: []Rename{
			{Note: "n.md", OldPath: "a.png", NewPath: "b.png", Timestamp: time.Now()},
		},
		CreatedAt: time.Now(),
	})

	if err := j.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	batch, ok := loaded.LastBatch()
	if !ok {
		t.Fatal("expected a batch after reload")
	}
	if batch.ID != "1" || len(batch.Renames) != 1 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if batch.Renames[0].NewPath != "b.png" {
		t.Fatalf("unexpected rename: %+v", batch.Renames[0])
	}
}

func TestRecord_DropsEmptyBatches(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "history.json"))

	j.Record(Batch{ID: "empty"})

	if _, ok := j.LastBatch(); ok {
		t.Fatal("empty batch should not be recorded")
	}
}

func TestPopLast(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "history.json"))

	j.Record(Batch{ID: "1", Renames: []Rename{{OldPath: "a", NewPath: "b"}}})
	j.Record(Batch{ID: "2", Renames: []Rename{{OldPath: "c", NewPath: "d"}}})

	batch, ok := j.PopLast()
	if !ok || batch.ID != "2" {
		t.Fatalf("expected batch 2, got %+v ok=%v", batch, ok)
	}

	batch, ok = j.PopLast()
	if !ok || batch.ID != "1" {
		t.Fatalf("expected batch 1, got %+v ok=%v", batch, ok)
	}

	if _, ok := j.PopLast(); ok {
		t.Fatal("expected empty journal after popping both batches")
	}
}
