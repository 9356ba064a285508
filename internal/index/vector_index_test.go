package index

import (
	"path/filepath"
	"testing"
)

func TestAddRejectsEmptyVector(t *testing.T) {
	idx := NewVectorIndex("")
	if err := idx.Add(1, nil); err == nil {
		t.Fatal("expected error for empty vector")
	}
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	idx := NewVectorIndex("")
	mustAdd(t, idx, 1, []float32{1, 0, 0})
	mustAdd(t, idx, 2, []float32{0, 1, 0})
	mustAdd(t, idx, 3, []float32{0.9, 0.1, 0})

	labels, scores, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 results, got %d", len(labels))
	}
	if labels[0] != 1 {
		t.Fatalf("expected label 1 first, got %d", labels[0])
	}
	if labels[1] != 3 {
		t.Fatalf("expected label 3 second, got %d", labels[1])
	}
	if scores[0] < scores[1] {
		t.Fatalf("scores not descending: %v", scores)
	}
}

func TestSearchBreaksTiesByLabel(t *testing.T) {
	idx := NewVectorIndex("")
	mustAdd(t, idx, 9, []float32{1, 0})
	mustAdd(t, idx, 4, []float32{1, 0})
	mustAdd(t, idx, 7, []float32{2, 0})

	labels, _, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []uint64{4, 7, 9}
	for i, label := range want {
		if labels[i] != label {
			t.Fatalf("position %d: want %d, got %v", i, label, labels)
		}
	}
}

func TestSearchSkipsMismatchedDimensions(t *testing.T) {
	idx := NewVectorIndex("")
	mustAdd(t, idx, 1, []float32{1, 0, 0})
	mustAdd(t, idx, 2, []float32{1, 0})

	labels, _, err := idx.Search([]float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(labels) != 1 || labels[0] != 1 {
		t.Fatalf("expected only label 1, got %v", labels)
	}
}

func TestCount(t *testing.T) {
	idx := NewVectorIndex("")
	if idx.Count() != 0 {
		t.Fatalf("expected empty index, got %d", idx.Count())
	}
	mustAdd(t, idx, 1, []float32{1})
	mustAdd(t, idx, 2, []float32{2})
	if idx.Count() != 2 {
		t.Fatalf("expected 2 vectors, got %d", idx.Count())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.gob")

	idx := NewVectorIndex(path)
	mustAdd(t, idx, 1, []float32{0.5, 0.5})
	mustAdd(t, idx, 2, []float32{1, 0})
	if err := idx.Save(""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewVectorIndex(path)
	if err := loaded.Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Count() != 2 {
		t.Fatalf("expected 2 vectors after load, got %d", loaded.Count())
	}

	labels, _, err := loaded.Search([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if labels[0] != 2 {
		t.Fatalf("expected label 2, got %d", labels[0])
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	idx := NewVectorIndex(filepath.Join(t.TempDir(), "absent.gob"))
	if err := idx.Load(""); err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}
	if idx.Count() != 0 {
		t.Fatalf("expected empty index, got %d", idx.Count())
	}
}

func mustAdd(t *testing.T, idx *VectorIndex, label uint64, vec []float32) {
	t.Helper()
	if err := idx.Add(label, vec); err != nil {
		t.Fatalf("Add(%d): %v", label, err)
	}
}
