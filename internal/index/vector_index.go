// Package index provides the in-memory cosine-similarity vector index
// backing one semantic sub-index per dormitory entity type.
package index

import (
	"encoding/gob"
	"errors"
	"log"
	"math"
	"os"
	"sort"
	"sync"
)

type VectorIndex struct {
	path    string
	mu      sync.RWMutex
	vectors map[uint64][]float32

	// Logger is optional; if non-nil its Printf method is used for
	// informational messages, otherwise the standard log package is.
	Logger *log.Logger
}

// NewVectorIndex creates an empty index. The optional path is used by
// Save/Load when those are called with an empty path.
func NewVectorIndex(path string) *VectorIndex {
	return &VectorIndex{
		path:    path,
		vectors: make(map[uint64][]float32),
	}
}

func (i *VectorIndex) Add(label uint64, vector []float32) error {
	if len(vector) == 0 {
		return errors.New("vector cannot be empty")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	copied := make([]float32, len(vector))
	copy(copied, vector)
	i.vectors[label] = copied
	return nil
}

// Count returns the number of stored vectors. Retrieval bounds each
// sub-index query to min(k, Count()).
func (i *VectorIndex) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// Search returns up to k labels ranked by cosine similarity, ties
// broken by label so results are deterministic. Stored vectors whose
// dimension does not match the query are skipped and logged.
func (i *VectorIndex) Search(vector []float32, k int) ([]uint64, []float32, error) {
	if len(vector) == 0 {
		return nil, nil, errors.New("query vector cannot be empty")
	}
	if k <= 0 {
		return []uint64{}, []float32{}, nil
	}

	type scored struct {
		label uint64
		score float32
	}

	var mismatched []uint64
	i.mu.RLock()
	items := make([]scored, 0, len(i.vectors))
	for label, cand := range i.vectors {
		if len(cand) != len(vector) {
			mismatched = append(mismatched, label)
			continue
		}
		items = append(items, scored{label: label, score: cosineSimilarity(vector, cand)})
	}
	i.mu.RUnlock()

	for _, label := range mismatched {
		i.logf("dimension mismatch: label=%d query_len=%d", label, len(vector))
	}

	sort.Slice(items, func(a, b int) bool {
		if items[a].score == items[b].score {
			return items[a].label < items[b].label
		}
		return items[a].score > items[b].score
	})
	if len(items) > k {
		items = items[:k]
	}

	labels := make([]uint64, len(items))
	scores := make([]float32, len(items))
	for idx, item := range items {
		labels[idx] = item.label
		scores[idx] = item.score
	}
	return labels, scores, nil
}

// Save writes the vectors with gob via a tmp file and atomic rename.
func (i *VectorIndex) Save(path string) error {
	if path == "" {
		path = i.path
	}
	if path == "" {
		return errors.New("path is required")
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	i.mu.RLock()
	encodeErr := gob.NewEncoder(file).Encode(i.vectors)
	i.mu.RUnlock()
	if encodeErr != nil {
		closeErr := file.Close()
		_ = os.Remove(tmpPath)
		return errors.Join(encodeErr, closeErr)
	}
	if err := file.Sync(); err != nil {
		closeErr := file.Close()
		_ = os.Remove(tmpPath)
		return errors.Join(err, closeErr)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Load replaces the in-memory vectors from disk. A missing file is not
// an error; the index simply starts empty.
func (i *VectorIndex) Load(path string) error {
	if path == "" {
		path = i.path
	}
	if path == "" {
		return errors.New("path is required")
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = file.Close() }()

	loaded := make(map[uint64][]float32)
	if err := gob.NewDecoder(file).Decode(&loaded); err != nil {
		return err
	}

	i.mu.Lock()
	i.vectors = loaded
	i.mu.Unlock()
	return nil
}

func (i *VectorIndex) logf(format string, args ...interface{}) {
	if i != nil && i.Logger != nil {
		i.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, magA, magB float32
	for idx := range a {
		dot += a[idx] * b[idx]
		magA += a[idx] * a[idx]
		magB += b[idx] * b[idx]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(magA*magB)))
}
