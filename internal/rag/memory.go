package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
)

// MemoryStore is an in-process VectorStore using brute-force cosine
// similarity. It is intended for tests, demos and small documents.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int
	records []memoryRecord
}

type memoryRecord struct {
	id  string
	rec Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Insert appends rec and assigns it a sequential ID starting at 1.
func (s *MemoryStore) Insert(_ context.Context, rec Record) error {
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("memory: empty embedding: %w", ErrVectorStore)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) > 0 && len(s.records[0].rec.Embedding) != len(rec.Embedding) {
		return fmt.Errorf("memory: vector dimension mismatch: got %d, want %d: %w",
			len(rec.Embedding), len(s.records[0].rec.Embedding), ErrVectorStore)
	}

	s.nextID++
	meta := make(map[string]string, len(rec.Metadata))
	for k, v := range rec.Metadata {
		meta[k] = v
	}
	s.records = append(s.records, memoryRecord{
		id:  strconv.Itoa(s.nextID),
		rec: Record{Content: rec.Content, Metadata: meta, Embedding: append([]float32(nil), rec.Embedding...)},
	})
	return nil
}

// SimilaritySearch ranks every stored record by cosine similarity. Ties keep
// insertion order. The query must match the stored vector dimension.
func (s *MemoryStore) SimilaritySearch(_ context.Context, queryEmbedding []float32, k int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) > 0 && len(queryEmbedding) != len(s.records[0].rec.Embedding) {
		return nil, fmt.Errorf("memory: query dimension mismatch: got %d, want %d: %w",
			len(queryEmbedding), len(s.records[0].rec.Embedding), ErrVectorStore)
	}

	docs := make([]Document, 0, len(s.records))
	for _, r := range s.records {
		meta := make(map[string]string, len(r.rec.Metadata))
		for k, v := range r.rec.Metadata {
			meta[k] = v
		}
		docs = append(docs, Document{
			ID:       r.id,
			Content:  r.rec.Content,
			Metadata: meta,
			Score:    cosine(queryEmbedding, r.rec.Embedding),
		})
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if k >= 0 && len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// cosine assumes len(a) == len(b).
func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
