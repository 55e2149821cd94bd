// Package rag defines the interfaces for retrieval-augmented generation
// components: vector storage, document retrieval, and embedding.
// Concrete implementations (Postgres/pgvector, Qdrant, in-memory) satisfy
// these interfaces so the assistant layer never depends on a specific backend.
package rag

import (
	"context"
)

// Metadata keys written by the ingestion pipeline and read back by the
// answer composer when building citations.
const (
	// MetaSource is the human-readable label of the originating document.
	MetaSource = "source"
	// MetaPreview holds the first characters of the chunk for display.
	MetaPreview = "preview"
	// MetaSection optionally overrides the citation title.
	MetaSection = "section"
)

// Document represents a unit of retrieved knowledge.
type Document struct {
	// ID is the store-assigned identifier for this chunk.
	ID string

	// Content is the raw text content of the chunk.
	Content string

	// Metadata holds the string key-value pairs stored alongside the chunk
	// (source, preview, and optionally section).
	Metadata map[string]string

	// Score is the similarity score assigned during retrieval.
	// Zero value means the score was not computed.
	Score float32
}

// Record is a chunk ready to be persisted: its text, metadata and the
// embedding computed for it. The store assigns the identifier.
type Record struct {
	// Content is the chunk text.
	Content string

	// Metadata is stored verbatim alongside the chunk.
	Metadata map[string]string

	// Embedding is the dense vector for Content. Its length must match the
	// dimension the store was provisioned with.
	Embedding []float32
}

// VectorStore is the interface for persisting and searching chunk embeddings.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Insert persists a single record. Errors wrap ErrVectorStore.
	Insert(ctx context.Context, rec Record) error

	// SimilaritySearch returns at most k documents ranked by descending
	// similarity to the query embedding.
	SimilaritySearch(ctx context.Context, queryEmbedding []float32, k int) ([]Document, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder converts a single text into a dense vector embedding.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed returns the embedding for text. Errors wrap ErrEmbeddingService.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever is the high-level interface used by the assistant to fetch
// relevant context for a question. It combines embedding and vector search.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the k most relevant documents for the given query.
	Retrieve(ctx context.Context, query string, k int) ([]Document, error)
}
