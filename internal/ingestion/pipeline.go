// Package ingestion implements the document ingestion pipeline.
// It loads a plain-text policy/FAQ document, splits it into paragraphs,
// embeds each paragraph, and inserts the results into the vector store.
// This pipeline is invoked by the `supportrag ingest` CLI command.
package ingestion

import (
	"context"
	"fmt"

	"github.com/54b3r/supportrag-go/internal/rag"
)

// DefaultSource is the source label written into chunk metadata when the
// caller does not supply one.
const DefaultSource = "TechNova AB – FAQ & Policydokument"

// previewRunes is the length of the preview stored with each chunk.
const previewRunes = 120

// Progress reports how far ingestion has come. Index is 1-based and counts
// inserted chunks.
type Progress struct {
	// Index is the number of chunks inserted so far.
	Index int
	// Total is the number of chunks the document produced.
	Total int
}

// ProgressFunc is invoked after each successful insert.
type ProgressFunc func(Progress)

// Pipeline orchestrates the chunk → embed → insert flow for one document.
type Pipeline struct {
	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks.
	store rag.VectorStore
}

// NewPipeline constructs a Pipeline from the provided dependencies.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	return &Pipeline{embedder: embedder, store: store}, nil
}

// Ingest chunks raw and, for each chunk in order, embeds it and inserts it
// with metadata {source, preview}. Chunks are processed one at a time; the
// first embedding or insert error aborts the run. Records already inserted
// stay in the store. It returns the number of chunks inserted.
func (p *Pipeline) Ingest(ctx context.Context, raw, source string, progress ProgressFunc) (int, error) {
	if source == "" {
		source = DefaultSource
	}
	if progress == nil {
		progress = func(Progress) {}
	}

	chunks := ChunkText(raw)
	inserted := 0
	for i, chunk := range chunks {
		vec, err := p.embedder.Embed(ctx, chunk)
		if err != nil {
			return inserted, fmt.Errorf("ingestion: embedding chunk %d/%d failed: %w", i+1, len(chunks), err)
		}

		rec := rag.Record{
			Content: chunk,
			Metadata: map[string]string{
				rag.MetaSource:  source,
				rag.MetaPreview: Preview(chunk, previewRunes),
			},
			Embedding: vec,
		}
		if err := p.store.Insert(ctx, rec); err != nil {
			return inserted, fmt.Errorf("ingestion: inserting chunk %d/%d failed: %w", i+1, len(chunks), err)
		}

		inserted++
		progress(Progress{Index: inserted, Total: len(chunks)})
	}

	return inserted, nil
}
