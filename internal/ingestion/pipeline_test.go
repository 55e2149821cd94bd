package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/54b3r/supportrag-go/internal/rag"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// scriptedEmbedder returns a fixed vector and fails on the call numbered failOn (1-based).
type scriptedEmbedder struct {
	failOn int
	inputs []string
}

func (e *scriptedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.inputs = append(e.inputs, text)
	if len(e.inputs) == e.failOn {
		return nil, &rag.EmbeddingStatusError{StatusCode: 500, Status: "500 Internal Server Error", Body: "boom"}
	}
	return []float32{float32(len(text)), 1}, nil
}

type failingStore struct {
	*rag.MemoryStore
}

func (failingStore) Insert(context.Context, rag.Record) error {
	return errors.New("connection reset")
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNewPipeline_NilDeps(t *testing.T) {
	t.Parallel()

	if _, err := NewPipeline(nil, rag.NewMemoryStore()); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := NewPipeline(&scriptedEmbedder{}, nil); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestIngest_TwoParagraphs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := rag.NewMemoryStore()
	emb := &scriptedEmbedder{}
	p, err := NewPipeline(emb, store)
	if err != nil {
		t.Fatal(err)
	}

	var seen []Progress
	n, err := p.Ingest(ctx, "Returrätt 30 dagar.\n\nFri frakt över 500 kr.", "", func(pr Progress) {
		seen = append(seen, pr)
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 2 || store.Len() != 2 {
		t.Fatalf("inserted: got %d (store %d), want 2", n, store.Len())
	}
	if len(seen) != 2 || seen[0] != (Progress{1, 2}) || seen[1] != (Progress{2, 2}) {
		t.Errorf("progress: got %v", seen)
	}

	docs, _ := store.SimilaritySearch(ctx, []float32{1, 0}, 10)
	previews := map[string]bool{}
	for _, d := range docs {
		if d.Metadata[rag.MetaSource] != DefaultSource {
			t.Errorf("source: got %q, want %q", d.Metadata[rag.MetaSource], DefaultSource)
		}
		if d.Metadata[rag.MetaPreview] != d.Content {
			t.Errorf("preview: got %q, want full text %q", d.Metadata[rag.MetaPreview], d.Content)
		}
		previews[d.Content] = true
	}
	if !previews["Returrätt 30 dagar."] || !previews["Fri frakt över 500 kr."] {
		t.Errorf("stored contents: got %v", previews)
	}
}

func TestIngest_PreviewTruncatedTo120Runes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := rag.NewMemoryStore()
	p, _ := NewPipeline(&scriptedEmbedder{}, store)

	long := strings.Repeat("ä", 300)
	if _, err := p.Ingest(ctx, long, "doc", nil); err != nil {
		t.Fatal(err)
	}
	docs, _ := store.SimilaritySearch(ctx, []float32{1, 1}, 1)
	if got := []rune(docs[0].Metadata[rag.MetaPreview]); len(got) != 120 {
		t.Errorf("preview length: got %d runes, want 120", len(got))
	}
	if docs[0].Metadata[rag.MetaSource] != "doc" {
		t.Errorf("source: got %q", docs[0].Metadata[rag.MetaSource])
	}
}

func TestIngest_FailFastOnEmbeddingError(t *testing.T) {
	t.Parallel()

	store := rag.NewMemoryStore()
	emb := &scriptedEmbedder{failOn: 2}
	p, _ := NewPipeline(emb, store)

	n, err := p.Ingest(context.Background(), "first\n\nsecond\n\nthird", "", nil)
	if !errors.Is(err, rag.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService, got %v", err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("records after failure: got %d (store %d), want 1", n, store.Len())
	}
	if len(emb.inputs) != 2 {
		t.Errorf("embed calls: got %d, want 2 (third paragraph must not be attempted)", len(emb.inputs))
	}
}

func TestIngest_FailFastOnInsertError(t *testing.T) {
	t.Parallel()

	emb := &scriptedEmbedder{}
	p, _ := NewPipeline(emb, failingStore{rag.NewMemoryStore()})

	n, err := p.Ingest(context.Background(), "a\n\nb", "", nil)
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected insert error, got %v", err)
	}
	if n != 0 {
		t.Errorf("inserted: got %d, want 0", n)
	}
	if len(emb.inputs) != 1 {
		t.Errorf("embed calls: got %d, want 1", len(emb.inputs))
	}
}

func TestIngest_EmptyDocument(t *testing.T) {
	t.Parallel()

	emb := &scriptedEmbedder{}
	p, _ := NewPipeline(emb, rag.NewMemoryStore())

	n, err := p.Ingest(context.Background(), "\n\n   \n", "", nil)
	if err != nil || n != 0 || len(emb.inputs) != 0 {
		t.Errorf("got n=%d err=%v calls=%d, want 0, nil, 0", n, err, len(emb.inputs))
	}
}
