//go:build integration

package rag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/54b3r/supportrag-go/internal/rag"
	"github.com/54b3r/supportrag-go/internal/testutil"
)

const dim = 768

func TestPostgresStore_InsertAndSearch(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc)

	store, err := rag.NewPostgresStore(pool, rag.PostgresConfig{})
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))

	records := []rag.Record{
		{Content: "Returrätt 30 dagar.", Metadata: map[string]string{rag.MetaSource: "faq", rag.MetaPreview: "Returrätt 30 dagar."}, Embedding: testutil.Vector(dim, 0)},
		{Content: "Garanti 2 år.", Metadata: map[string]string{rag.MetaSource: "faq", rag.MetaSection: "Garanti"}, Embedding: testutil.Vector(dim, 1)},
		{Content: "Fri frakt över 500 kr.", Metadata: map[string]string{rag.MetaSource: "faq"}, Embedding: testutil.Vector(dim, 2)},
	}
	for _, r := range records {
		require.NoError(t, store.Insert(ctx, r))
	}

	docs, err := store.SimilaritySearch(ctx, testutil.Vector(dim, 1), 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "Garanti 2 år.", docs[0].Content)
	assert.Equal(t, "Garanti", docs[0].Metadata[rag.MetaSection])
	assert.Equal(t, "faq", docs[0].Metadata[rag.MetaSource])
	assert.NotEmpty(t, docs[0].ID)
	assert.InDelta(t, 1.0, docs[0].Score, 1e-5)
	assert.GreaterOrEqual(t, docs[0].Score, docs[1].Score)
}

func TestPostgresStore_WrongDimension(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc)

	store, err := rag.NewPostgresStore(pool, rag.PostgresConfig{})
	require.NoError(t, err)

	err = store.Insert(ctx, rag.Record{Content: "x", Embedding: []float32{1, 2, 3}})
	assert.ErrorIs(t, err, rag.ErrVectorStore)
}
