package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/54b3r/supportrag-go/internal/ingestion"
	"github.com/54b3r/supportrag-go/internal/rag"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeChatModel struct {
	calls       int
	got         []*schema.Message
	temperature *float32
	reply       string
	err         error
}

func (m *fakeChatModel) Generate(_ context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	m.got = in
	m.temperature = model.GetCommonOptions(&model.Options{}, opts...).Temperature
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

type fakeRetriever struct {
	calls int
	k     int
	docs  []rag.Document
	err   error
}

func (r *fakeRetriever) Retrieve(_ context.Context, _ string, k int) ([]rag.Document, error) {
	r.calls++
	r.k = k
	return r.docs, r.err
}

// constEmbedder maps every text to the same vector so search order equals
// insertion order.
type constEmbedder struct{ calls int }

func (e *constEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	return []float32{1, 1, 1}, nil
}

func testPrompts(t *testing.T) *PromptSet {
	t.Helper()
	ps, err := LoadPrompts("sv", PromptVars{Company: "TechNova AB", DocumentName: "TechNova AB FAQ/policy"})
	require.NoError(t, err)
	return ps
}

func newTestAssistant(t *testing.T, r rag.Retriever, m model.BaseChatModel) *Assistant {
	t.Helper()
	a, err := New(context.Background(), &Config{Retriever: r, ChatModel: m, Prompts: testPrompts(t)})
	require.NoError(t, err)
	return a
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ps := testPrompts(t)

	_, err := New(ctx, nil)
	assert.Error(t, err)
	_, err = New(ctx, &Config{ChatModel: &fakeChatModel{}, Prompts: ps})
	assert.ErrorContains(t, err, "retriever")
	_, err = New(ctx, &Config{Retriever: &fakeRetriever{}, Prompts: ps})
	assert.ErrorContains(t, err, "chat model")
	_, err = New(ctx, &Config{Retriever: &fakeRetriever{}, ChatModel: &fakeChatModel{}})
	assert.ErrorContains(t, err, "prompts")
}

func TestAnswer_SmalltalkShortCircuits(t *testing.T) {
	t.Parallel()

	r := &fakeRetriever{}
	m := &fakeChatModel{}
	a := newTestAssistant(t, r, m)

	for _, q := range []string{"Hej!", "hi", "yo", "  God morgon. "} {
		ans, err := a.Answer(context.Background(), q, nil)
		require.NoError(t, err, q)
		assert.Equal(t, a.Prompts().Greeting, ans.Answer, q)
		assert.NotNil(t, ans.Sources, q)
		assert.Empty(t, ans.Sources, q)
		assert.True(t, ans.Smalltalk, q)
	}
	assert.Zero(t, r.calls, "retriever must not be called for small talk")
	assert.Zero(t, m.calls, "model must not be called for small talk")
	assert.True(t, strings.HasPrefix(a.Prompts().Greeting, "Hej! 👋 Jag är TechNova AB:s kundtjänstbot."))
}

func TestAnswer_SourcesAreFirstTwo(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	r := &fakeRetriever{docs: []rag.Document{
		{ID: "d1", Content: "Leverans 3–5 dagar.", Metadata: map[string]string{"preview": "Leverans 3–5 dagar.", "section": "Leveranser"}},
		{ID: "d2", Content: long, Metadata: map[string]string{}},
		{ID: "d3", Content: "tre"},
		{ID: "d4", Content: "fyra"},
	}}
	m := &fakeChatModel{reply: "Leveransen tar 3–5 dagar."}
	a := newTestAssistant(t, r, m)

	ans, err := a.Answer(context.Background(), "Hur lång tid tar leveransen?", nil)
	require.NoError(t, err)

	assert.Equal(t, "Leveransen tar 3–5 dagar.", ans.Answer)
	assert.False(t, ans.Smalltalk)
	assert.Equal(t, 4, r.k)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, Source{ID: "d1", Title: "Leveranser", Preview: "Leverans 3–5 dagar."}, ans.Sources[0])
	assert.Equal(t, "d2", ans.Sources[1].ID)
	assert.Equal(t, "Källa 2 – TechNova AB FAQ/policy", ans.Sources[1].Title)
	assert.Equal(t, strings.Repeat("x", 160), ans.Sources[1].Preview)
}

func TestAnswer_PromptAssembly(t *testing.T) {
	t.Parallel()

	r := &fakeRetriever{docs: []rag.Document{
		{ID: "1", Content: "Retur inom 30 dagar."},
		{ID: "2", Content: "Garanti 2 år."},
	}}
	m := &fakeChatModel{reply: "ok"}
	a := newTestAssistant(t, r, m)

	history := []ChatMessage{
		{Role: "user", Content: "Hej"},
		{Role: "system", Content: "ignored"},
		{Role: "assistant", Content: "Hej! Vad vill du veta?"},
	}
	_, err := a.Answer(context.Background(), "Hur länge gäller garantin?", history)
	require.NoError(t, err)

	require.Equal(t, 1, m.calls)
	require.NotNil(t, m.temperature)
	assert.Equal(t, float32(0), *m.temperature)

	require.Len(t, m.got, 4, "system + 2 history turns + question")
	assert.Equal(t, schema.System, m.got[0].Role)
	assert.Contains(t, m.got[0].Content, "TechNova AB")
	assert.Equal(t, schema.User, m.got[1].Role)
	assert.Equal(t, "Hej", m.got[1].Content)
	assert.Equal(t, schema.Assistant, m.got[2].Role)

	last := m.got[3]
	assert.Equal(t, schema.User, last.Role)
	assert.Contains(t, last.Content, "Hur länge gäller garantin?")
	assert.Contains(t, last.Content, "Källa 1:\nRetur inom 30 dagar.\n\nKälla 2:\nGaranti 2 år.")
}

func TestAnswer_ErrorsPropagate(t *testing.T) {
	t.Parallel()

	t.Run("retrieval", func(t *testing.T) {
		t.Parallel()
		r := &fakeRetriever{err: fmt.Errorf("wrapped: %w", rag.ErrVectorStore)}
		m := &fakeChatModel{}
		a := newTestAssistant(t, r, m)

		_, err := a.Answer(context.Background(), "Vad kostar leverans?", nil)
		assert.ErrorIs(t, err, rag.ErrVectorStore)
		assert.Zero(t, m.calls)
	})

	t.Run("model", func(t *testing.T) {
		t.Parallel()
		r := &fakeRetriever{docs: []rag.Document{{ID: "1", Content: "c"}}}
		m := &fakeChatModel{err: errors.New("connection refused")}
		a := newTestAssistant(t, r, m)

		_, err := a.Answer(context.Background(), "Vad kostar leverans?", nil)
		assert.ErrorIs(t, err, rag.ErrLanguageModel)
	})
}

func TestAnswer_EndToEndTwoParagraphs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	emb := &constEmbedder{}
	store := rag.NewMemoryStore()
	pipeline, err := ingestion.NewPipeline(emb, store)
	require.NoError(t, err)

	n, err := pipeline.Ingest(ctx, "Returrätt gäller i 30 dagar.\n\nFri frakt vid köp över 500 kr.", "", nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	retriever, err := rag.NewRetriever(emb, store, 4)
	require.NoError(t, err)
	m := &fakeChatModel{reply: "Du har 30 dagars returrätt."}
	a := newTestAssistant(t, retriever, m)

	ans, err := a.Answer(ctx, "Hur lång är returrätten?", nil)
	require.NoError(t, err)

	last := m.got[len(m.got)-1].Content
	assert.Contains(t, last, "Returrätt gäller i 30 dagar.")
	assert.Contains(t, last, "Fri frakt vid köp över 500 kr.")

	require.Len(t, ans.Sources, 2)
	assert.Equal(t, "Returrätt gäller i 30 dagar.", ans.Sources[0].Preview)
	assert.Equal(t, "Fri frakt vid köp över 500 kr.", ans.Sources[1].Preview)
	assert.Equal(t, "Källa 1 – TechNova AB FAQ/policy", ans.Sources[0].Title)
}
